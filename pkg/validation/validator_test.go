package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Level    int    `json:"level" binding:"gte=0,lte=100"`
	UserID   string `json:"user_id" binding:"omitempty,uuid"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestToDetailsFieldMessages(t *testing.T) {
	v := engine(t)

	err := v.Struct(sampleRequest{
		Email:    "not-an-email",
		Password: "short",
		Level:    200,
		UserID:   "not-a-uuid",
	})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8 characters", details["password"])
	assert.Equal(t, "must be at most 100", details["level"])
	assert.Equal(t, "must be a valid uuid", details["user_id"])
}

func TestToDetailsRequired(t *testing.T) {
	v := engine(t)

	details := ToDetails(v.Struct(sampleRequest{}))
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestToDetailsBadJSON(t *testing.T) {
	var dst sampleRequest
	err := json.Unmarshal([]byte(`{"email":`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
