package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserRole(t *testing.T) {
	userID, roleID := uuid.New(), uuid.New()
	assignedBy := uuid.New()

	ur := NewUserRole(userID, roleID, &assignedBy, 0)
	assert.True(t, ur.IsActive)
	assert.Nil(t, ur.ExpiresAt)
	assert.False(t, ur.IsExpired())

	withExpiry := NewUserRole(userID, roleID, nil, 7)
	require.NotNil(t, withExpiry.ExpiresAt)
	assert.False(t, withExpiry.IsExpired())
}

func TestUserRoleIsExpired(t *testing.T) {
	ur := NewUserRole(uuid.New(), uuid.New(), nil, 0)

	past := time.Now().UTC().Add(-time.Second)
	ur.ExpiresAt = &past
	assert.True(t, ur.IsExpired())
	assert.True(t, ur.IsActive, "expiry does not flip the active flag")

	ur.Extend(30)
	assert.False(t, ur.IsExpired())
}

func TestUserRoleRevoke(t *testing.T) {
	ur := NewUserRole(uuid.New(), uuid.New(), nil, 0)
	ur.Revoke()
	assert.False(t, ur.IsActive)
}

func TestUserRoleExtendFromNow(t *testing.T) {
	ur := NewUserRole(uuid.New(), uuid.New(), nil, 0)
	require.Nil(t, ur.ExpiresAt)

	ur.Extend(10)
	require.NotNil(t, ur.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 10), *ur.ExpiresAt, time.Second)

	before := *ur.ExpiresAt
	ur.Extend(5)
	assert.Equal(t, before.AddDate(0, 0, 5), *ur.ExpiresAt)
}
