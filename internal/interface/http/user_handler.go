package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/pkg/response"
	"github.com/erpsuite/identity/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// mustUUID parses ids that upstream middleware already validated.
func mustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email.String(),
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"name":         u.FullName(),
		"phone":        u.Phone,
		"avatar_url":   u.AvatarURL,
		"is_active":    u.IsActive,
		"is_verified":  u.IsVerified,
		"is_superuser": u.IsSuperuser,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Register POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, nil)
	if err != nil {
		var weak *application.WeakPasswordError
		switch {
		case errors.Is(err, application.ErrEmailTaken):
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
		case errors.As(err, &weak):
			response.Error[any](c, http.StatusBadRequest, "password too weak", weak.Problems)
		default:
			response.Error[any](c, http.StatusBadRequest, "registration failed", err.Error())
		}
		return
	}
	response.Success(c, http.StatusCreated, userJSON(u), "account created", nil)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), mustUUID(c.GetString("userID")))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdateProfile PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), mustUUID(c.GetString("userID")), application.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// ChangePassword PUT /api/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), mustUUID(c.GetString("userID")), req.CurrentPassword, req.NewPassword)
	if err != nil {
		var weak *application.WeakPasswordError
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "current password is incorrect", nil)
		case errors.As(err, &weak):
			response.Error[any](c, http.StatusBadRequest, "password too weak", weak.Problems)
		default:
			response.Error[any](c, http.StatusInternalServerError, "password change failed", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password updated", nil)
}

// UploadAvatar POST /api/users/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), mustUUID(c.GetString("userID")), f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

// Search GET /api/users/search?q=..&size=..
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// List GET /api/users?limit=..&offset=..
func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	users, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "listing failed", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON(u))
	}
	response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out)})
}

func (h *UserHandler) pathUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// SecurityInfo GET /api/users/:id/security
func (h *UserHandler) SecurityInfo(c *gin.Context) {
	id, ok := h.pathUserID(c)
	if !ok {
		return
	}
	info, err := h.Svc.SecurityInfo(c.Request.Context(), id)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, info, "security info", nil)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive PUT /api/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := h.pathUserID(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"active": *req.Active}, "account updated", nil)
}

// Unlock POST /api/users/:id/unlock
func (h *UserHandler) Unlock(c *gin.Context) {
	id, ok := h.pathUserID(c)
	if !ok {
		return
	}
	if err := h.Svc.Unlock(c.Request.Context(), id); err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unlocked": true}, "account unlocked", nil)
}
