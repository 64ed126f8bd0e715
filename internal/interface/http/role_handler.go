package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/pkg/response"
	"github.com/erpsuite/identity/pkg/validation"
)

type RoleHandler struct {
	Svc    *application.RoleService
	Logger *logrus.Logger
}

func NewRoleHandler(svc *application.RoleService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{Svc: svc, Logger: logger}
}

func roleJSON(r *entity.Role) gin.H {
	return gin.H{
		"id":          r.ID,
		"name":        r.Name,
		"slug":        r.Slug,
		"description": r.Description,
		"level":       r.Level,
		"is_system":   r.IsSystem,
		"is_default":  r.IsDefault,
		"is_active":   r.IsActive,
		"permissions": r.Permissions(),
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

func (h *RoleHandler) writeRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrPermissionDenied):
		response.Error[any](c, http.StatusForbidden, "permission denied", nil)
	case errors.Is(err, application.ErrRoleNotFound):
		response.Error[any](c, http.StatusNotFound, "role not found", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	default:
		response.Error[any](c, http.StatusBadRequest, "role operation failed", err.Error())
	}
}

type createRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Level       int      `json:"level" binding:"gte=0,lte=100"`
	Permissions []string `json:"permissions"`
}

// Create POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := h.Svc.CreateRole(c.Request.Context(), mustUUID(c.GetString("userID")), application.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.writeRoleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, roleJSON(role), "role created", nil)
}

// List GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.Svc.ListRoles(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "listing failed", nil)
		return
	}
	out := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleJSON(r))
	}
	response.Success(c, http.StatusOK, out, "roles", gin.H{"count": len(out)})
}

func (h *RoleHandler) pathRoleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid role id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// Get GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := h.pathRoleID(c)
	if !ok {
		return
	}
	role, err := h.Svc.GetRole(c.Request.Context(), id)
	if err != nil {
		h.writeRoleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, roleJSON(role), "role", nil)
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// UpdatePermissions PUT /api/roles/:id/permissions
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	id, ok := h.pathRoleID(c)
	if !ok {
		return
	}
	var req updatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := h.Svc.UpdatePermissions(c.Request.Context(), mustUUID(c.GetString("userID")), id, req.Permissions)
	if err != nil {
		h.writeRoleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, roleJSON(role), "permissions updated", nil)
}

type assignRoleRequest struct {
	UserID        string `json:"user_id" binding:"required,uuid"`
	ExpiresInDays int    `json:"expires_in_days" binding:"gte=0"`
}

// Assign POST /api/roles/:id/assign
func (h *RoleHandler) Assign(c *gin.Context) {
	id, ok := h.pathRoleID(c)
	if !ok {
		return
	}
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ur, err := h.Svc.AssignRole(c.Request.Context(), mustUUID(c.GetString("userID")), mustUUID(req.UserID), id, req.ExpiresInDays)
	if err != nil {
		h.writeRoleError(c, err)
		return
	}
	if ur == nil {
		response.Success[any](c, http.StatusOK, gin.H{"assigned": true, "already_held": true}, "role already assigned", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"assigned":   true,
		"expires_at": ur.ExpiresAt,
	}, "role assigned", nil)
}

type revokeRoleRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Revoke POST /api/roles/:id/revoke
func (h *RoleHandler) Revoke(c *gin.Context) {
	id, ok := h.pathRoleID(c)
	if !ok {
		return
	}
	var req revokeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RevokeRole(c.Request.Context(), mustUUID(c.GetString("userID")), mustUUID(req.UserID), id); err != nil {
		h.writeRoleError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"revoked": true}, "role revoked", nil)
}
