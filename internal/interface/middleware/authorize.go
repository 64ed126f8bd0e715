package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/internal/domain/service"
	"github.com/erpsuite/identity/pkg/response"
)

// RequirePermission resolves the caller's effective permission set and gates
// the route on the required permission. Wildcards are honored by the domain
// permission service; superusers always pass.
func RequirePermission(users *application.UserService, checker *service.PermissionService, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := uuid.Parse(c.GetString("userID"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		perms, isSuper, err := users.EffectivePermissions(c.Request.Context(), uid)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !isSuper && !checker.CheckPermission(perms, required) {
			response.Abort(c, http.StatusForbidden, "permission denied", gin.H{"required": required})
			return
		}
		c.Next()
	}
}
