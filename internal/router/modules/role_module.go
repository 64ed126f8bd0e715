package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/internal/container"
	"github.com/erpsuite/identity/internal/domain/service"
	handlers "github.com/erpsuite/identity/internal/interface/http"
	"github.com/erpsuite/identity/internal/interface/middleware"
	"github.com/erpsuite/identity/pkg/helpers"
)

// RoleModule wires role administration, gated on roles.* permissions. Level
// checks against the acting user happen in the application service.
type RoleModule struct {
	Handler *handlers.RoleHandler
	Users   *application.UserService
	Checker *service.PermissionService
	JWT     *helpers.JWTManager
}

func NewRoleModule(h *handlers.RoleHandler, users *application.UserService, checker *service.PermissionService, jwt *helpers.JWTManager) *RoleModule {
	return &RoleModule{Handler: h, Users: users, Checker: checker, JWT: jwt}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		canCreate := middleware.RequirePermission(m.Users, m.Checker, "roles.create")
		canRead := middleware.RequirePermission(m.Users, m.Checker, "roles.read")
		canUpdate := middleware.RequirePermission(m.Users, m.Checker, "roles.update")

		auth.POST("/roles", canCreate, m.Handler.Create)
		auth.GET("/roles", canRead, m.Handler.List)
		auth.GET("/roles/:id", canRead, m.Handler.Get)
		auth.PUT("/roles/:id/permissions", canUpdate, m.Handler.UpdatePermissions)
		auth.POST("/roles/:id/assign", canUpdate, m.Handler.Assign)
		auth.POST("/roles/:id/revoke", canUpdate, m.Handler.Revoke)
	}
}
