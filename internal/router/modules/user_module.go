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

// UserModule wires the account endpoints. Self-service routes need only a
// session; admin routes are gated on users.* permissions.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   *application.UserService
	Checker *service.PermissionService
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, users *application.UserService, checker *service.PermissionService, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Users: users, Checker: checker, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/users/me", m.Handler.Me)
		auth.PUT("/users/me", m.Handler.UpdateProfile)
		auth.PUT("/users/me/password", m.Handler.ChangePassword)
		auth.POST("/users/me/avatar", m.Handler.UploadAvatar)
		auth.GET("/users/search", m.Handler.Search)

		canRead := middleware.RequirePermission(m.Users, m.Checker, "users.read")
		canUpdate := middleware.RequirePermission(m.Users, m.Checker, "users.update")

		auth.GET("/users", canRead, m.Handler.List)
		auth.GET("/users/:id/security", canRead, m.Handler.SecurityInfo)
		auth.PUT("/users/:id/active", canUpdate, m.Handler.SetActive)
		auth.POST("/users/:id/unlock", canUpdate, m.Handler.Unlock)
	}
}
