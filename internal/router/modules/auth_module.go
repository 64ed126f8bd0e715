package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erpsuite/identity/internal/container"
	handlers "github.com/erpsuite/identity/internal/interface/http"
	"github.com/erpsuite/identity/internal/interface/middleware"
	"github.com/erpsuite/identity/pkg/helpers"
)

// AuthModule wires the credential endpoints.
// Public: POST /api/auth/register, /api/auth/login, /api/auth/refresh,
// /api/auth/verify/confirm. Protected: /api/auth/logout, /api/auth/verify/init.
type AuthModule struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	JWT   *helpers.JWTManager
}

func NewAuthModule(auth *handlers.AuthHandler, users *handlers.UserHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Auth: auth, Users: users, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Brute-force surface gets tight per-IP limits
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	verifyConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Users.Register)
	rg.POST("/auth/login", loginLimiter, m.Auth.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Auth.Refresh)
	rg.POST("/auth/verify/confirm", verifyConfirmLimiter, m.Auth.VerifyConfirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/auth/logout", m.Auth.Logout)
		auth.POST("/auth/verify/init", m.Auth.VerifyInit)
	}
}
