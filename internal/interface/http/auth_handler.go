package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/config"
	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/pkg/helpers"
	"github.com/erpsuite/identity/pkg/mailer"
	"github.com/erpsuite/identity/pkg/response"
	"github.com/erpsuite/identity/pkg/validation"
)

// tokenStore is the slice of redis the verification flow needs. GetDel makes
// token consumption single-use even when confirms race.
type tokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

type AuthHandler struct {
	Auth    *application.AuthService
	Users   *application.UserService
	RDB     tokenStore
	Logger  *logrus.Logger
	Cfg     *config.Config
	Pub     *helpers.RabbitPublisher
	Cookies *helpers.Manager
}

func NewAuthHandler(auth *application.AuthService, users *application.UserService, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	h := &AuthHandler{
		Auth:    auth,
		Users:   users,
		Logger:  logger,
		Cfg:     cfg,
		Pub:     pub,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
	if rdb != nil {
		h.RDB = rdb
	}
	return h
}

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
// Credential failures are 401 without detail; account-state failures are 403
// with the state message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountDeactivated),
			errors.Is(err, application.ErrAccountLocked),
			errors.Is(err, application.ErrEmailNotVerified):
			response.Error[any](c, http.StatusForbidden, err.Error(), nil)
		default:
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		}
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	if uid != "" {
		_ = h.Auth.Logout(c.Request.Context(), uid)
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// VerifyInit POST /api/auth/verify/init (auth required)
// Issues a verification token and queues the email.
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	user, err := h.Users.GetProfile(c.Request.Context(), mustUUID(uid))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if user.IsVerified {
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusInternalServerError, "verification unavailable", nil)
		return
	}

	tok, err := genToken(32)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	h.RDB.Set(c, keyVerifyToken(tok), uid, 24*time.Hour)
	link := h.Cfg.VerifyEmailURL + "?token=" + tok

	if h.Pub != nil && h.Cfg.MailSendEnabled {
		job := mailer.EmailJob{
			To:       user.Email.String(),
			Template: "verify_email",
			Data: map[string]any{
				"Name":         user.FullName(),
				"Company":      h.Cfg.CompanyName,
				"Link":         link,
				"ExpiresHours": 24,
			},
		}
		if err := h.Pub.PublishJSON(c, job); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("enqueue verify email failed")
		}
	}

	response.Success(c, http.StatusOK, gin.H{"verify_link": link}, "verification link", nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusInternalServerError, "verification unavailable", nil)
		return
	}
	// GETDEL consumes the token in one step; a racing confirm with the same
	// token sees it already gone.
	uid, err := h.RDB.GetDel(c, keyVerifyToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Users.Users.SetVerified(c.Request.Context(), mustUUID(uid)); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}
