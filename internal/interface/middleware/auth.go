package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/erpsuite/identity/pkg/helpers"
	"github.com/erpsuite/identity/pkg/response"
)

// tokenFromRequest prefers the access_token cookie, falling back to a bearer
// Authorization header for non-browser clients.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// Auth validates the access token and requires a live Redis session whose sid
// matches the token. It sets userID, userEmail, and userRole in the context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		if rdb != nil {
			key := "user:session:" + claims.UserID
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 {
				response.Abort(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			if sid := data["sid"]; sid != "" && claims.SessionID != "" && sid != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "session superseded", nil)
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Subject)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}
