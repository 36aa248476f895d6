package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/pkg/jwt"
	"github.com/xxxsen/docvault/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
)

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "missing authorization")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "invalid authorization")
			return
		}
		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth attaches the caller identity when a valid bearer token is
// present. Missing or invalid tokens leave the request anonymous.
func OptionalJWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if ok {
			claims, err := jwt.ParseToken(token, secret)
			if err == nil {
				setIdentity(c, claims)
			} else {
				logutil.GetLogger(c.Request.Context()).Debug("ignore invalid optional token", zap.Error(err))
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserIDKey, claims.UserID)
	if claims.Email != "" {
		c.Set(ContextUserEmailKey, claims.Email)
	}
}
