package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/utils"
)

const (
	keyUserID = "userID"
	keyEmail  = "email"
	keyRole   = "role"
)

// Auth validates the bearer access token and stores its claims on the
// gin context.
func Auth(secret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			responses.Error(c, log, apperrors.New(apperrors.CodeUnauthorized, "missing token"))
			return
		}

		tokenStr := strings.TrimSpace(header[len("bearer "):])
		claims, err := utils.ValidateToken(tokenStr, secret)
		if err != nil || claims.UserID == "" {
			responses.Error(c, log, apperrors.New(apperrors.CodeUnauthorized, "invalid or expired token"))
			return
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyEmail, claims.Email)
		c.Set(keyRole, claims.Role)
		if log != nil {
			ctx := log.WithFields(c.Request.Context(), map[string]any{
				"user_id":    claims.UserID,
				"actor_role": claims.Role,
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. It must
// run after Auth.
func RequireRoles(log *logger.Logger, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			responses.Error(c, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
			return
		}
		role := models.Role(Role(c))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		responses.Error(c, log, apperrors.New(apperrors.CodeForbidden, "insufficient permissions"))
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(keyUserID)
}

func Email(c *gin.Context) string {
	return c.GetString(keyEmail)
}

func Role(c *gin.Context) string {
	return c.GetString(keyRole)
}
