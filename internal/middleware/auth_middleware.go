package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/pkg/jwt"
)

const userContextKey = "user_context"

// UserContext holds the authenticated user's identity for the request
type UserContext struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

// AuthMiddleware validates the Bearer token and attaches the user context
func AuthMiddleware(jwtManager *jwt.Manager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "Authorization header must be a Bearer token",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			}).Warn("Rejected invalid access token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(userContextKey, &UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   models.Role(claims.Role),
		})
		c.Next()
	}
}

// RequireRole allows only the listed roles past
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, ok := GetUserContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "forbidden",
			"message": "Insufficient permissions",
		})
		c.Abort()
	}
}

// SetUserContext attaches a user context directly, bypassing token
// validation. Used by tests.
func SetUserContext(c *gin.Context, userCtx *UserContext) {
	c.Set(userContextKey, userCtx)
}

// GetUserContext retrieves the authenticated user from the gin context
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	userCtx, ok := value.(*UserContext)
	return userCtx, ok
}
