package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/pkg/jwt"
)

func setupAuthRouter(t *testing.T, manager *jwt.Manager, roles ...models.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	group := router.Group("/protected")
	group.Use(AuthMiddleware(manager, logger))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("", func(c *gin.Context) {
		userCtx, ok := GetUserContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)

	t.Run("rejects a missing header", func(t *testing.T) {
		router := setupAuthRouter(t, manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		router := setupAuthRouter(t, manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		router := setupAuthRouter(t, manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("passes a valid token and sets the user context", func(t *testing.T) {
		router := setupAuthRouter(t, manager)

		token, err := manager.Generate(uuid.New(), "alex@example.com", "client")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)

	t.Run("blocks a client from a manager route", func(t *testing.T) {
		router := setupAuthRouter(t, manager, models.RoleManager, models.RoleAdmin)

		token, err := manager.Generate(uuid.New(), "alex@example.com", "client")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admits a manager", func(t *testing.T) {
		router := setupAuthRouter(t, manager, models.RoleManager, models.RoleAdmin)

		token, err := manager.Generate(uuid.New(), "sam@example.com", "manager")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
