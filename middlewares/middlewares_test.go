package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/middlewares"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCorrelationId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.CorrelationId())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen, _ = utils.GetCorrelationIdFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get(middlewares.CorrelationIdHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middlewares.CorrelationIdHeader, "abc-123")
	w = serve(r, req)
	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", w.Header().Get(middlewares.CorrelationIdHeader))
}

func TestErrorLoggerOnlyLogsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(middlewares.CorrelationId(), middlewares.ErrorLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Empty(t, hook.AllEntries())

	serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.Equal(t, http.StatusInternalServerError, entry.Data["status"])
	require.NotEmpty(t, entry.Data["correlation_id"])
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := middlewares.NewRateLimiter(func() *redis.Client { return nil }, 1, time.Minute)
	r := gin.New()
	r.Use(limiter.Middleware)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		c.Request = c.Request.WithContext(utils.SetRoleInContext(c.Request.Context(), role))
	})
	r.GET("/admin", middlewares.RequireRoles("admin", "manager"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for role, want := range map[string]int{"admin": http.StatusOK, "manager": http.StatusOK, "cashier": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-Test-Role", role)
		require.Equal(t, want, serve(r, req).Code, "role %q", role)
	}
}
