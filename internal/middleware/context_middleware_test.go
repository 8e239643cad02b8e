package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"face-attendance/internal/middleware"
	"face-attendance/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(middleware.ContextLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		assert.Equal(t, "lobby-1", contextutil.GetKioskID(ctx))
		contextutil.GetLogger(ctx, zap.NewNop()).Info("handled")
		c.String(http.StatusOK, contextutil.GetRequestID(ctx))
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.HeaderRequestID, "req-42")
		req.Header.Set(middleware.HeaderKioskID, "lobby-1")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Body.String())
		assert.Equal(t, "req-42", rec.Header().Get(middleware.HeaderRequestID))
		entries := logs.TakeAll()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
		}
	})

	t.Run("generates one when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.HeaderKioskID, "lobby-1")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get(middleware.HeaderRequestID))
	})
}
