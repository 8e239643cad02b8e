package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"face-attendance/internal/middleware"
	"face-attendance/internal/shared/contextutil"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "kiosk-read-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthMiddleware(t *testing.T) {
	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.GET("/attendances", middleware.AuthMiddleware(secret), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id": c.GetString("user_id"),
				"ctx":     contextutil.GetUserID(c.Request.Context()),
			})
		})
		return r
	}

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
		wantMsg  string
		wantUser string
	}{
		{
			name:     "valid token",
			secret:   testSecret,
			header:   "Bearer " + sign(t, testSecret, jwt.MapClaims{"user_id": "hr-1", "role": "hr", "exp": time.Now().Add(time.Hour).Unix()}),
			wantCode: http.StatusOK,
			wantUser: "hr-1",
		},
		{
			name:     "subject claim",
			secret:   testSecret,
			header:   "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": "hr-2", "exp": time.Now().Add(time.Hour).Unix()}),
			wantCode: http.StatusOK,
			wantUser: "hr-2",
		},
		{
			name:     "missing token",
			secret:   testSecret,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Token not found",
		},
		{
			name:     "expired",
			secret:   testSecret,
			header:   "Bearer " + sign(t, testSecret, jwt.MapClaims{"user_id": "hr-1", "exp": time.Now().Add(-time.Minute).Unix()}),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Token expired",
		},
		{
			name:     "wrong secret",
			secret:   testSecret,
			header:   "Bearer " + sign(t, "other", jwt.MapClaims{"user_id": "hr-1"}),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Invalid token",
		},
		{
			name:     "no user claim",
			secret:   testSecret,
			header:   "Bearer " + sign(t, testSecret, jwt.MapClaims{"role": "hr"}),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Invalid token",
		},
		{
			name:     "gate not configured",
			secret:   "",
			header:   "Bearer " + sign(t, testSecret, jwt.MapClaims{"user_id": "hr-1"}),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Token not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/attendances", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			newRouter(tt.secret).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var body map[string]string
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantUser, body["user_id"])
				assert.Equal(t, tt.wantUser, body["ctx"])
				return
			}
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Ok)
			if assert.NotNil(t, env.Error) {
				assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
				assert.Equal(t, tt.wantMsg, env.Error.Message)
			}
		})
	}
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	r := gin.New()
	r.GET("/attendances", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/attendances", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: sign(t, testSecret, jwt.MapClaims{"user_id": "hr-1"})})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
