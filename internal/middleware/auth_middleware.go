package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/contextutil"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired = apperror.New(apperror.CodeUnauthorized, "Token expired", http.StatusUnauthorized)
)

const (
	accessTokenCookie = "access_token"
	clockSkew         = 30 * time.Second
)

// bearerToken reads the Authorization header, then the access_token cookie.
func bearerToken(c *gin.Context) string {
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && token != "" {
		return token
	}
	token, _ := c.Cookie(accessTokenCookie)
	return token
}

// verify checks an HMAC-signed token and returns the caller id (user_id,
// else sub) and role.
func verify(tokenString, secret string) (userID, role string, err error) {
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(clockSkew),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", "", ErrTokenExpired.WithCause(err)
	case err != nil:
		return "", "", ErrInvalidToken.WithCause(err)
	}

	userID, _ = claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims.GetSubject()
	}
	if userID == "" {
		return "", "", ErrInvalidToken.WithDetails("user id not found in token")
	}
	role, _ = claims["role"].(string)
	return userID, role, nil
}

// AuthMiddleware only verifies bearer tokens issued by the authentication
// gate; this service never issues them. An empty secret rejects everything.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" || secret == "" {
			response.AbortWithError(c, ErrTokenMissing)
			return
		}

		userID, role, err := verify(token, secret)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Request = c.Request.WithContext(contextutil.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
