package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlibro/librogate/internal/session"
	"github.com/openlibro/librogate/pkg/helpers"
	"github.com/openlibro/librogate/pkg/response"
)

// CtxSessionKey holds the *session.Session for the current request.
// It is absent (or nil) for anonymous visitors.
const CtxSessionKey = "session"

// Auth requires a valid access token and injects the session into the
// Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionFromCookie(c, jwt)
		if s == nil {
			response.Error[any](c, http.StatusUnauthorized, "missing or invalid access token", nil, nil)
			c.Abort()
			return
		}
		c.Set(CtxSessionKey, s)
		c.Next()
	}
}

// OptionalAuth injects the session when a valid access token is present and
// lets anonymous visitors through untouched.
func OptionalAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := sessionFromCookie(c, jwt); s != nil {
			c.Set(CtxSessionKey, s)
		}
		c.Next()
	}
}

// SessionFrom extracts the session set by Auth/OptionalAuth; nil for
// anonymous visitors.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func sessionFromCookie(c *gin.Context, jwt *helpers.JWTManager) *session.Session {
	token, err := c.Cookie("access_token")
	if err != nil || token == "" {
		return nil
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil
	}
	return &session.Session{UserID: claims.UserID, Username: claims.Username}
}
