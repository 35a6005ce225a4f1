// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the admin surface.
// Token verification is decoupled via a narrow TokenVerifier function type so
// the middleware stays independent of the session service implementation.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth on success.
const (
	ctxKeyAdminID    = "adminID"
	ctxKeyAdminEmail = "adminEmail"
)

// TokenVerifier validates an access token and returns the authenticated
// admin's identity. It must return an error for any token that should not be
// trusted: malformed, forged, or expired.
type TokenVerifier func(token string) (adminID, email string, err error)

// AdminID returns the authenticated admin's ID from the Gin context, or ""
// when the request is unauthenticated.
func AdminID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyAdminID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AdminEmail returns the authenticated admin's email from the Gin context.
func AdminEmail(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyAdminEmail); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAuth returns a middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header. On success, the admin identity is
// stored in the context for handlers and downstream middleware (rate-limit
// keying, logging).
func RequireAuth(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
			unauthorized(c, "missing bearer token")
			return
		}
		adminID, email, err := verify(strings.TrimSpace(h[len(prefix):]))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ctxKeyAdminID, adminID)
		c.Set(ctxKeyAdminEmail, email)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
