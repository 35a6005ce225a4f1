// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. The API serves JSON to the marketing
// site and to the admin dashboard, both browser clients, plus CSV/XLSX export
// downloads; the hardening posture reflects that:
//
//   - nosniff and DENY framing always, so export attachments and JSON bodies
//     are never sniffed or embedded
//   - no Content-Security-Policy (nothing here renders HTML)
//   - HSTS opt-in, and only when the request actually arrived over HTTPS —
//     the app usually sits behind a reverse proxy terminating TLS
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers SecurityHeaders emits.
//
// EnableHSTS must only be set when traffic is HTTPS end-to-end, including the
// proxy-to-app hop. HSTSMaxAge defaults to 180 days when unset.
//
// NoStore adds Cache-Control: no-store (plus legacy Pragma/Expires) for
// deployments that must keep inquiry data out of shared caches.
//
// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
// Browser-only headers; harmless for the webhook and other server clients.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// SecurityHeaders returns a Gin middleware that stamps security headers onto
// every response.
//
// Always: X-Content-Type-Options: nosniff, X-Frame-Options: DENY,
// Referrer-Policy: no-referrer. The optional groups follow SecurityOptions.
// When an X-Request-ID response header is present it is appended to
// Access-Control-Expose-Headers so the dashboard can surface it in error
// reports.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hstsValue := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			// Checkout happens on the provider's page, so payment stays off too.
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		// Never emit HSTS on plain HTTP: a cached policy from a misconfigured
		// deployment locks browsers out for its whole max-age.
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, either directly or
// via a proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
