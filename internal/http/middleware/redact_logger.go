// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger for the public API.
// The inquiry funnel carries client names, email addresses, and phone numbers
// in query strings and occasionally in custom headers; none of it may reach
// the logs. The logger therefore scrubs request metadata before emitting a
// structured zerolog line, and it never logs request or response bodies.
//
// Headers masked outright, without configuration:
//
//	Authorization, Cookie, Set-Cookie  — credentials
//	Webhook-Signature                  — provider HMAC; a logged value lets a
//	                                     log reader replay the delivery
//	Idempotency-Key                    — client-chosen, may embed an email
//
// Deployments can extend the mask set via RedactOptions.MaskHeaders.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Scrub patterns applied to query strings and unmasked header values.
// UUIDs go first: the phone pattern would otherwise match the digit runs
// inside an inquiry ID.
var (
	redactUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	redactPhone = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// maskedHeaders are always replaced with "[REDACTED]" regardless of options.
// Names are lowercase; matching is case-insensitive.
var maskedHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"webhook-signature",
	"idempotency-key",
}

// RedactOptions extends the built-in header mask set. MaskHeaders entries are
// matched case-insensitively and merged with maskedHeaders.
type RedactOptions struct {
	MaskHeaders []string
}

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = redactUUID.ReplaceAllString(s, "[REDACTED:id]")
	s = redactEmail.ReplaceAllString(s, "[REDACTED:email]")
	s = redactPhone.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values removed: method, route, scrubbed query, status, response
// size, latency, request id, and headers (masked or scrubbed). The log level
// follows the status: INFO, WARN for 4xx, ERROR for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	mask := make(map[string]struct{}, len(maskedHeaders)+len(opts.MaskHeaders))
	for _, h := range maskedHeaders {
		mask[h] = struct{}{}
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mask[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Prefer the route pattern so inquiry IDs stay out of the path field.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		query := scrub(c.Request.URL.RawQuery)

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, hidden := mask[strings.ToLower(k)]; hidden {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()

		// The response header is authoritative: RequestID() sets it even when
		// the client supplied none.
		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
