// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail() helper.
// They give clients a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes (bad_request, unauthorized, conflict, …) mirror common
//     HTTP status semantics.
//   - Domain-specific codes are reserved for business outcomes that a status
//     alone cannot convey (e.g. a partially-failed billing finalization).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodePathLocked       = "path_locked"
	ErrCodeBadSignature     = "bad_signature"
	ErrCodePaymentFailed    = "payment_failed"
	ErrCodeBillingPartial   = "billing_partial_failure"
	ErrCodeUploadFailed     = "upload_failed"
	ErrCodeExportFailed     = "export_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
