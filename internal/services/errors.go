// Package services defines the business logic for the inquiry funnel, payment
// reconciliation, content entities, and admin sessions. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages and HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Inquiry funnel errors.
var (
	// ErrInquiryNotFound indicates that the requested inquiry does not exist.
	ErrInquiryNotFound = errors.New("inquiry not found")

	// ErrInvalidPath is returned when the chosen path is neither "general"
	// nor "consult".
	ErrInvalidPath = errors.New("path must be general or consult")

	// ErrPathLocked is returned when a path change is attempted after
	// submission or payment has begun.
	ErrPathLocked = errors.New("path can no longer be changed")

	// ErrWrongPath is returned when an operation belonging to one funnel
	// branch is invoked on an inquiry that chose the other branch.
	ErrWrongPath = errors.New("operation not valid for the selected path")

	// ErrAlreadySubmitted is returned when a general-path inquiry is
	// submitted a second time.
	ErrAlreadySubmitted = errors.New("inquiry already submitted")

	// ErrInvalidTimeline is returned for timeline values outside the
	// accepted set.
	ErrInvalidTimeline = errors.New("timeline must be one of: asap, 3m, 6m, 1y")

	// ErrInvalidDuration is returned for consultation durations outside the
	// bookable set.
	ErrInvalidDuration = errors.New("duration must be one of: 30, 60, 90")

	// ErrInvalidTransition is returned when a requested status change is not
	// permitted by the lifecycle transition table.
	ErrInvalidTransition = errors.New("illegal status transition")

	// ErrEmptyNote is returned when an admin note has no text.
	ErrEmptyNote = errors.New("note text is required")

	// ErrInvalidClientType is returned for client types outside the
	// accepted set.
	ErrInvalidClientType = errors.New("client type must be private or business")
)

// Payment errors.
var (
	// ErrMissingEmail is returned when checkout is requested for an inquiry
	// without a deliverable email address. The provider must be able to send
	// a receipt, so this fails fast before any external call.
	ErrMissingEmail = errors.New("inquiry has no valid email address")

	// ErrPaymentNotCompleted is returned when billing finalization is
	// attempted before payment completed.
	ErrPaymentNotCompleted = errors.New("payment has not completed")

	// ErrPaymentRefsMissing is returned when billing finalization is
	// attempted before checkout created the customer and invoice references.
	ErrPaymentRefsMissing = errors.New("customer or invoice reference missing")

	// ErrMissingBillingFields is returned when business billing details lack
	// the company name or a complete address.
	ErrMissingBillingFields = errors.New("company name, address line, city and postal code are required")

	// ErrNotBusinessClient is returned when business billing is submitted
	// for a private-client inquiry.
	ErrNotBusinessClient = errors.New("billing details apply to business clients only")

	// ErrInvoiceFinalize marks the partial-failure outcome of billing
	// finalization: the customer update succeeded but the remote invoice
	// could not be finalized. Callers surface this distinctly from a total
	// failure.
	ErrInvoiceFinalize = errors.New("billing details saved, but invoice finalization failed")
)

// Content entity errors.
var (
	// ErrContentNotFound indicates a missing project, blog, news item, or
	// testimonial.
	ErrContentNotFound = errors.New("content not found")

	// ErrDuplicateTestimonial is returned when a testimonial reuses an email
	// or phone number already present.
	ErrDuplicateTestimonial = errors.New("a testimonial with this email or phone number already exists")

	// ErrMissingTitle is returned when a content entity is created without
	// a title.
	ErrMissingTitle = errors.New("title is required")

	// ErrMissingQuote is returned when a testimonial lacks a name or quote.
	ErrMissingQuote = errors.New("name and quote are required")
)

// Admin session errors.
var (
	// ErrInvalidCredentials is returned on login with an unknown email or
	// wrong password. Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned for malformed, forged, or revoked tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for structurally valid but expired tokens.
	ErrExpiredToken = errors.New("token expired")
)
