// Package domain defines the persistence models for inquiries, content
// entities, and admin users. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ClientType distinguishes private individuals from business clients. The
// distinction matters for invoicing: business clients must submit billing
// details after payment before their invoice can be finalized.
type ClientType string

const (
	ClientPrivate  ClientType = "private"
	ClientBusiness ClientType = "business"
)

// Path is the funnel branch chosen at step 3.
type Path string

const (
	PathUnset   Path = ""
	PathGeneral Path = "general"
	PathConsult Path = "consult"
)

// Timeline is the client's desired project start window.
type Timeline string

const (
	TimelineASAP        Timeline = "asap"
	TimelineThreeMonths Timeline = "3m"
	TimelineSixMonths   Timeline = "6m"
	TimelineOneYear     Timeline = "1y"
)

// ValidTimeline reports whether t is one of the accepted timeline values.
func ValidTimeline(t Timeline) bool {
	switch t {
	case TimelineASAP, TimelineThreeMonths, TimelineSixMonths, TimelineOneYear:
		return true
	}
	return false
}

// Status is the inquiry lifecycle state. Transitions are validated centrally
// through CanTransitionTo rather than compared ad hoc at call sites.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSubmitted         Status = "submitted"
	StatusReviewed          Status = "reviewed"
	StatusConsultPendingPay Status = "consultation_pending_payment"
	StatusPaymentPending    Status = "payment_pending"
	StatusPaid              Status = "paid"
	StatusInvoiceFinalized  Status = "invoice_finalized"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

// statusTransitions is the single source of truth for legal status moves.
// Cancellation is reachable from every non-terminal state via admin action.
var statusTransitions = map[Status][]Status{
	StatusDraft:             {StatusSubmitted, StatusConsultPendingPay, StatusPaymentPending, StatusPaid, StatusCancelled},
	StatusSubmitted:         {StatusReviewed, StatusCompleted, StatusCancelled},
	StatusReviewed:          {StatusCompleted, StatusCancelled},
	StatusConsultPendingPay: {StatusPaymentPending, StatusPaid, StatusCancelled},
	StatusPaymentPending:    {StatusPaid, StatusCancelled},
	StatusPaid:              {StatusInvoiceFinalized, StatusCompleted, StatusCancelled},
	StatusInvoiceFinalized:  {StatusCompleted, StatusCancelled},
	StatusCompleted:         {},
	StatusCancelled:         {},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition. Re-asserting the current status is always allowed so that
// idempotent writers (webhook redelivery, fallback reconciliation) converge
// instead of erroring.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// PaymentStatus tracks the external checkout outcome, independent of Status.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// InvoiceStatus tracks the external invoice lifecycle for consult inquiries.
type InvoiceStatus string

const (
	InvoicePending        InvoiceStatus = "pending"
	InvoiceBillingPending InvoiceStatus = "billing_pending"
	InvoiceFinalized      InvoiceStatus = "finalized"
)

// ConsultationDuration is the booked consultation length in minutes.
// Pricing is a fixed lookup keyed by this value.
type ConsultationDuration string

const (
	Duration30 ConsultationDuration = "30"
	Duration60 ConsultationDuration = "60"
	Duration90 ConsultationDuration = "90"
)

// ValidDuration reports whether d is one of the bookable durations.
func ValidDuration(d ConsultationDuration) bool {
	switch d {
	case Duration30, Duration60, Duration90:
		return true
	}
	return false
}

// Consultation holds the consult-path booking details captured at step 4.
// Billing information is collected strictly post-payment (see BillingDetails
// on Inquiry), never embedded here.
type Consultation struct {
	Duration      ConsultationDuration `json:"duration"       gorm:"type:varchar(8)"`
	RoadmapReport bool                 `json:"roadmap_report"`
	Format        string               `json:"format"         gorm:"type:varchar(32)"`
	ScheduledAt   *time.Time           `json:"scheduled_at,omitempty"`
}

// Inquiry is the central request/booking record accumulated across the
// four-step funnel. Each step is an idempotent merge-update keyed by ID;
// step ordering is deliberately not enforced.
//
// Payment linkage fields reference the external checkout provider. They are
// written by CreateCheckout and by the paid-state reconcilers (webhook and
// pull verification), which must commute.
type Inquiry struct {
	ID         string     `json:"id"          gorm:"type:char(36);primaryKey"`
	ClientType ClientType `json:"client_type" gorm:"type:varchar(16);not null;default:'private';index"`

	// Step 1: identity.
	FirstName string `json:"first_name" gorm:"type:varchar(128)"`
	LastName  string `json:"last_name"  gorm:"type:varchar(128)"`
	Email     string `json:"email"      gorm:"type:varchar(255);index"` // normalized lowercase
	Phone     string `json:"phone"      gorm:"type:varchar(64)"`

	// Step 2: project context.
	Address          string     `json:"address"           gorm:"type:varchar(512)"`
	SelectedServices StringList `json:"selected_services" gorm:"type:text"`
	Budget           string     `json:"budget"            gorm:"type:varchar(64)"`
	Timeline         Timeline   `json:"timeline"          gorm:"type:varchar(8)"`
	Surface          string     `json:"surface"           gorm:"type:varchar(64)"`
	Description      string     `json:"description"       gorm:"type:text"`
	Documents        StringList `json:"documents"         gorm:"type:text"`

	// Step 3: branch selection. Immutable once submission or payment begins.
	SelectedPath Path `json:"selected_path" gorm:"type:varchar(16);index"`

	// Step 4 (consult path only).
	Consultation Consultation `json:"consultation" gorm:"embedded;embeddedPrefix:consult_"`

	// Step is the furthest completed funnel step, monotonically non-decreasing
	// and independent of Status.
	Step   int    `json:"step"   gorm:"not null;default:1"`
	Status Status `json:"status" gorm:"type:varchar(32);not null;default:'draft';index"`

	// External payment references.
	CheckoutSessionID string        `json:"checkout_session_id,omitempty" gorm:"type:varchar(255);index"`
	CustomerID        string        `json:"customer_id,omitempty"         gorm:"type:varchar(255)"`
	InvoiceID         string        `json:"invoice_id,omitempty"          gorm:"type:varchar(255)"`
	PaymentStatus     PaymentStatus `json:"payment_status"                gorm:"type:varchar(16);index"`
	InvoiceStatus     InvoiceStatus `json:"invoice_status"                gorm:"type:varchar(24)"`
	AmountDue         int64         `json:"amount_due"` // cents

	PaidAt             *time.Time `json:"paid_at,omitempty"`
	BillingCollectedAt *time.Time `json:"billing_collected_at,omitempty"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`

	// Admin annotations.
	Notes      []InquiryNote `json:"notes,omitempty" gorm:"foreignKey:InquiryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
	ReviewedBy string        `json:"reviewed_by,omitempty" gorm:"type:varchar(128)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Inquiry.
func (Inquiry) TableName() string { return "inquiries" }

// InquiryNote is an append-only admin annotation on an inquiry.
type InquiryNote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	InquiryID string    `json:"inquiry_id" gorm:"type:char(36);not null;index"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Author    string    `json:"author"     gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for InquiryNote.
func (InquiryNote) TableName() string { return "inquiry_notes" }
