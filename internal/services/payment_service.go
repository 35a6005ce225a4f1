// Package services – PaymentService
//
// This file drives the external checkout for the consult path and guarantees
// that an inquiry ends in a consistent paid/invoiced state despite
// asynchronous, possibly duplicated, possibly out-of-order confirmation.
//
// The webhook handler is the authoritative writer of payment state; the
// pull-based verification path is a fallback reconciler for when the push
// channel is missed or delayed. Both funnel into applyPaid, which is
// idempotent (re-delivery never re-stamps paidAt) and therefore commutative:
// applying either writer, or both in any order, converges to the same final
// inquiry state.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/repo"
)

// CheckoutProvider is the capability PaymentService needs from the payment
// client. Implementations must be safe for concurrent use.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*payments.CheckoutSession, error)
	UpdateCustomer(ctx context.Context, id, name string, addr payments.Address) (*payments.Customer, error)
	CreateTaxID(ctx context.Context, customerID, taxType, value string) (*payments.TaxID, error)
	GetInvoice(ctx context.Context, id string) (*payments.Invoice, error)
	FinalizeInvoice(ctx context.Context, id string) (*payments.Invoice, error)
}

// Reconciliation outcome metrics. Labels stay low-cardinality: the source of
// the paid-state write and its outcome (applied, noop, or status_kept when
// the inquiry had already reached a terminal status).
var (
	paidTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_paid_transitions_total",
			Help: "Paid-state writes by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Webhook deliveries by event type and result.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(paidTransitions, webhookEvents)
}

// PaymentService owns checkout creation, paid-state reconciliation, and
// post-payment billing finalization.
type PaymentService struct {
	DB       *gorm.DB
	Provider CheckoutProvider

	WebhookSecret string
	SuccessURL    string
	CancelURL     string

	// Tolerance bounds webhook timestamp age; zero means DefaultTolerance.
	Tolerance time.Duration
}

// BillingInput carries post-payment billing details for business clients.
type BillingInput struct {
	CompanyName string
	Line1       string
	Line2       string
	City        string
	PostalCode  string
	Country     string
	VATNumber   string
}

// CreateCheckout opens a checkout session for a consult-path inquiry and
// persists the returned references with paymentStatus pending.
//
// The inquiry must carry a deliverable email (the provider sends the receipt
// there); this is validated before any I/O. Price is the fixed lookup of
// duration plus the optional roadmap add-on. The provider is instructed to
// always create a customer record and to collect the billing address — plus a
// tax ID for business clients — during checkout.
func (s *PaymentService) CreateCheckout(ctx context.Context, inquiryID string, duration domain.ConsultationDuration, roadmapReport bool) (*domain.Inquiry, *payments.CheckoutSession, error) {
	ctx, span := s.span(ctx, "CreateCheckout", inquiryID)
	defer span.End()

	inq, err := repo.GetInquiry(ctx, s.DB, inquiryID)
	if err != nil {
		return nil, nil, s.mapNotFound(err)
	}
	if !validEmail(inq.Email) {
		return nil, nil, ErrMissingEmail
	}
	if inq.SelectedPath != domain.PathConsult {
		return nil, nil, ErrWrongPath
	}
	amount, err := ConsultationPrice(duration, roadmapReport)
	if err != nil {
		return nil, nil, err
	}
	if !inq.Status.CanTransitionTo(domain.StatusPaymentPending) {
		return nil, nil, ErrInvalidTransition
	}

	name := fmt.Sprintf("Architecture consultation (%s min)", duration)
	if roadmapReport {
		name += " + roadmap report"
	}
	sess, err := s.Provider.CreateCheckoutSession(ctx, payments.CheckoutParams{
		CustomerEmail: inq.Email,
		ProductName:   name,
		AmountCents:   amount,
		Currency:      consultationCurrency,
		ReferenceID:   inq.ID,
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
		CollectTaxID:  inq.ClientType == domain.ClientBusiness,
	})
	if err != nil {
		return nil, nil, err
	}

	fields := map[string]any{
		"checkout_session_id":    sess.ID,
		"payment_status":         domain.PaymentPending,
		"invoice_status":         domain.InvoicePending,
		"amount_due":             amount,
		"status":                 domain.StatusPaymentPending,
		"consult_duration":       duration,
		"consult_roadmap_report": roadmapReport,
	}
	if sess.Customer != "" {
		fields["customer_id"] = sess.Customer
	}
	if sess.Invoice != "" {
		fields["invoice_id"] = sess.Invoice
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, inq.ID, fields); err != nil {
		return nil, nil, s.mapNotFound(err)
	}

	inq, err = repo.GetInquiry(ctx, s.DB, inq.ID)
	if err != nil {
		return nil, nil, s.mapNotFound(err)
	}
	return inq, sess, nil
}

// HandleWebhook processes a raw provider delivery. The signature is verified
// against the endpoint secret before the payload is trusted; verification
// failure rejects the whole delivery (payments.ErrBadSignature) and relies on
// the provider's redelivery policy. Unrecognized event types are logged and
// acknowledged, not errors.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	ctx, span := s.span(ctx, "HandleWebhook", "")
	defer span.End()

	tolerance := s.Tolerance
	if tolerance == 0 {
		tolerance = payments.DefaultTolerance
	}
	ev, err := payments.ParseEvent(payload, sigHeader, s.WebhookSecret, tolerance, time.Now())
	if err != nil {
		webhookEvents.WithLabelValues("unknown", "rejected").Inc()
		return err
	}

	switch ev.Type {
	case payments.EventCheckoutCompleted:
		sess, err := ev.Session()
		if err != nil {
			webhookEvents.WithLabelValues(ev.Type, "malformed").Inc()
			return err
		}
		if sess.PaymentStatus != payments.SessionPaid {
			// Completed but unpaid (e.g. delayed payment methods): nothing to do yet.
			webhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
			return nil
		}
		if err := s.reconcilePaid(ctx, sess, "webhook"); err != nil {
			webhookEvents.WithLabelValues(ev.Type, "error").Inc()
			return err
		}
		webhookEvents.WithLabelValues(ev.Type, "ok").Inc()
		return nil
	default:
		log.Info().Str("event_type", ev.Type).Str("event_id", ev.ID).Msg("ignoring webhook event")
		webhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		return nil
	}
}

// VerifySession is the pull-based fallback reconciler: it queries the
// provider for the session's current state and, when paid, applies the same
// transition as the webhook. It never regresses an already-paid inquiry.
func (s *PaymentService) VerifySession(ctx context.Context, sessionID string) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "VerifySession", "")
	defer span.End()

	sess, err := s.Provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus == payments.SessionPaid {
		if err := s.reconcilePaid(ctx, sess, "pull"); err != nil {
			return nil, err
		}
	}
	inq, err := repo.GetInquiryBySession(ctx, s.DB, sessionID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return inq, nil
}

// SessionStatus is the read path used by success/cancel pages. It returns the
// provider's view of the session and opportunistically applies the same
// catch-up reconciliation as VerifySession; a catch-up failure is logged, not
// surfaced, because the read itself succeeded.
func (s *PaymentService) SessionStatus(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	ctx, span := s.span(ctx, "SessionStatus", "")
	defer span.End()

	sess, err := s.Provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus == payments.SessionPaid {
		if err := s.reconcilePaid(ctx, sess, "lookup"); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("opportunistic reconciliation failed")
		}
	}
	return sess, nil
}

// FinalizeBusinessBilling collects post-payment billing details for a
// business client and finalizes the remote invoice.
//
// Failure semantics: the customer update is fatal; tax-ID registration
// failures are logged and skipped; invoice finalization failure is surfaced
// distinctly as ErrInvoiceFinalize after the billing details have been
// recorded (partial failure, not total failure). An invoice that is no
// longer draft is treated as already finalized, not an error.
func (s *PaymentService) FinalizeBusinessBilling(ctx context.Context, inquiryID string, in BillingInput) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "FinalizeBusinessBilling", inquiryID)
	defer span.End()

	if strings.TrimSpace(in.CompanyName) == "" ||
		strings.TrimSpace(in.Line1) == "" ||
		strings.TrimSpace(in.City) == "" ||
		strings.TrimSpace(in.PostalCode) == "" {
		return nil, ErrMissingBillingFields
	}

	inq, err := repo.GetInquiry(ctx, s.DB, inquiryID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if inq.ClientType != domain.ClientBusiness {
		return nil, ErrNotBusinessClient
	}
	if inq.PaymentStatus != domain.PaymentPaid {
		return nil, ErrPaymentNotCompleted
	}
	if inq.CustomerID == "" || inq.InvoiceID == "" {
		return nil, ErrPaymentRefsMissing
	}

	if _, err := s.Provider.UpdateCustomer(ctx, inq.CustomerID, in.CompanyName, payments.Address{
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}); err != nil {
		return nil, err
	}

	if vat := strings.TrimSpace(in.VATNumber); vat != "" {
		if _, err := s.Provider.CreateTaxID(ctx, inq.CustomerID, "eu_vat", vat); err != nil {
			// Non-fatal: the invoice is still issued without the tax ID.
			log.Warn().Err(err).Str("inquiry_id", inq.ID).Msg("tax id registration failed")
		}
	}

	now := time.Now().UTC()
	if err := s.finalizeInvoice(ctx, inq.InvoiceID); err != nil {
		// Customer update already succeeded; record the collected billing
		// details and surface the split outcome.
		_ = repo.UpdateInquiryFields(ctx, s.DB, inq.ID, map[string]any{
			"billing_collected_at": now,
		})
		return nil, fmt.Errorf("%w: %v", ErrInvoiceFinalize, err)
	}

	fields := map[string]any{
		"status":               domain.StatusPaid,
		"invoice_status":       domain.InvoiceFinalized,
		"billing_collected_at": now,
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, inq.ID, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return repo.GetInquiry(ctx, s.DB, inq.ID)
}

// reconcilePaid locates the local inquiry for a paid session and applies the
// paid-state transition. Both the webhook and the pull reconciler call it; it
// is the only writer of paid-state fields.
func (s *PaymentService) reconcilePaid(ctx context.Context, sess *payments.CheckoutSession, source string) error {
	inq, err := repo.GetInquiryBySession(ctx, s.DB, sess.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) && sess.ClientReferenceID != "" {
		// Session reference not persisted (e.g. write lost); fall back to the
		// inquiry ID round-tripped through the provider.
		inq, err = repo.GetInquiry(ctx, s.DB, sess.ClientReferenceID)
	}
	if err != nil {
		return s.mapNotFound(err)
	}
	return s.applyPaid(ctx, inq, sess, source)
}

// applyPaid upserts the final paid-state fields onto the inquiry. The write
// is unconditional assignment of final values — never an increment — so
// re-application is harmless: an inquiry that is already paid is left
// untouched, preserving the original paidAt and any later invoice progress.
//
// The lifecycle status moves through the central transition table. When the
// inquiry can no longer reach paid (an admin cancelled it while the
// confirmation was in flight), the payment facts are still recorded so the
// money is not lost, but the terminal status stands.
func (s *PaymentService) applyPaid(ctx context.Context, inq *domain.Inquiry, sess *payments.CheckoutSession, source string) error {
	if inq.PaymentStatus == domain.PaymentPaid {
		paidTransitions.WithLabelValues(source, "noop").Inc()
		return nil
	}

	invoiceStatus := domain.InvoiceFinalized
	if inq.ClientType == domain.ClientBusiness {
		invoiceStatus = domain.InvoiceBillingPending
	}
	fields := map[string]any{
		"payment_status":      domain.PaymentPaid,
		"paid_at":             time.Now().UTC(),
		"invoice_status":      invoiceStatus,
		"checkout_session_id": sess.ID,
	}
	outcome := "applied"
	if inq.Status.CanTransitionTo(domain.StatusPaid) {
		fields["status"] = domain.StatusPaid
	} else {
		outcome = "status_kept"
		log.Warn().
			Str("inquiry_id", inq.ID).
			Str("session_id", sess.ID).
			Str("status", string(inq.Status)).
			Msg("payment confirmed for inquiry that cannot move to paid")
	}
	if sess.Customer != "" {
		fields["customer_id"] = sess.Customer
	}
	if sess.Invoice != "" {
		fields["invoice_id"] = sess.Invoice
	}
	if sess.AmountTotal > 0 {
		fields["amount_due"] = sess.AmountTotal
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, inq.ID, fields); err != nil {
		return s.mapNotFound(err)
	}
	paidTransitions.WithLabelValues(source, outcome).Inc()
	log.Info().
		Str("inquiry_id", inq.ID).
		Str("session_id", sess.ID).
		Str("source", source).
		Msg("payment reconciled")
	return nil
}

// finalizeInvoice issues the remote invoice when it is still draft. Any other
// state means the provider already issued it, which is a no-op here.
func (s *PaymentService) finalizeInvoice(ctx context.Context, invoiceID string) error {
	inv, err := s.Provider.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != payments.InvoiceDraft {
		return nil
	}
	_, err = s.Provider.FinalizeInvoice(ctx, invoiceID)
	return err
}

func (s *PaymentService) mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInquiryNotFound
	}
	return err
}

func (s *PaymentService) span(ctx context.Context, op, inquiryID string) (context.Context, trace.Span) {
	tr := otel.Tracer("services/PaymentService")
	return tr.Start(ctx, op, trace.WithAttributes(attribute.String("inquiry.id", inquiryID)))
}
