// Payment HTTP handlers.
//
// This file exposes the checkout and reconciliation endpoints:
//   - POST /inquiries/{id}/checkout   (open a checkout session)
//   - GET  /payments/session/{id}     (session status for success/cancel pages)
//   - POST /payments/session/{id}/verify (pull-based reconciliation)
//   - POST /payments/webhook          (authoritative push confirmation)
//   - POST /inquiries/{id}/billing    (post-payment business billing details)
//
// The webhook endpoint reads the raw request body so the provider signature
// can be verified byte-for-byte; it is mounted outside CORS.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/http/middleware"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

// WebhookSignatureHeader carries the provider's HMAC signature for webhook
// deliveries.
const WebhookSignatureHeader = "Webhook-Signature"

// idempotencyTTL bounds how long a stored checkout replay stays valid.
const idempotencyTTL = 24 * time.Hour

// CreateCheckoutRequest is the JSON payload opening a checkout session.
type CreateCheckoutRequest struct {
	Duration      string `json:"duration" binding:"required" example:"60"`
	RoadmapReport bool   `json:"roadmap_report"`
}

// CheckoutResponse returns the checkout redirect target alongside the
// updated inquiry.
type CheckoutResponse struct {
	Inquiry     *domain.Inquiry `json:"inquiry"`
	SessionID   string          `json:"session_id"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
}

// BillingRequest is the JSON payload with post-payment billing details for
// business clients.
type BillingRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Line1       string `json:"line1"        binding:"required"`
	Line2       string `json:"line2"`
	City        string `json:"city"         binding:"required"`
	PostalCode  string `json:"postal_code"  binding:"required"`
	Country     string `json:"country"`
	VATNumber   string `json:"vat_number"`
}

// CreateCheckout godoc
// @ID          createCheckout
// @Summary     Open a checkout session
// @Description Creates a provider checkout session for a consult-path inquiry.
// @Description Supports Idempotency-Key: retries with the same key replay the
// @Description previously created session instead of opening a new one.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Param       id               path    string  true   "Inquiry ID (UUID)"  format(uuid)
// @Param       Idempotency-Key  header  string  false  "Client retry key"
// @Param       body             body    handlers.CreateCheckoutRequest  true  "Checkout payload"
// @Success     201  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/checkout [post]
func (h *Handlers) CreateCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	// Replay: serve the previously created session without touching the
	// provider again.
	if middleware.IsReplay(c) {
		if key, okKey := middleware.GetIdempotencyKey(c); okKey {
			if svc, okSvc := h.paySvc.(*services.PaymentService); okSvc {
				if rec, err := repo.GetIdempotency(ctx, svc.DB, id, key, time.Now().UTC()); err == nil && rec != nil {
					inq, err := h.inqSvc.Get(ctx, id)
					if err != nil {
						h.failInquiry(c, err)
						return
					}
					ok(c, http.StatusOK, CheckoutResponse{Inquiry: inq, SessionID: rec.SessionID})
					return
				}
			}
		}
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "duration is required")
		return
	}

	inq, sess, err := h.paySvc.CreateCheckout(ctx, id, domain.ConsultationDuration(req.Duration), req.RoadmapReport)
	if err != nil {
		h.failPayment(c, err)
		return
	}

	// Record the session for idempotent replays (best effort).
	if key, okKey := middleware.GetIdempotencyKey(c); okKey {
		if svc, okSvc := h.paySvc.(*services.PaymentService); okSvc {
			_, _ = repo.CreateIdempotency(ctx, svc.DB, id, key, sess.ID, http.StatusCreated, idempotencyTTL)
		}
	}

	ok(c, http.StatusCreated, CheckoutResponse{Inquiry: inq, SessionID: sess.ID, CheckoutURL: sess.URL})
}

// Webhook godoc
// @ID          paymentWebhook
// @Summary     Receive provider payment confirmations
// @Description Verifies the delivery signature over the raw body and applies
// @Description the paid-state transition. Unknown event types are acknowledged.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Param       Webhook-Signature  header  string  true  "HMAC signature header"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /payments/webhook [post]
func (h *Handlers) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}
	if err := h.paySvc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(WebhookSignatureHeader)); err != nil {
		if errors.Is(err, payments.ErrBadSignature) {
			fail(c, http.StatusBadRequest, ErrCodeBadSignature, "signature verification failed")
			return
		}
		h.failPayment(c, err)
		return
	}
	okMessage(c, http.StatusOK, "received")
}

// SessionStatus godoc
// @ID          paymentSessionStatus
// @Summary     Read a checkout session's state
// @Description Returns the provider's view of the session. A paid session is
// @Description opportunistically reconciled onto the inquiry.
// @Tags        Payments
// @Produce     json
// @Param       id  path  string  true  "Checkout session ID"
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /payments/session/{id} [get]
func (h *Handlers) SessionStatus(c *gin.Context) {
	sess, err := h.paySvc.SessionStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failPayment(c, err)
		return
	}
	ok(c, http.StatusOK, sess)
}

// VerifySession godoc
// @ID          verifySession
// @Summary     Reconcile a checkout session
// @Description Pull-based fallback for a missed webhook: queries the provider
// @Description and applies the paid-state transition when the session is paid.
// @Tags        Payments
// @Produce     json
// @Param       id  path  string  true  "Checkout session ID"
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /payments/session/{id}/verify [post]
func (h *Handlers) VerifySession(c *gin.Context) {
	inq, err := h.paySvc.VerifySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failPayment(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// FinalizeBilling godoc
// @ID          finalizeBilling
// @Summary     Submit post-payment billing details (business clients)
// @Description Updates the provider customer, registers an optional VAT ID,
// @Description and finalizes the invoice. When finalization fails after the
// @Description details were recorded, the response is 202 with a distinct code.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Param       id    path  string                    true  "Inquiry ID (UUID)"  format(uuid)
// @Param       body  body  handlers.BillingRequest  true  "Billing details"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/billing [post]
func (h *Handlers) FinalizeBilling(c *gin.Context) {
	var req BillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "company_name, line1, city and postal_code are required")
		return
	}
	inq, err := h.paySvc.FinalizeBusinessBilling(c.Request.Context(), c.Param("id"), services.BillingInput{
		CompanyName: req.CompanyName,
		Line1:       req.Line1,
		Line2:       req.Line2,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		VATNumber:   req.VATNumber,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvoiceFinalize) {
			// Billing details were persisted; only the remote finalization is
			// outstanding. Accepted, not failed.
			c.JSON(http.StatusAccepted, Envelope{Success: true, Message: err.Error()})
			return
		}
		h.failPayment(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// failPayment translates payment service errors to HTTP responses.
func (h *Handlers) failPayment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInquiryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrWrongPath),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPaymentNotCompleted),
		errors.Is(err, services.ErrPaymentRefsMissing),
		errors.Is(err, services.ErrNotBusinessClient):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrMissingEmail),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrMissingBillingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodePaymentFailed, err.Error())
	}
}
