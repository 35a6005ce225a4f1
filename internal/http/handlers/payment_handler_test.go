package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

func TestCreateCheckout(t *testing.T) {
	pay := &stubPaymentSvc{
		inq:  &domain.Inquiry{ID: "inq-1", Status: domain.StatusPaymentPending},
		sess: &payments.CheckoutSession{ID: "cs_1", URL: "https://pay.example/session"},
	}
	r := newRig(&stubInquirySvc{}, pay, &stubUploader{})

	w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/checkout", `{"duration":"60","roadmap_report":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if pay.lastDuration != domain.Duration60 || !pay.lastRoadmap {
		t.Fatalf("checkout args = %q/%v", pay.lastDuration, pay.lastRoadmap)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"session_id":"cs_1"`) || !strings.Contains(body, "https://pay.example/session") {
		t.Fatalf("body = %s", body)
	}

	if w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/checkout", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing duration status = %d", w.Code)
	}
}

func TestWebhook(t *testing.T) {
	pay := &stubPaymentSvc{}
	r := newRig(&stubInquirySvc{}, pay, &stubUploader{})

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set(WebhookSignatureHeader, "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if string(pay.lastPayload) != `{"id":"evt_1"}` {
		t.Fatalf("payload not passed raw: %q", pay.lastPayload)
	}
	if pay.lastSig != "t=1,v1=abc" {
		t.Fatalf("signature header = %q", pay.lastSig)
	}
}

func TestWebhook_BadSignature(t *testing.T) {
	r := newRig(&stubInquirySvc{}, &stubPaymentSvc{err: payments.ErrBadSignature}, &stubUploader{})

	w := doJSON(t, r, http.MethodPost, "/payments/webhook", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if er := decodeError(t, w.Body.Bytes()); er.Code != ErrCodeBadSignature {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestSessionStatus(t *testing.T) {
	pay := &stubPaymentSvc{sess: &payments.CheckoutSession{ID: "cs_1", PaymentStatus: payments.SessionPaid}}
	r := newRig(&stubInquirySvc{}, pay, &stubUploader{})

	w := doJSON(t, r, http.MethodGet, "/payments/session/cs_1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"cs_1"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestVerifySession_NotFound(t *testing.T) {
	r := newRig(&stubInquirySvc{}, &stubPaymentSvc{err: services.ErrInquiryNotFound}, &stubUploader{})
	w := doJSON(t, r, http.MethodPost, "/payments/session/cs_gone/verify", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFinalizeBilling(t *testing.T) {
	valid := `{"company_name":"Studio GmbH","line1":"Kantstr. 12","city":"Berlin","postal_code":"10623","vat_number":"DE123456789"}`

	t.Run("happy path", func(t *testing.T) {
		pay := &stubPaymentSvc{inq: &domain.Inquiry{ID: "inq-1", InvoiceStatus: domain.InvoiceFinalized}}
		r := newRig(&stubInquirySvc{}, pay, &stubUploader{})
		w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/billing", valid)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if pay.lastBilling.CompanyName != "Studio GmbH" || pay.lastBilling.VATNumber != "DE123456789" {
			t.Fatalf("billing input = %+v", pay.lastBilling)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		r := newRig(&stubInquirySvc{}, &stubPaymentSvc{}, &stubUploader{})
		w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/billing", `{"company_name":"Studio GmbH"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("finalize failure is accepted", func(t *testing.T) {
		r := newRig(&stubInquirySvc{}, &stubPaymentSvc{err: services.ErrInvoiceFinalize}, &stubUploader{})
		w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/billing", valid)
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"success":true`) {
			t.Fatalf("body = %s", w.Body.String())
		}
	})

	t.Run("conflict states", func(t *testing.T) {
		for _, err := range []error{services.ErrNotBusinessClient, services.ErrPaymentNotCompleted} {
			r := newRig(&stubInquirySvc{}, &stubPaymentSvc{err: err}, &stubUploader{})
			w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/billing", valid)
			if w.Code != http.StatusConflict {
				t.Fatalf("%v: status = %d, want 409", err, w.Code)
			}
		}
	})

	t.Run("unexpected provider error", func(t *testing.T) {
		r := newRig(&stubInquirySvc{}, &stubPaymentSvc{err: errors.New("provider down")}, &stubUploader{})
		w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/billing", valid)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", w.Code)
		}
		if er := decodeError(t, w.Body.Bytes()); er.Code != ErrCodePaymentFailed {
			t.Fatalf("code = %q", er.Code)
		}
	})
}
