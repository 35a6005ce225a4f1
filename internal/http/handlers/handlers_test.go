package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

// stubInquirySvc is a scriptable InquiryService: every method returns the
// configured result and records what it was called with.
type stubInquirySvc struct {
	err     error
	inq     *domain.Inquiry
	note    *domain.InquiryNote
	items   []domain.Inquiry
	total   int64
	updated int

	lastBegin   services.BeginInput
	lastContext services.ContextInput
	lastConsult services.ConsultationInput
	lastPath    domain.Path
	lastStatus  domain.Status
	lastFilter  repo.InquiryFilter
	lastIDs     []string
	lastNote    string
}

func (s *stubInquirySvc) Begin(_ context.Context, in services.BeginInput) (*domain.Inquiry, error) {
	s.lastBegin = in
	return s.inq, s.err
}

func (s *stubInquirySvc) AddContext(_ context.Context, _ string, in services.ContextInput) (*domain.Inquiry, error) {
	s.lastContext = in
	return s.inq, s.err
}

func (s *stubInquirySvc) ChoosePath(_ context.Context, _ string, path domain.Path) (*domain.Inquiry, error) {
	s.lastPath = path
	return s.inq, s.err
}

func (s *stubInquirySvc) SubmitGeneral(context.Context, string) (*domain.Inquiry, error) {
	return s.inq, s.err
}

func (s *stubInquirySvc) SetConsultation(_ context.Context, _ string, in services.ConsultationInput) (*domain.Inquiry, error) {
	s.lastConsult = in
	return s.inq, s.err
}

func (s *stubInquirySvc) Get(context.Context, string) (*domain.Inquiry, error) {
	return s.inq, s.err
}

func (s *stubInquirySvc) AdminList(_ context.Context, f repo.InquiryFilter, _, _ int) ([]domain.Inquiry, int64, error) {
	s.lastFilter = f
	return s.items, s.total, s.err
}

func (s *stubInquirySvc) Export(_ context.Context, f repo.InquiryFilter) ([]domain.Inquiry, error) {
	s.lastFilter = f
	return s.items, s.err
}

func (s *stubInquirySvc) Review(context.Context, string, string) (*domain.Inquiry, error) {
	return s.inq, s.err
}

func (s *stubInquirySvc) SetStatus(_ context.Context, _ string, status domain.Status) (*domain.Inquiry, error) {
	s.lastStatus = status
	return s.inq, s.err
}

func (s *stubInquirySvc) BulkStatus(_ context.Context, ids []string, status domain.Status) (int, error) {
	s.lastIDs = ids
	s.lastStatus = status
	return s.updated, s.err
}

func (s *stubInquirySvc) AddNote(_ context.Context, _ string, text, _ string) (*domain.InquiryNote, error) {
	s.lastNote = text
	return s.note, s.err
}

// stubPaymentSvc is a scriptable PaymentService.
type stubPaymentSvc struct {
	err  error
	inq  *domain.Inquiry
	sess *payments.CheckoutSession

	lastDuration domain.ConsultationDuration
	lastRoadmap  bool
	lastBilling  services.BillingInput
	lastPayload  []byte
	lastSig      string
}

func (s *stubPaymentSvc) CreateCheckout(_ context.Context, _ string, d domain.ConsultationDuration, roadmap bool) (*domain.Inquiry, *payments.CheckoutSession, error) {
	s.lastDuration = d
	s.lastRoadmap = roadmap
	return s.inq, s.sess, s.err
}

func (s *stubPaymentSvc) HandleWebhook(_ context.Context, payload []byte, sig string) error {
	s.lastPayload = payload
	s.lastSig = sig
	return s.err
}

func (s *stubPaymentSvc) VerifySession(context.Context, string) (*domain.Inquiry, error) {
	return s.inq, s.err
}

func (s *stubPaymentSvc) SessionStatus(context.Context, string) (*payments.CheckoutSession, error) {
	return s.sess, s.err
}

func (s *stubPaymentSvc) FinalizeBusinessBilling(_ context.Context, _ string, in services.BillingInput) (*domain.Inquiry, error) {
	s.lastBilling = in
	return s.inq, s.err
}

type stubUploader struct {
	url   string
	err   error
	calls []string
}

func (u *stubUploader) Upload(_ context.Context, _ []byte, filename, _, _ string) (string, error) {
	u.calls = append(u.calls, filename)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// newRig mounts the inquiry, payment and admin-inquiry handlers on a bare
// engine, without the middleware pipeline the full router adds.
func newRig(inq InquiryService, pay PaymentService, up Uploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(inq, pay, up, nil, nil, nil, nil, nil, nil)
	r := gin.New()

	r.POST("/inquiries", h.BeginInquiry)
	r.PUT("/inquiries/:id/context", h.AddInquiryContext)
	r.PUT("/inquiries/:id/path", h.ChooseInquiryPath)
	r.POST("/inquiries/:id/submit", h.SubmitInquiry)
	r.PUT("/inquiries/:id/consultation", h.SetInquiryConsultation)
	r.GET("/inquiries/:id", h.GetInquiry)

	r.POST("/inquiries/:id/checkout", h.CreateCheckout)
	r.POST("/inquiries/:id/billing", h.FinalizeBilling)
	r.POST("/payments/webhook", h.Webhook)
	r.GET("/payments/session/:id", h.SessionStatus)
	r.POST("/payments/session/:id/verify", h.VerifySession)

	r.GET("/admin/inquiries", h.AdminListInquiries)
	r.GET("/admin/inquiries/export", h.ExportInquiries)
	r.PUT("/admin/inquiries/status", h.BulkInquiryStatus)
	r.PUT("/admin/inquiries/:id/status", h.SetInquiryStatus)
	r.POST("/admin/inquiries/:id/notes", h.AddInquiryNote)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
