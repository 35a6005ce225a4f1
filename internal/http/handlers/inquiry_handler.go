// Inquiry funnel HTTP handlers.
//
// This file exposes the public four-step inquiry endpoints:
//   - POST   /inquiries                    (step 1: begin)
//   - PUT    /inquiries/{id}/context       (step 2: project context + documents)
//   - PUT    /inquiries/{id}/path          (step 3: choose branch)
//   - POST   /inquiries/{id}/submit        (step 4, general path)
//   - PUT    /inquiries/{id}/consultation  (step 4, consult path)
//   - GET    /inquiries/{id}               (read back)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// InquiryService defines the funnel and admin operations consumed by HTTP
// handlers. Implementations should be safe for concurrent use and must honor
// the provided context for cancellation and timeouts.
type InquiryService interface {
	Begin(ctx context.Context, in services.BeginInput) (*domain.Inquiry, error)
	AddContext(ctx context.Context, id string, in services.ContextInput) (*domain.Inquiry, error)
	ChoosePath(ctx context.Context, id string, path domain.Path) (*domain.Inquiry, error)
	SubmitGeneral(ctx context.Context, id string) (*domain.Inquiry, error)
	SetConsultation(ctx context.Context, id string, in services.ConsultationInput) (*domain.Inquiry, error)
	Get(ctx context.Context, id string) (*domain.Inquiry, error)
	AdminList(ctx context.Context, f repo.InquiryFilter, page, pageSize int) ([]domain.Inquiry, int64, error)
	Export(ctx context.Context, f repo.InquiryFilter) ([]domain.Inquiry, error)
	Review(ctx context.Context, id, reviewer string) (*domain.Inquiry, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Inquiry, error)
	BulkStatus(ctx context.Context, ids []string, status domain.Status) (int, error)
	AddNote(ctx context.Context, id, text, author string) (*domain.InquiryNote, error)
}

// PaymentService defines checkout and reconciliation operations consumed by
// HTTP handlers.
type PaymentService interface {
	CreateCheckout(ctx context.Context, inquiryID string, duration domain.ConsultationDuration, roadmapReport bool) (*domain.Inquiry, *payments.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	VerifySession(ctx context.Context, sessionID string) (*domain.Inquiry, error)
	SessionStatus(ctx context.Context, sessionID string) (*payments.CheckoutSession, error)
	FinalizeBusinessBilling(ctx context.Context, inquiryID string, in services.BillingInput) (*domain.Inquiry, error)
}

// Uploader stores an uploaded file with the remote asset host and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, folder, resourceType string) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for inquiries, payments, content
// entities, and admin sessions. It depends on abstract service interfaces for
// the funnel and payments (the pieces tests replace) and on concrete content
// services, which are thin wrappers over the database.
type Handlers struct {
	inqSvc  InquiryService
	paySvc  PaymentService
	upload  Uploader
	projSvc *services.ProjectService
	blogSvc *services.BlogService
	newsSvc *services.NewsService
	testSvc *services.TestimonialService
	authSvc *services.AuthService
	dashSvc *services.DashboardService
}

// New constructs a Handlers instance bound to the given services.
func New(
	inqSvc InquiryService,
	paySvc PaymentService,
	upload Uploader,
	projSvc *services.ProjectService,
	blogSvc *services.BlogService,
	newsSvc *services.NewsService,
	testSvc *services.TestimonialService,
	authSvc *services.AuthService,
	dashSvc *services.DashboardService,
) *Handlers {
	return &Handlers{
		inqSvc:  inqSvc,
		paySvc:  paySvc,
		upload:  upload,
		projSvc: projSvc,
		blogSvc: blogSvc,
		newsSvc: newsSvc,
		testSvc: testSvc,
		authSvc: authSvc,
		dashSvc: dashSvc,
	}
}

//
// DTOs
//

// BeginInquiryRequest is the JSON payload starting an inquiry (step 1).
type BeginInquiryRequest struct {
	ClientType string `json:"client_type" example:"private"`
	FirstName  string `json:"first_name"  binding:"required" example:"Maren"`
	LastName   string `json:"last_name"   binding:"required" example:"Holst"`
	Email      string `json:"email"       binding:"required" example:"maren@example.com"`
	Phone      string `json:"phone"       example:"+49 30 1234567"`
}

// ChoosePathRequest is the JSON payload selecting the funnel branch (step 3).
type ChoosePathRequest struct {
	Path string `json:"path" binding:"required" example:"consult"`
}

// ConsultationRequest is the JSON payload for consult-path booking details
// (step 4).
type ConsultationRequest struct {
	Duration      string     `json:"duration" binding:"required" example:"60"`
	RoadmapReport bool       `json:"roadmap_report"`
	Format        string     `json:"format" example:"video"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
}

//
// Handlers
//

// BeginInquiry godoc
// @ID          beginInquiry
// @Summary     Start an inquiry
// @Description Creates a draft inquiry from the step-1 identity fields.
// @Tags        Inquiries
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.BeginInquiryRequest  true  "Identity payload"
// @Success     201  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /inquiries [post]
func (h *Handlers) BeginInquiry(c *gin.Context) {
	var req BeginInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "first_name, last_name and email are required")
		return
	}
	inq, err := h.inqSvc.Begin(c.Request.Context(), services.BeginInput{
		ClientType: domain.ClientType(req.ClientType),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      req.Email,
		Phone:      strings.TrimSpace(req.Phone),
	})
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusCreated, inq)
}

// AddInquiryContext godoc
// @ID          addInquiryContext
// @Summary     Add project context (step 2)
// @Description Merges project context onto the inquiry. Accepts multipart form
// @Description data so documents can be uploaded inline; uploaded files are
// @Description stored with the asset host and their URLs appended.
// @Tags        Inquiries
// @Accept      mpfd
// @Produce     json
// @Param       id  path  string  true  "Inquiry ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/context [put]
func (h *Handlers) AddInquiryContext(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "inquiry id must be a UUID")
		return
	}

	in := services.ContextInput{
		Address:          c.PostForm("address"),
		SelectedServices: c.PostFormArray("services"),
		Budget:           c.PostForm("budget"),
		Timeline:         domain.Timeline(c.PostForm("timeline")),
		Surface:          c.PostForm("surface"),
		Description:      c.PostForm("description"),
	}

	// Inline document uploads, if any. Each file is stored remotely and its
	// URL appended to the documents list.
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["documents"] {
			f, err := fh.Open()
			if err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload: "+fh.Filename)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload: "+fh.Filename)
				return
			}
			url, err := h.upload.Upload(c.Request.Context(), data, fh.Filename, "inquiries/"+id, "raw")
			if err != nil {
				fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
				return
			}
			in.Documents = append(in.Documents, url)
		}
	}
	// Pre-uploaded document URLs may also be passed directly.
	in.Documents = append(in.Documents, c.PostFormArray("document_urls")...)

	inq, err := h.inqSvc.AddContext(c.Request.Context(), id, in)
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// ChooseInquiryPath godoc
// @ID          chooseInquiryPath
// @Summary     Choose the funnel branch (step 3)
// @Description Selects general or consult. The choice locks once the inquiry
// @Description is submitted or checkout has begun.
// @Tags        Inquiries
// @Accept      json
// @Produce     json
// @Param       id    path  string                        true  "Inquiry ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ChoosePathRequest  true  "Branch selection"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/path [put]
func (h *Handlers) ChooseInquiryPath(c *gin.Context) {
	id := c.Param("id")
	var req ChoosePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "path is required")
		return
	}
	inq, err := h.inqSvc.ChoosePath(c.Request.Context(), id, domain.Path(req.Path))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// SubmitInquiry godoc
// @ID          submitInquiry
// @Summary     Submit a general-path inquiry (step 4)
// @Tags        Inquiries
// @Produce     json
// @Param       id  path  string  true  "Inquiry ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/submit [post]
func (h *Handlers) SubmitInquiry(c *gin.Context) {
	inq, err := h.inqSvc.SubmitGeneral(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// SetInquiryConsultation godoc
// @ID          setInquiryConsultation
// @Summary     Set consult-path booking details (step 4)
// @Tags        Inquiries
// @Accept      json
// @Produce     json
// @Param       id    path  string                         true  "Inquiry ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ConsultationRequest  true  "Booking details"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id}/consultation [put]
func (h *Handlers) SetInquiryConsultation(c *gin.Context) {
	var req ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "duration is required")
		return
	}
	inq, err := h.inqSvc.SetConsultation(c.Request.Context(), c.Param("id"), services.ConsultationInput{
		Duration:      domain.ConsultationDuration(req.Duration),
		RoadmapReport: req.RoadmapReport,
		Format:        req.Format,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// GetInquiry godoc
// @ID          getInquiry
// @Summary     Fetch an inquiry
// @Tags        Inquiries
// @Produce     json
// @Param       id  path  string  true  "Inquiry ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /inquiries/{id} [get]
func (h *Handlers) GetInquiry(c *gin.Context) {
	inq, err := h.inqSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// failInquiry translates service-level inquiry errors to HTTP responses.
func (h *Handlers) failInquiry(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInquiryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrPathLocked):
		fail(c, http.StatusConflict, ErrCodePathLocked, err.Error())
	case errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrWrongPath):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidPath),
		errors.Is(err, services.ErrInvalidTimeline),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidClientType),
		errors.Is(err, services.ErrMissingEmail),
		errors.Is(err, services.ErrEmptyNote):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
