// Package services – InquiryService
//
// This file implements the four-step inquiry funnel. Each step is an
// idempotent merge-update keyed by inquiry ID: clients never resubmit prior
// data, steps may be repeated, and step ordering is deliberately lenient (a
// client may reach submit without completing step 2). The only hard gates are
// path exclusivity — an inquiry that chose "general" can never acquire
// consultation or payment fields, and vice versa — and the central status
// transition table.
//
// Observability: funnel operations are OpenTelemetry-instrumented; spans
// carry the inquiry ID and step.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
)

// InquiryService coordinates the funnel lifecycle and the admin view over
// inquiries.
type InquiryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewInquiryService constructs an InquiryService.
func NewInquiryService(db *gorm.DB) *InquiryService {
	return &InquiryService{DB: db}
}

// BeginInput carries the optional identity fields of funnel step 1.
type BeginInput struct {
	ClientType domain.ClientType
	FirstName  string
	LastName   string
	Email      string
	Phone      string
}

// ContextInput carries the project context of funnel step 2. Document URLs
// are the result of uploads that completed before this call. Nil slices leave
// the stored value untouched; empty slices clear it.
type ContextInput struct {
	Address          string
	SelectedServices []string
	Budget           string
	Timeline         domain.Timeline
	Surface          string
	Description      string
	Documents        []string
}

// ConsultationInput carries the consult-path booking details of step 4b.
type ConsultationInput struct {
	Duration      domain.ConsultationDuration
	RoadmapReport bool
	Format        string
	ScheduledAt   *time.Time
}

// NormalizeEmail lowercases and trims an email address. Applied before every
// persistence or external-service use of the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail reports whether the address is deliverable enough to hand to
// the payment provider for receipts.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Begin creates a new inquiry at step 1 with status draft. All identity
// fields are optional; the email is normalized when present. Unlike
// testimonials there is no uniqueness constraint on the email here.
func (s *InquiryService) Begin(ctx context.Context, in BeginInput) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "Begin", "")
	defer span.End()

	ct := in.ClientType
	switch ct {
	case domain.ClientPrivate, domain.ClientBusiness:
	case "":
		ct = domain.ClientPrivate
	default:
		return nil, ErrInvalidClientType
	}

	inq := &domain.Inquiry{
		ClientType:    ct,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         NormalizeEmail(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		PaymentStatus: domain.PaymentPending,
		InvoiceStatus: domain.InvoicePending,
	}
	return repo.CreateInquiry(ctx, s.DB, inq)
}

// AddContext merges the step-2 project context onto the inquiry and advances
// the step marker. Repeating the call overwrites previously merged fields.
func (s *InquiryService) AddContext(ctx context.Context, id string, in ContextInput) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "AddContext", id)
	defer span.End()

	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Timeline != "" && !domain.ValidTimeline(in.Timeline) {
		return nil, ErrInvalidTimeline
	}

	fields := map[string]any{
		"address":     strings.TrimSpace(in.Address),
		"budget":      strings.TrimSpace(in.Budget),
		"surface":     strings.TrimSpace(in.Surface),
		"description": strings.TrimSpace(in.Description),
		"step":        maxStep(inq.Step, 2),
	}
	if in.Timeline != "" {
		fields["timeline"] = in.Timeline
	}
	if in.SelectedServices != nil {
		fields["selected_services"] = domain.StringList(in.SelectedServices)
	}
	if in.Documents != nil {
		// Uploads are merged, not replaced: resuming step 2 keeps earlier documents.
		fields["documents"] = domain.StringList(mergeURLs(inq.Documents, in.Documents))
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// ChoosePath records the funnel branch at step 3. The path is immutable once
// submission or payment has begun.
func (s *InquiryService) ChoosePath(ctx context.Context, id string, path domain.Path) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "ChoosePath", id)
	defer span.End()

	if path != domain.PathGeneral && path != domain.PathConsult {
		return nil, ErrInvalidPath
	}
	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.SubmittedAt != nil || inq.CheckoutSessionID != "" {
		return nil, ErrPathLocked
	}
	fields := map[string]any{
		"selected_path": path,
		"step":          maxStep(inq.Step, 3),
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// SubmitGeneral terminates the general path: status becomes submitted and the
// submission is timestamped. Valid only when the general path was chosen and
// the inquiry has not already been submitted.
func (s *InquiryService) SubmitGeneral(ctx context.Context, id string) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "SubmitGeneral", id)
	defer span.End()

	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.SelectedPath != domain.PathGeneral {
		return nil, ErrWrongPath
	}
	if inq.SubmittedAt != nil {
		return nil, ErrAlreadySubmitted
	}
	if !inq.Status.CanTransitionTo(domain.StatusSubmitted) {
		return nil, ErrInvalidTransition
	}
	now := time.Now().UTC()
	fields := map[string]any{
		"status":       domain.StatusSubmitted,
		"submitted_at": now,
		"step":         maxStep(inq.Step, 4),
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// SetConsultation records the consult-path booking details (step 4b). It does
// not change the lifecycle status — payment initiation is a separate
// operation on PaymentService. Billing information is collected strictly
// after payment, never here.
func (s *InquiryService) SetConsultation(ctx context.Context, id string, in ConsultationInput) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "SetConsultation", id)
	defer span.End()

	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.SelectedPath != domain.PathConsult {
		return nil, ErrWrongPath
	}
	if !domain.ValidDuration(in.Duration) {
		return nil, ErrInvalidDuration
	}
	fields := map[string]any{
		"consult_duration":       in.Duration,
		"consult_roadmap_report": in.RoadmapReport,
		"consult_format":         strings.TrimSpace(in.Format),
		"step":                   maxStep(inq.Step, 4),
	}
	if in.ScheduledAt != nil {
		fields["consult_scheduled_at"] = *in.ScheduledAt
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// Get fetches an inquiry by ID; clients use it to resume any step.
func (s *InquiryService) Get(ctx context.Context, id string) (*domain.Inquiry, error) {
	return s.get(ctx, id)
}

// AdminList returns a filtered page of inquiries plus the total count.
func (s *InquiryService) AdminList(ctx context.Context, f repo.InquiryFilter, page, pageSize int) ([]domain.Inquiry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountInquiries(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Inquiry{}, 0, nil
	}
	items, err := repo.ListInquiriesPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// Export returns every inquiry matching the filter, for CSV/XLSX export.
func (s *InquiryService) Export(ctx context.Context, f repo.InquiryFilter) ([]domain.Inquiry, error) {
	return repo.ListInquiriesAll(ctx, s.DB, f)
}

// Review marks a submitted inquiry reviewed and records the reviewer.
func (s *InquiryService) Review(ctx context.Context, id, reviewer string) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "Review", id)
	defer span.End()

	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inq.Status.CanTransitionTo(domain.StatusReviewed) {
		return nil, ErrInvalidTransition
	}
	now := time.Now().UTC()
	fields := map[string]any{
		"status":      domain.StatusReviewed,
		"reviewed_at": now,
		"reviewed_by": reviewer,
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, fields); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// SetStatus applies an admin status change, validated against the lifecycle
// transition table. Cancellation of any non-terminal inquiry goes through
// here.
func (s *InquiryService) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Inquiry, error) {
	ctx, span := s.span(ctx, "SetStatus", id)
	defer span.End()

	inq, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inq.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateInquiryFields(ctx, s.DB, id, map[string]any{"status": status}); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.get(ctx, id)
}

// BulkStatus applies a status change to many inquiries, skipping those whose
// current status forbids the transition. Returns the number updated.
func (s *InquiryService) BulkStatus(ctx context.Context, ids []string, status domain.Status) (int, error) {
	updated := 0
	for _, id := range ids {
		if _, err := s.SetStatus(ctx, id, status); err != nil {
			if errors.Is(err, ErrInquiryNotFound) || errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// AddNote appends an admin note to the inquiry.
func (s *InquiryService) AddNote(ctx context.Context, id, text, author string) (*domain.InquiryNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyNote
	}
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	return repo.AppendInquiryNote(ctx, s.DB, id, text, author)
}

// --- helpers ---

func (s *InquiryService) get(ctx context.Context, id string) (*domain.Inquiry, error) {
	inq, err := repo.GetInquiry(ctx, s.DB, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return inq, nil
}

func (s *InquiryService) mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInquiryNotFound
	}
	return err
}

func (s *InquiryService) span(ctx context.Context, op, inquiryID string) (context.Context, trace.Span) {
	tr := otel.Tracer("services/InquiryService")
	return tr.Start(ctx, op, trace.WithAttributes(attribute.String("inquiry.id", inquiryID)))
}

// maxStep keeps the step marker monotonically non-decreasing.
func maxStep(cur, next int) int {
	if cur > next {
		return cur
	}
	return next
}

// mergeURLs appends the new URLs that are not already present, preserving
// order of first appearance.
func mergeURLs(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, u := range existing {
		if _, ok := seen[u]; !ok && u != "" {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	for _, u := range incoming {
		if _, ok := seen[u]; !ok && u != "" {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
