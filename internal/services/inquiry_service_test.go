package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"  User@Example.COM  ":  "user@example.com",
		"already@lower.de":      "already@lower.de",
		"\tMixed.Case@Host.IO ": "mixed.case@host.io",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestBegin_DefaultsAndNormalization(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)

	inq, err := s.Begin(context.Background(), BeginInput{
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		Email:     " Ada@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if inq.ID == "" {
		t.Fatalf("missing id")
	}
	if inq.ClientType != domain.ClientPrivate {
		t.Fatalf("client_type = %s, want private default", inq.ClientType)
	}
	if inq.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", inq.Email)
	}
	if inq.FirstName != "Ada" {
		t.Fatalf("first_name not trimmed: %q", inq.FirstName)
	}
	if inq.Status != domain.StatusDraft || inq.Step != 1 {
		t.Fatalf("fresh inquiry: status=%s step=%d", inq.Status, inq.Step)
	}
}

func TestBegin_RejectsUnknownClientType(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)

	if _, err := s.Begin(context.Background(), BeginInput{ClientType: "ngo"}); !errors.Is(err, ErrInvalidClientType) {
		t.Fatalf("err = %v, want ErrInvalidClientType", err)
	}
}

func TestAddContext_MergesAndAdvancesStep(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})

	got, err := s.AddContext(ctx, inq.ID, ContextInput{
		Address:          " Hauptstr. 5, München ",
		SelectedServices: []string{"new_build", "renovation"},
		Budget:           "250k-500k",
		Timeline:         domain.TimelineSixMonths,
		Surface:          "180",
		Documents:        []string{"https://assets.example/plot.pdf"},
	})
	if err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if got.Step != 2 {
		t.Fatalf("step = %d, want 2", got.Step)
	}
	if got.Address != "Hauptstr. 5, München" {
		t.Fatalf("address not trimmed: %q", got.Address)
	}
	if len(got.SelectedServices) != 2 {
		t.Fatalf("services = %v", got.SelectedServices)
	}

	// Resuming step 2 merges documents instead of replacing them.
	got, err = s.AddContext(ctx, inq.ID, ContextInput{
		Documents: []string{"https://assets.example/photos.zip", "https://assets.example/plot.pdf"},
	})
	if err != nil {
		t.Fatalf("AddContext repeat: %v", err)
	}
	if len(got.Documents) != 2 {
		t.Fatalf("documents = %v, want merged unique set", got.Documents)
	}
}

func TestAddContext_RejectsBadTimeline(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{})
	if _, err := s.AddContext(ctx, inq.ID, ContextInput{Timeline: "2w"}); !errors.Is(err, ErrInvalidTimeline) {
		t.Fatalf("err = %v, want ErrInvalidTimeline", err)
	}
}

func TestChoosePath_ValidatesAndLocks(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})

	if _, err := s.ChoosePath(ctx, inq.ID, "vip"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}

	got, err := s.ChoosePath(ctx, inq.ID, domain.PathGeneral)
	if err != nil {
		t.Fatalf("ChoosePath: %v", err)
	}
	if got.SelectedPath != domain.PathGeneral || got.Step != 3 {
		t.Fatalf("path=%s step=%d", got.SelectedPath, got.Step)
	}

	// Re-choosing before submission is allowed (client changed their mind).
	if _, err := s.ChoosePath(ctx, inq.ID, domain.PathConsult); err != nil {
		t.Fatalf("re-choose before submit: %v", err)
	}

	// After payment has begun the path is locked.
	if err := repo.UpdateInquiryFields(ctx, db, inq.ID, map[string]any{"checkout_session_id": "cs_1"}); err != nil {
		t.Fatalf("seed session ref: %v", err)
	}
	if _, err := s.ChoosePath(ctx, inq.ID, domain.PathGeneral); !errors.Is(err, ErrPathLocked) {
		t.Fatalf("err = %v, want ErrPathLocked", err)
	}
}

func TestChoosePath_LockedAfterSubmit(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	if _, err := s.ChoosePath(ctx, inq.ID, domain.PathGeneral); err != nil {
		t.Fatalf("ChoosePath: %v", err)
	}
	if _, err := s.SubmitGeneral(ctx, inq.ID); err != nil {
		t.Fatalf("SubmitGeneral: %v", err)
	}
	if _, err := s.ChoosePath(ctx, inq.ID, domain.PathConsult); !errors.Is(err, ErrPathLocked) {
		t.Fatalf("err = %v, want ErrPathLocked", err)
	}
}

func TestSubmitGeneral_FullFlow(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, inq.ID, domain.PathGeneral)

	got, err := s.SubmitGeneral(ctx, inq.ID)
	if err != nil {
		t.Fatalf("SubmitGeneral: %v", err)
	}
	if got.Status != domain.StatusSubmitted || got.SubmittedAt == nil || got.Step != 4 {
		t.Fatalf("after submit: status=%s submitted_at=%v step=%d", got.Status, got.SubmittedAt, got.Step)
	}

	// Double submit is rejected.
	if _, err := s.SubmitGeneral(ctx, inq.ID); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitGeneral_WrongPath(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, inq.ID, domain.PathConsult)

	if _, err := s.SubmitGeneral(ctx, inq.ID); !errors.Is(err, ErrWrongPath) {
		t.Fatalf("err = %v, want ErrWrongPath", err)
	}
}

func TestSetConsultation_RecordsBookingWithoutStatusChange(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, inq.ID, domain.PathConsult)

	at := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	got, err := s.SetConsultation(ctx, inq.ID, ConsultationInput{
		Duration:      domain.Duration90,
		RoadmapReport: true,
		Format:        "video",
		ScheduledAt:   &at,
	})
	if err != nil {
		t.Fatalf("SetConsultation: %v", err)
	}
	if got.Consultation.Duration != domain.Duration90 || !got.Consultation.RoadmapReport {
		t.Fatalf("booking: %+v", got.Consultation)
	}
	if got.Consultation.Format != "video" || got.Consultation.ScheduledAt == nil {
		t.Fatalf("booking details: %+v", got.Consultation)
	}
	// Booking details alone do not move the lifecycle; payment does.
	if got.Status != domain.StatusDraft {
		t.Fatalf("status = %s, want draft", got.Status)
	}
	if got.Step != 4 {
		t.Fatalf("step = %d, want 4", got.Step)
	}
}

func TestSetConsultation_Validation(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	general, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, general.ID, domain.PathGeneral)
	if _, err := s.SetConsultation(ctx, general.ID, ConsultationInput{Duration: domain.Duration30}); !errors.Is(err, ErrWrongPath) {
		t.Fatalf("err = %v, want ErrWrongPath", err)
	}

	consult, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, consult.ID, domain.PathConsult)
	if _, err := s.SetConsultation(ctx, consult.ID, ConsultationInput{Duration: "15"}); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", err)
	}
}

func TestStepMarker_Monotonic(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, inq.ID, domain.PathConsult)

	// Going back to step 2 must not lower the marker.
	got, err := s.AddContext(ctx, inq.ID, ContextInput{Budget: "100k"})
	if err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if got.Step != 3 {
		t.Fatalf("step regressed to %d", got.Step)
	}
}

func TestReview_And_SetStatus(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
	_, _ = s.ChoosePath(ctx, inq.ID, domain.PathGeneral)
	_, _ = s.SubmitGeneral(ctx, inq.ID)

	got, err := s.Review(ctx, inq.ID, "admin@atelier.example")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.Status != domain.StatusReviewed || got.ReviewedBy != "admin@atelier.example" || got.ReviewedAt == nil {
		t.Fatalf("after review: %+v", got)
	}

	// Completed is terminal.
	if _, err := s.SetStatus(ctx, inq.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("SetStatus completed: %v", err)
	}
	if _, err := s.SetStatus(ctx, inq.ID, domain.StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition from terminal state", err)
	}
}

func TestBulkStatus_SkipsIllegalTransitions(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	a, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})

	// b ends up completed, which is terminal: cancelling it must be skipped.
	b, _ := s.Begin(ctx, BeginInput{Email: "b@b.com"})
	_, _ = s.ChoosePath(ctx, b.ID, domain.PathGeneral)
	_, _ = s.SubmitGeneral(ctx, b.ID)
	_, _ = s.SetStatus(ctx, b.ID, domain.StatusCompleted)

	updated, err := s.BulkStatus(ctx, []string{a.ID, b.ID, "missing"}, domain.StatusCancelled)
	if err != nil {
		t.Fatalf("BulkStatus: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1 (terminal and missing are skipped)", updated)
	}
}

func TestAddNote(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})

	if _, err := s.AddNote(ctx, inq.ID, "   ", "admin"); !errors.Is(err, ErrEmptyNote) {
		t.Fatalf("err = %v, want ErrEmptyNote", err)
	}

	note, err := s.AddNote(ctx, inq.ID, "called back, voicemail", "admin@atelier.example")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if note.ID == "" || note.InquiryID != inq.ID {
		t.Fatalf("note: %+v", note)
	}

	got, _ := s.Get(ctx, inq.ID)
	if len(got.Notes) != 1 {
		t.Fatalf("notes not preloaded: %+v", got.Notes)
	}
}

func TestAdminList_FilterAndPaging(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		inq, _ := s.Begin(ctx, BeginInput{Email: "a@b.com"})
		_, _ = s.ChoosePath(ctx, inq.ID, domain.PathGeneral)
		_, _ = s.SubmitGeneral(ctx, inq.ID)
	}
	draft, _ := s.Begin(ctx, BeginInput{Email: "d@b.com"})
	_ = draft

	items, total, err := s.AdminList(ctx, repo.InquiryFilter{Status: domain.StatusSubmitted}, 1, 2)
	if err != nil {
		t.Fatalf("AdminList: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(items) != 2 {
		t.Fatalf("page size = %d, want 2", len(items))
	}

	// Empty page short-circuits without a second query.
	items, total, err = s.AdminList(ctx, repo.InquiryFilter{Status: domain.StatusPaid}, 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty filter: items=%d total=%d err=%v", len(items), total, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	s := NewInquiryService(db)

	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrInquiryNotFound) {
		t.Fatalf("err = %v, want ErrInquiryNotFound", err)
	}
}
