package services

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

func validTestimonial() TestimonialInput {
	return TestimonialInput{
		Name:   "Jamie Client",
		Email:  " Jamie@Example.COM ",
		Quote:  "Great work on our extension.",
		Rating: 5,
	}
}

func TestSubmitTestimonial_PendingAndNormalized(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}

	got, err := s.Submit(context.Background(), validTestimonial())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Status != domain.TestimonialPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	if got.Email != "jamie@example.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}
}

func TestSubmitTestimonial_Validation(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}
	ctx := context.Background()

	in := validTestimonial()
	in.Email = "not-an-email"
	if _, err := s.Submit(ctx, in); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("err = %v, want ErrMissingEmail", err)
	}

	in = validTestimonial()
	in.Quote = "  "
	if _, err := s.Submit(ctx, in); !errors.Is(err, ErrMissingQuote) {
		t.Fatalf("err = %v, want ErrMissingQuote", err)
	}

	in = validTestimonial()
	in.Name = ""
	if _, err := s.Submit(ctx, in); !errors.Is(err, ErrMissingQuote) {
		t.Fatalf("err = %v, want ErrMissingQuote", err)
	}
}

func TestSubmitTestimonial_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}
	ctx := context.Background()

	if _, err := s.Submit(ctx, validTestimonial()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := s.Submit(ctx, validTestimonial()); !errors.Is(err, ErrDuplicateTestimonial) {
		t.Fatalf("err = %v, want ErrDuplicateTestimonial", err)
	}
}

func TestSubmitTestimonial_RatingClamped(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}
	ctx := context.Background()

	in := validTestimonial()
	in.Rating = 11
	got, err := s.Submit(ctx, in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Rating != 5 {
		t.Fatalf("rating = %d, want clamped to 5", got.Rating)
	}

	in = validTestimonial()
	in.Email = "second@example.com"
	in.Rating = -3
	got, err = s.Submit(ctx, in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Rating != 1 {
		t.Fatalf("rating = %d, want clamped to 1", got.Rating)
	}
}

func TestModerateTestimonial(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}
	ctx := context.Background()

	sub, _ := s.Submit(ctx, validTestimonial())

	got, err := s.Moderate(ctx, sub.ID, domain.TestimonialApproved)
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if got.Status != domain.TestimonialApproved {
		t.Fatalf("status = %s", got.Status)
	}

	if _, err := s.Moderate(ctx, sub.ID, "featured"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.Moderate(ctx, "missing", domain.TestimonialApproved); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("err = %v, want ErrContentNotFound", err)
	}
}

func TestListPublic_ApprovedOnly(t *testing.T) {
	db := newTestDB(t)
	s := &TestimonialService{DB: db}
	ctx := context.Background()

	a, _ := s.Submit(ctx, validTestimonial())
	in := validTestimonial()
	in.Email = "other@example.com"
	b, _ := s.Submit(ctx, in)
	_ = b

	_, _ = s.Moderate(ctx, a.ID, domain.TestimonialApproved)

	items, total, err := s.ListPublic(ctx, 1, 20)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != a.ID {
		t.Fatalf("public list: total=%d items=%v", total, items)
	}

	// Admin sees the whole queue, filterable by status.
	_, total, err = s.ListAdmin(ctx, "", 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("admin all: total=%d err=%v", total, err)
	}
	_, total, err = s.ListAdmin(ctx, domain.TestimonialPending, 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("admin pending: total=%d err=%v", total, err)
	}
}

func TestUpdateTestimonial_PhotoReplacementCleansOld(t *testing.T) {
	db := newTestDB(t)
	cleanup, d := newCleanupForTest()
	s := &TestimonialService{DB: db, Cleanup: cleanup}
	ctx := context.Background()

	in := validTestimonial()
	in.Photo = "https://a.example/face-old.jpg"
	sub, _ := s.Submit(ctx, in)

	got, err := s.Update(ctx, sub.ID, TestimonialInput{Photo: "https://a.example/face-new.jpg"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Photo != "https://a.example/face-new.jpg" {
		t.Fatalf("photo = %q", got.Photo)
	}
	cleanup.Wait()
	if len(d.destroyed()) != 1 || d.destroyed()[0] != "https://a.example/face-old.jpg" {
		t.Fatalf("destroyed = %v", d.destroyed())
	}
}

func TestDeleteTestimonial(t *testing.T) {
	db := newTestDB(t)
	cleanup, d := newCleanupForTest()
	s := &TestimonialService{DB: db, Cleanup: cleanup}
	ctx := context.Background()

	in := validTestimonial()
	in.Photo = "https://a.example/face.jpg"
	sub, _ := s.Submit(ctx, in)

	if err := s.Delete(ctx, sub.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cleanup.Wait()
	if len(d.destroyed()) != 1 {
		t.Fatalf("destroyed = %v", d.destroyed())
	}
	if _, err := s.Get(ctx, sub.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("still readable after delete: %v", err)
	}
}
