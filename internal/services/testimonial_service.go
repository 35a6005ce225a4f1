package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/assets"
	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/utils"
)

// TestimonialService manages client quotes and their moderation queue.
// Public submissions land pending; only approved quotes (and legacy rows
// without a status) appear on the public surface.
type TestimonialService struct {
	DB      *gorm.DB
	Cleanup *assets.Cleanup
}

// TestimonialInput carries the writable testimonial fields.
type TestimonialInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Company     string
	Quote       string
	Rating      int
	Photo       string
}

// Submit creates a pending testimonial from a public visitor. Duplicate
// email or phone number returns ErrDuplicateTestimonial.
func (s *TestimonialService) Submit(ctx context.Context, in TestimonialInput) (*domain.Testimonial, error) {
	ctx, span := contentSpan(ctx, "TestimonialService", "Submit", "")
	defer span.End()

	email := NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, ErrMissingEmail
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Quote) == "" {
		return nil, ErrMissingQuote
	}
	t := &domain.Testimonial{
		Name:    strings.TrimSpace(in.Name),
		Email:   email,
		Company: strings.TrimSpace(in.Company),
		Quote:   strings.TrimSpace(in.Quote),
		Rating:  clampRating(in.Rating),
		Photo:   in.Photo,
		Status:  domain.TestimonialPending,
	}
	if p := strings.TrimSpace(in.PhoneNumber); p != "" {
		t.PhoneNumber = &p
	}
	out, err := repo.CreateTestimonial(ctx, s.DB, t)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateTestimonial
	}
	return out, err
}

// Moderate sets the moderation status of a testimonial.
func (s *TestimonialService) Moderate(ctx context.Context, id string, status domain.TestimonialStatus) (*domain.Testimonial, error) {
	ctx, span := contentSpan(ctx, "TestimonialService", "Moderate", id)
	defer span.End()

	switch status {
	case domain.TestimonialPending, domain.TestimonialApproved, domain.TestimonialRejected:
	default:
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateTestimonialFields(ctx, s.DB, id, map[string]any{"status": status}); err != nil {
		return nil, mapContentErr(err)
	}
	out, err := repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// Update applies an admin edit to the quote content.
func (s *TestimonialService) Update(ctx context.Context, id string, in TestimonialInput) (*domain.Testimonial, error) {
	ctx, span := contentSpan(ctx, "TestimonialService", "Update", id)
	defer span.End()

	cur, err := repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}

	fields := map[string]any{}
	if v := strings.TrimSpace(in.Name); v != "" {
		fields["name"] = v
	}
	if v := NormalizeEmail(in.Email); v != "" && validEmail(v) {
		fields["email"] = v
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		fields["phone_number"] = v
	}
	if v := strings.TrimSpace(in.Company); v != "" {
		fields["company"] = v
	}
	if v := strings.TrimSpace(in.Quote); v != "" {
		fields["quote"] = v
	}
	if in.Rating != 0 {
		fields["rating"] = clampRating(in.Rating)
	}
	if in.Photo != "" {
		if cur.Photo != "" && cur.Photo != in.Photo {
			s.Cleanup.Enqueue(cur.Photo)
		}
		fields["photo"] = in.Photo
	}

	if len(fields) > 0 {
		if err := repo.UpdateTestimonialFields(ctx, s.DB, id, fields); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return nil, ErrDuplicateTestimonial
			}
			return nil, mapContentErr(err)
		}
	}
	out, err := repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// Delete removes a testimonial and cleans up its photo.
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	ctx, span := contentSpan(ctx, "TestimonialService", "Delete", id)
	defer span.End()

	cur, err := repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return mapContentErr(err)
	}
	if err := repo.DeleteTestimonial(ctx, s.DB, id); err != nil {
		return mapContentErr(err)
	}
	s.Cleanup.Enqueue(cur.Photo)
	return nil
}

// Get returns a testimonial by ID.
func (s *TestimonialService) Get(ctx context.Context, id string) (*domain.Testimonial, error) {
	out, err := repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// ListPublic returns the publicly visible testimonials.
func (s *TestimonialService) ListPublic(ctx context.Context, page, pageSize int) ([]domain.Testimonial, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, 100)
	return repo.ListApprovedTestimonials(ctx, s.DB, (page-1)*pageSize, pageSize)
}

// ListAdmin returns all testimonials, optionally filtered by moderation
// status.
func (s *TestimonialService) ListAdmin(ctx context.Context, status domain.TestimonialStatus, page, pageSize int) ([]domain.Testimonial, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, 100)
	return repo.ListTestimonials(ctx, s.DB, status, (page-1)*pageSize, pageSize)
}

func clampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}
