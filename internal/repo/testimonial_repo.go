// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Testimonial
// content entity.
//
// Error semantics: unique violations (duplicate email or phone number) are
// returned as ErrDuplicate so the service layer can map them to conflicts
// without driver-specific knowledge.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// ErrDuplicate indicates a unique-constraint violation.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation detects unique-constraint failures across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations;
	// postgres says "duplicate key value violates unique constraint".
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// CreateTestimonial inserts a new testimonial row with a fresh UUID.
// Returns ErrDuplicate when the email or phone number is already taken.
func CreateTestimonial(ctx context.Context, db *gorm.DB, t *domain.Testimonial) (*domain.Testimonial, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return t, nil
}

// GetTestimonial fetches a testimonial by ID, or ErrNotFound.
func GetTestimonial(ctx context.Context, db *gorm.DB, id string) (*domain.Testimonial, error) {
	var t domain.Testimonial
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListApprovedTestimonials returns testimonials visible on the public site:
// approved rows plus legacy rows created before moderation existed (empty
// status), which are treated as approved for backward compatibility.
func ListApprovedTestimonials(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Testimonial, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Testimonial{}).
		Where("status = ? OR status = '' OR status IS NULL", domain.TestimonialApproved)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Testimonial
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// ListTestimonials returns all testimonials for the admin view, optionally
// restricted to a moderation status.
func ListTestimonials(ctx context.Context, db *gorm.DB, status domain.TestimonialStatus, offset, limit int) ([]domain.Testimonial, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Testimonial{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Testimonial
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// UpdateTestimonialFields applies a field-level update map to the row.
// Returns ErrDuplicate when the update would violate a unique constraint.
func UpdateTestimonialFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Testimonial{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTestimonial soft-deletes the testimonial row.
func DeleteTestimonial(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Testimonial{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
