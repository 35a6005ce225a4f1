// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Inquiry
// aggregate.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Concurrency note: inquiry mutations are field-level Updates maps, never
// whole-struct saves. Two requests racing on the same inquiry resolve
// last-write-wins per field at the store, which is the documented model for
// the funnel; the paid-state writers in the service layer are the only place
// where convergence is actively guaranteed.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateInquiry inserts a new Inquiry with a fresh UUID, step 1, draft status.
func CreateInquiry(ctx context.Context, db *gorm.DB, inq *domain.Inquiry) (*domain.Inquiry, error) {
	inq.ID = uuid.NewString()
	inq.Step = 1
	inq.Status = domain.StatusDraft
	inq.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(inq).Error; err != nil {
		return nil, err
	}
	return inq, nil
}

// GetInquiry fetches an inquiry by ID including its admin notes.
// Returns ErrNotFound if missing.
func GetInquiry(ctx context.Context, db *gorm.DB, id string) (*domain.Inquiry, error) {
	var inq domain.Inquiry
	err := db.WithContext(ctx).
		Preload("Notes").
		Where("id = ?", id).
		First(&inq).Error
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

// GetInquiryBySession fetches an inquiry by its external checkout session
// reference. Returns ErrNotFound if no inquiry carries the reference.
func GetInquiryBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Inquiry, error) {
	var inq domain.Inquiry
	err := db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&inq).Error
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

// UpdateInquiryFields applies a field-level update map to the inquiry row.
// Returns ErrNotFound when no row matches.
func UpdateInquiryFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Inquiry{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendInquiryNote inserts an append-only admin note for the inquiry.
func AppendInquiryNote(ctx context.Context, db *gorm.DB, inquiryID, text, author string) (*domain.InquiryNote, error) {
	n := &domain.InquiryNote{
		ID:        uuid.NewString(),
		InquiryID: inquiryID,
		Text:      text,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// InquiryFilter narrows admin inquiry listings. Zero values are ignored.
type InquiryFilter struct {
	Status        domain.Status
	ClientType    domain.ClientType
	Path          domain.Path
	PaymentStatus domain.PaymentStatus
	Service       string // matches a member of selected_services
	From          *time.Time
	To            *time.Time
}

func (f InquiryFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientType != "" {
		q = q.Where("client_type = ?", f.ClientType)
	}
	if f.Path != "" {
		q = q.Where("selected_path = ?", f.Path)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Service != "" {
		// selected_services is a JSON array column; substring match on the
		// quoted member is sufficient for the fixed service vocabulary.
		q = q.Where("selected_services LIKE ?", `%"`+f.Service+`"%`)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

// CountInquiries returns the number of inquiries matching the filter.
func CountInquiries(ctx context.Context, db *gorm.DB, f InquiryFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Inquiry{})).Count(&total).Error
	return total, err
}

// ListInquiriesPage returns a page of inquiries matching the filter, ordered
// by creation time descending.
func ListInquiriesPage(ctx context.Context, db *gorm.DB, f InquiryFilter, offset, limit int) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	err := f.apply(db.WithContext(ctx)).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListInquiriesAll returns every inquiry matching the filter (export path).
func ListInquiriesAll(ctx context.Context, db *gorm.DB, f InquiryFilter) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	err := f.apply(db.WithContext(ctx)).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
