// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries used by the admin
// dashboard and for conditional responses in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// InquiryStats returns aggregate metadata over all inquiries: the total
// number of rows and the maximum UpdatedAt timestamp. Used for ETag-style
// freshness checks on the admin list endpoint.
func InquiryStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Inquiry{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CountInquiriesByStatus returns the number of inquiries per lifecycle status.
func CountInquiriesByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []struct {
		Status domain.Status
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Inquiry{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// ListPaidInquiries returns every inquiry whose payment completed, for
// dashboard revenue computation.
func ListPaidInquiries(ctx context.Context, db *gorm.DB) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	err := db.WithContext(ctx).
		Where("payment_status = ?", domain.PaymentPaid).
		Order("paid_at desc").
		Find(&out).Error
	return out, err
}
