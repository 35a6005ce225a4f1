package domain

import "time"

// Idempotency records a previously processed checkout-creation request,
// keyed by (inquiry_id, key). Replaying the same Idempotency-Key returns the
// originally created checkout session instead of opening a second one with
// the payment provider.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	InquiryID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_inquiry_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_inquiry_key,priority:2"`
	SessionID string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
