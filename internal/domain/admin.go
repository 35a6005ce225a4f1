package domain

import "time"

// AdminUser is a back-office account permitted to call the /admin API.
// Passwords are stored as bcrypt hashes; plaintext is never persisted.
type AdminUser struct {
	ID           string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string    `json:"name"  gorm:"type:varchar(128)"`
	PasswordHash string    `json:"-"     gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for AdminUser.
func (AdminUser) TableName() string { return "admin_users" }

// RefreshToken is a single-use refresh credential. Only a SHA-256 hash of the
// opaque token is stored; presentation of the plaintext rotates the row.
type RefreshToken struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	AdminID   string    `gorm:"type:char(36);not null;index"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName returns the database table name for RefreshToken.
func (RefreshToken) TableName() string { return "refresh_tokens" }
