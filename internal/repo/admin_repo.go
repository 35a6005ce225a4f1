// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for admin accounts
// and refresh tokens.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// GetAdminByEmail fetches an admin account by normalized email, or ErrNotFound.
func GetAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.AdminUser, error) {
	var a domain.AdminUser
	if err := db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAdminByID fetches an admin account by ID, or ErrNotFound.
func GetAdminByID(ctx context.Context, db *gorm.DB, id string) (*domain.AdminUser, error) {
	var a domain.AdminUser
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAdmin inserts a new admin account with a fresh UUID.
func CreateAdmin(ctx context.Context, db *gorm.DB, email, name, passwordHash string) (*domain.AdminUser, error) {
	a := &domain.AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// CreateRefreshToken stores a hashed refresh token for the admin.
func CreateRefreshToken(ctx context.Context, db *gorm.DB, adminID, tokenHash string, expiresAt time.Time) error {
	rt := &domain.RefreshToken{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(rt).Error
}

// GetRefreshToken fetches a live (unrevoked, unexpired) refresh token row by
// hash, or ErrNotFound.
func GetRefreshToken(ctx context.Context, db *gorm.DB, tokenHash string, now time.Time) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := db.WithContext(ctx).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", tokenHash, false, now).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a refresh token row revoked. Revoking an already
// revoked or unknown token is not an error.
func RevokeRefreshToken(ctx context.Context, db *gorm.DB, tokenHash string) error {
	return db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}
