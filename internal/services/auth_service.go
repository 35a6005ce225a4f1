package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
)

// AuthService issues and verifies admin sessions: short-lived HS256 access
// tokens plus opaque refresh tokens stored hashed and rotated on every use.
type AuthService struct {
	DB         *gorm.DB
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims is the access-token payload.
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Login verifies the credentials and issues a fresh token pair. Unknown
// email and wrong password are deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *domain.AdminUser, error) {
	admin, err := repo.GetAdminByEmail(ctx, s.DB, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, admin)
	if err != nil {
		return nil, nil, err
	}
	return pair, admin, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked regardless of outcome, so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := hashToken(refreshToken)
	rt, err := repo.GetRefreshToken(ctx, s.DB, hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if err := repo.RevokeRefreshToken(ctx, s.DB, hash); err != nil {
		return nil, err
	}
	admin, err := repo.GetAdminByID(ctx, s.DB, rt.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issuePair(ctx, admin)
}

// Logout revokes the refresh token. A token that is already gone is fine.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := repo.RevokeRefreshToken(ctx, s.DB, hashToken(refreshToken))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Verify parses and validates an access token, returning its claims.
func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	switch {
	case err == nil && tok.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	default:
		return nil, ErrInvalidToken
	}
}

// EnsureBootstrapAdmin creates the initial admin account from configuration
// when no account with that email exists yet. Safe to call on every start.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = NormalizeEmail(email)
	_, err := repo.GetAdminByEmail(ctx, s.DB, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := repo.CreateAdmin(ctx, s.DB, email, "Admin", string(hash)); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, admin *domain.AdminUser) (*TokenPair, error) {
	now := time.Now().UTC()
	exp := now.Add(s.AccessTTL)
	claims := Claims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, err
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := repo.CreateRefreshToken(ctx, s.DB, admin.ID, hashToken(refresh), now.Add(s.RefreshTTL)); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// newOpaqueToken returns 256 bits of randomness, hex encoded. Only its
// SHA-256 hash is ever stored.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}
