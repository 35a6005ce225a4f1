// Admin session HTTP handlers.
//
//   - POST /auth/login    (credentials → token pair)
//   - POST /auth/refresh  (rotate refresh token → new pair)
//   - POST /auth/logout   (revoke refresh token)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/services"
)

// LoginRequest is the JSON payload for admin login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"admin@atelierhaus.example"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the opaque refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login godoc
// @ID          adminLogin
// @Summary     Admin login
// @Description Verifies credentials and returns an access/refresh token pair.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  handlers.Envelope
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}
	pair, admin, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{
		"tokens": pair,
		"admin":  gin.H{"id": admin.ID, "email": admin.Email, "name": admin.Name},
	})
}

// Refresh godoc
// @ID          adminRefresh
// @Summary     Rotate a refresh token
// @Description Exchanges a live refresh token for a new pair; the presented
// @Description token is revoked so it works exactly once.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RefreshRequest  true  "Refresh token"
// @Success     200  {object}  handlers.Envelope
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token is required")
		return
	}
	pair, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrExpiredToken) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or expired refresh token")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"tokens": pair})
}

// Logout godoc
// @ID          adminLogout
// @Summary     Revoke a refresh token
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RefreshRequest  true  "Refresh token"
// @Success     204  {string}  string "No Content"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token is required")
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
