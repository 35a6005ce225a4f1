// Testimonial HTTP handlers.
//
// Public surface:
//   - GET  /testimonials        (approved quotes only)
//   - POST /testimonials        (visitor submission, lands pending)
//
// Admin surface:
//   - GET    /admin/testimonials           (all, ?status= filter)
//   - PUT    /admin/testimonials/{id}      (edit)
//   - PUT    /admin/testimonials/{id}/status (approve / reject)
//   - DELETE /admin/testimonials/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

// TestimonialRequest is the JSON payload for submitting or editing a
// testimonial.
type TestimonialRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Company     string `json:"company"`
	Quote       string `json:"quote"`
	Rating      int    `json:"rating"`
	Photo       string `json:"photo"`
}

func (r TestimonialRequest) input() services.TestimonialInput {
	return services.TestimonialInput{
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Company:     r.Company,
		Quote:       r.Quote,
		Rating:      r.Rating,
		Photo:       r.Photo,
	}
}

// ListTestimonials returns the publicly visible (approved) testimonials.
func (h *Handlers) ListTestimonials(c *gin.Context) {
	page, pageSize := listParams(c)
	items, total, err := h.testSvc.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"testimonials": items, "pagination": pageOf(page, pageSize, total)})
}

// SubmitTestimonial accepts a visitor-submitted quote; it lands in the
// moderation queue as pending.
func (h *Handlers) SubmitTestimonial(c *gin.Context) {
	var req TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := h.testSvc.Submit(c.Request.Context(), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// AdminListTestimonials returns all testimonials, optionally filtered by
// moderation status (?status=pending|approved|rejected).
func (h *Handlers) AdminListTestimonials(c *gin.Context) {
	page, pageSize := listParams(c)
	status := domain.TestimonialStatus(c.Query("status"))
	items, total, err := h.testSvc.ListAdmin(c.Request.Context(), status, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"testimonials": items, "pagination": pageOf(page, pageSize, total)})
}

// UpdateTestimonial applies an admin edit.
func (h *Handlers) UpdateTestimonial(c *gin.Context) {
	var req TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := h.testSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// ModerateTestimonial approves or rejects a testimonial.
func (h *Handlers) ModerateTestimonial(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	t, err := h.testSvc.Moderate(c.Request.Context(), c.Param("id"), domain.TestimonialStatus(req.Status))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTestimonial removes a testimonial.
func (h *Handlers) DeleteTestimonial(c *gin.Context) {
	if err := h.testSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.failContent(c, err)
		return
	}
	noContent(c)
}
