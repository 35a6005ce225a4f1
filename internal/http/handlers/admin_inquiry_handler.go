// Admin inquiry HTTP handlers.
//
// This file exposes the backoffice inquiry endpoints (all JWT-gated):
//   - GET  /admin/inquiries            (list, filters, pagination, ETag)
//   - GET  /admin/inquiries/export     (CSV or XLSX download)
//   - GET  /admin/inquiries/{id}
//   - POST /admin/inquiries/{id}/review
//   - PUT  /admin/inquiries/{id}/status
//   - PUT  /admin/inquiries/status     (bulk)
//   - POST /admin/inquiries/{id}/notes
//   - GET  /admin/dashboard
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/export"
	"github.com/atelierhaus/atelier-backend/internal/http/middleware"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

// inquiryFilter builds the repo filter from list/export query params.
func inquiryFilter(c *gin.Context) repo.InquiryFilter {
	f := repo.InquiryFilter{
		Status:        domain.Status(c.Query("status")),
		ClientType:    domain.ClientType(c.Query("client_type")),
		Path:          domain.Path(c.Query("path")),
		PaymentStatus: domain.PaymentStatus(c.Query("payment_status")),
		Service:       c.Query("service"),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	return f
}

// NoteRequest is the JSON payload appending an admin note.
type NoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// InquiryStatusRequest selects a lifecycle status for an inquiry.
type InquiryStatusRequest struct {
	Status string `json:"status" binding:"required" example:"completed"`
}

// BulkStatusRequest applies a status change to several inquiries at once.
type BulkStatusRequest struct {
	IDs    []string `json:"ids"    binding:"required"`
	Status string   `json:"status" binding:"required"`
}

// AdminListInquiries godoc
// @ID          adminListInquiries
// @Summary     List inquiries (admin)
// @Description Returns a filtered page of inquiries. Supports weak ETag via
// @Description If-None-Match and may return 304.
// @Tags        Admin
// @Produce     json
// @Param       status          query  string  false  "Lifecycle status"
// @Param       client_type     query  string  false  "private or business"
// @Param       path            query  string  false  "general or consult"
// @Param       payment_status  query  string  false  "pending or paid"
// @Param       service         query  string  false  "Selected service"
// @Param       from            query  string  false  "Created after (RFC3339)"
// @Param       to              query  string  false  "Created before (RFC3339)"
// @Param       page            query  int     false  "Page number"
// @Param       page_size       query  int     false  "Items per page"
// @Success     200  {object}  handlers.Envelope
// @Success     304  {string}  string "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /admin/inquiries [get]
func (h *Handlers) AdminListInquiries(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := listParams(c)

	// ETag pre-check (best effort): skip the page query when the collection
	// has not changed since the client's cached copy.
	if svc, okSvc := h.inqSvc.(*services.InquiryService); okSvc {
		count, maxTS, err := repo.InquiryStats(ctx, svc.DB)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"inquiries:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.inqSvc.AdminList(ctx, inquiryFilter(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"inquiries": items, "pagination": pageOf(page, pageSize, total)})
}

// AdminGetInquiry returns a single inquiry including its notes.
func (h *Handlers) AdminGetInquiry(c *gin.Context) {
	inq, err := h.inqSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// ExportInquiries godoc
// @ID          exportInquiries
// @Summary     Export inquiries (admin)
// @Description Streams the filtered inquiry list as a CSV (default) or XLSX
// @Description download, selected via ?format=.
// @Tags        Admin
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       format  query  string  false  "csv (default) or xlsx"
// @Success     200  {file}    file
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /admin/inquiries/export [get]
func (h *Handlers) ExportInquiries(c *gin.Context) {
	items, err := h.inqSvc.Export(c.Request.Context(), inquiryFilter(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inquiries-%s.xlsx"`, stamp))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteXLSX(c.Writer, items); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		}
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inquiries-%s.csv"`, stamp))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		if err := export.WriteCSV(c.Writer, items); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		}
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "format must be csv or xlsx")
	}
}

// ReviewInquiry marks a submitted inquiry as reviewed by the current admin.
func (h *Handlers) ReviewInquiry(c *gin.Context) {
	reviewer := middleware.AdminEmail(c)
	inq, err := h.inqSvc.Review(c.Request.Context(), c.Param("id"), reviewer)
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// SetInquiryStatus applies a lifecycle transition to a single inquiry.
func (h *Handlers) SetInquiryStatus(c *gin.Context) {
	var req InquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	inq, err := h.inqSvc.SetStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, inq)
}

// BulkInquiryStatus applies a transition to many inquiries; rows that do not
// exist or whose transition is illegal are skipped, not failed.
func (h *Handlers) BulkInquiryStatus(c *gin.Context) {
	var req BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids and status are required")
		return
	}
	updated, err := h.inqSvc.BulkStatus(c.Request.Context(), req.IDs, domain.Status(req.Status))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"updated": updated, "requested": len(req.IDs)})
}

// AddInquiryNote appends an admin note to an inquiry.
func (h *Handlers) AddInquiryNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text is required")
		return
	}
	note, err := h.inqSvc.AddNote(c.Request.Context(), c.Param("id"), req.Text, middleware.AdminEmail(c))
	if err != nil {
		h.failInquiry(c, err)
		return
	}
	ok(c, http.StatusCreated, note)
}

// Dashboard returns the admin overview statistics.
func (h *Handlers) Dashboard(c *gin.Context) {
	stats, err := h.dashSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
