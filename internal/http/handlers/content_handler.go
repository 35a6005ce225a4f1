// Content HTTP handlers.
//
// Public surface (published entities only):
//   - GET /projects, GET /projects/{slug}
//   - GET /blogs,    GET /blogs/{slug}
//   - GET /news
//
// Admin surface (full CRUD, drafts visible):
//   - POST/PUT/DELETE under /admin/{projects,blogs,news}
//   - PUT  .../{id}/status  (publish / unpublish)
//   - POST /admin/uploads   (direct asset upload gateway)
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/services"
	"github.com/atelierhaus/atelier-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// pageOf builds the pagination block for a list response.
func pageOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// listParams parses and bounds page and page_size query params.
func listParams(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 20),
		20, 100,
	)
}

// listStatus resolves the status filter for a content list: the public
// surface always sees published entities only; admins may pass ?status=.
func listStatus(c *gin.Context, admin bool) domain.ContentStatus {
	if !admin {
		return domain.ContentPublished
	}
	return domain.ContentStatus(c.Query("status"))
}

// ProjectRequest is the JSON payload for creating or updating a project.
// All fields are optional on update; omitted fields are left untouched.
type ProjectRequest struct {
	Title       *string            `json:"title,omitempty"`
	Tag         *string            `json:"tag,omitempty"`
	Location    *string            `json:"location,omitempty"`
	Year        *int               `json:"year,omitempty"`
	Description *string            `json:"description,omitempty"`
	CoverImage  *string            `json:"cover_image,omitempty"`
	Gallery     *domain.StringList `json:"gallery,omitempty"`
	Plans       *domain.StringList `json:"plans,omitempty"`
}

func (r ProjectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Title:       r.Title,
		Tag:         r.Tag,
		Location:    r.Location,
		Year:        r.Year,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		Gallery:     r.Gallery,
		Plans:       r.Plans,
	}
}

// BlogRequest is the JSON payload for creating or updating a blog post.
type BlogRequest struct {
	Title      *string            `json:"title,omitempty"`
	Author     *string            `json:"author,omitempty"`
	Excerpt    *string            `json:"excerpt,omitempty"`
	Body       *string            `json:"body,omitempty"`
	CoverImage *string            `json:"cover_image,omitempty"`
	Tags       *domain.StringList `json:"tags,omitempty"`
}

func (r BlogRequest) input() services.BlogInput {
	return services.BlogInput{
		Title:      r.Title,
		Author:     r.Author,
		Excerpt:    r.Excerpt,
		Body:       r.Body,
		CoverImage: r.CoverImage,
		Tags:       r.Tags,
	}
}

// NewsRequest is the JSON payload for creating or updating a news item.
type NewsRequest struct {
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	CoverImage *string `json:"cover_image,omitempty"`
}

func (r NewsRequest) input() services.NewsInput {
	return services.NewsInput{Title: r.Title, Body: r.Body, CoverImage: r.CoverImage}
}

// SetStatusRequest selects a publication status for a content entity.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required" example:"published"`
}

//
// Projects
//

// ListProjects returns published projects (public) or any status (admin).
func (h *Handlers) ListProjects(c *gin.Context) {
	h.listProjects(c, false)
}

// AdminListProjects returns all projects including drafts.
func (h *Handlers) AdminListProjects(c *gin.Context) {
	h.listProjects(c, true)
}

func (h *Handlers) listProjects(c *gin.Context, admin bool) {
	page, pageSize := listParams(c)
	items, total, err := h.projSvc.ListProjects(c.Request.Context(), listStatus(c, admin), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"projects": items, "pagination": pageOf(page, pageSize, total)})
}

// GetProjectBySlug returns a published project.
func (h *Handlers) GetProjectBySlug(c *gin.Context) {
	p, err := h.projSvc.GetProjectBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// AdminGetProject returns a project by ID regardless of status.
func (h *Handlers) AdminGetProject(c *gin.Context) {
	p, err := h.projSvc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// CreateProject creates a draft project.
func (h *Handlers) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.projSvc.CreateProject(c.Request.Context(), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// UpdateProject applies a partial update to a project.
func (h *Handlers) UpdateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.projSvc.UpdateProject(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// SetProjectStatus publishes or unpublishes a project.
func (h *Handlers) SetProjectStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	p, err := h.projSvc.SetProjectStatus(c.Request.Context(), c.Param("id"), domain.ContentStatus(req.Status))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProject removes a project.
func (h *Handlers) DeleteProject(c *gin.Context) {
	if err := h.projSvc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.failContent(c, err)
		return
	}
	noContent(c)
}

//
// Blogs
//

// ListBlogs returns published blog posts.
func (h *Handlers) ListBlogs(c *gin.Context) {
	h.listBlogs(c, false)
}

// AdminListBlogs returns all blog posts including drafts.
func (h *Handlers) AdminListBlogs(c *gin.Context) {
	h.listBlogs(c, true)
}

func (h *Handlers) listBlogs(c *gin.Context, admin bool) {
	page, pageSize := listParams(c)
	items, total, err := h.blogSvc.ListBlogs(c.Request.Context(), listStatus(c, admin), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"blogs": items, "pagination": pageOf(page, pageSize, total)})
}

// GetBlogBySlug returns a published blog post.
func (h *Handlers) GetBlogBySlug(c *gin.Context) {
	b, err := h.blogSvc.GetBlogBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// CreateBlog creates a draft blog post.
func (h *Handlers) CreateBlog(c *gin.Context) {
	var req BlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	b, err := h.blogSvc.CreateBlog(c.Request.Context(), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

// UpdateBlog applies a partial update to a blog post.
func (h *Handlers) UpdateBlog(c *gin.Context) {
	var req BlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	b, err := h.blogSvc.UpdateBlog(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// SetBlogStatus publishes or unpublishes a blog post.
func (h *Handlers) SetBlogStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	b, err := h.blogSvc.SetBlogStatus(c.Request.Context(), c.Param("id"), domain.ContentStatus(req.Status))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// DeleteBlog removes a blog post.
func (h *Handlers) DeleteBlog(c *gin.Context) {
	if err := h.blogSvc.DeleteBlog(c.Request.Context(), c.Param("id")); err != nil {
		h.failContent(c, err)
		return
	}
	noContent(c)
}

//
// News
//

// ListNews returns published news items.
func (h *Handlers) ListNews(c *gin.Context) {
	h.listNews(c, false)
}

// AdminListNews returns all news items including drafts.
func (h *Handlers) AdminListNews(c *gin.Context) {
	h.listNews(c, true)
}

func (h *Handlers) listNews(c *gin.Context, admin bool) {
	page, pageSize := listParams(c)
	items, total, err := h.newsSvc.ListNews(c.Request.Context(), listStatus(c, admin), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"news": items, "pagination": pageOf(page, pageSize, total)})
}

// CreateNews creates a draft news item.
func (h *Handlers) CreateNews(c *gin.Context) {
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	n, err := h.newsSvc.CreateNews(c.Request.Context(), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusCreated, n)
}

// UpdateNews applies a partial update to a news item.
func (h *Handlers) UpdateNews(c *gin.Context) {
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	n, err := h.newsSvc.UpdateNews(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, n)
}

// SetNewsStatus publishes or unpublishes a news item.
func (h *Handlers) SetNewsStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	n, err := h.newsSvc.SetNewsStatus(c.Request.Context(), c.Param("id"), domain.ContentStatus(req.Status))
	if err != nil {
		h.failContent(c, err)
		return
	}
	ok(c, http.StatusOK, n)
}

// DeleteNews removes a news item.
func (h *Handlers) DeleteNews(c *gin.Context) {
	if err := h.newsSvc.DeleteNews(c.Request.Context(), c.Param("id")); err != nil {
		h.failContent(c, err)
		return
	}
	noContent(c)
}

//
// Uploads
//

// UploadAsset godoc
// @ID          uploadAsset
// @Summary     Upload an asset (admin)
// @Description Stores a file with the remote asset host and returns its URL.
// @Tags        Admin
// @Accept      mpfd
// @Produce     json
// @Param       file    formData  file    true   "File to upload"
// @Param       folder  formData  string  false  "Target folder"
// @Success     201  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /admin/uploads [post]
func (h *Handlers) UploadAsset(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
		return
	}
	folder := c.PostForm("folder")
	if folder == "" {
		folder = "content"
	}
	resourceType := c.PostForm("resource_type")
	if resourceType == "" {
		resourceType = "image"
	}
	url, err := h.upload.Upload(c.Request.Context(), data, fh.Filename, folder, resourceType)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, gin.H{"url": url})
}

// failContent translates content service errors to HTTP responses.
func (h *Handlers) failContent(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrContentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateTestimonial):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrMissingTitle),
		errors.Is(err, services.ErrMissingQuote),
		errors.Is(err, services.ErrMissingEmail),
		errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
