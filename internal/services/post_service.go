package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhaus/atelier-backend/internal/assets"
	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/utils"
)

// BlogService manages long-form articles.
type BlogService struct {
	DB      *gorm.DB
	Cleanup *assets.Cleanup
}

// BlogInput carries the writable blog fields.
type BlogInput struct {
	Title      *string
	Author     *string
	Excerpt    *string
	Body       *string
	CoverImage *string
	Tags       *domain.StringList
}

// CreateBlog inserts a draft article with a title-derived slug.
func (s *BlogService) CreateBlog(ctx context.Context, in BlogInput) (*domain.Blog, error) {
	ctx, span := contentSpan(ctx, "BlogService", "CreateBlog", "")
	defer span.End()

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrMissingTitle
	}
	b := &domain.Blog{
		Title:  strings.TrimSpace(*in.Title),
		Status: domain.ContentDraft,
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Excerpt != nil {
		b.Excerpt = *in.Excerpt
	}
	if in.Body != nil {
		b.Body = *in.Body
	}
	if in.CoverImage != nil {
		b.CoverImage = *in.CoverImage
	}
	if in.Tags != nil {
		b.Tags = *in.Tags
	}
	slug, err := repo.NextSlug(ctx, s.DB, &domain.Blog{}, utils.Slugify(b.Title))
	if err != nil {
		return nil, err
	}
	b.Slug = slug
	return repo.CreateBlog(ctx, s.DB, b)
}

// UpdateBlog applies a partial update; a title change re-derives the slug
// and a cover change enqueues cleanup of the replaced image.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, in BlogInput) (*domain.Blog, error) {
	ctx, span := contentSpan(ctx, "BlogService", "UpdateBlog", id)
	defer span.End()

	cur, err := repo.GetBlog(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}

	fields := map[string]any{}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" && *in.Title != cur.Title {
		title := strings.TrimSpace(*in.Title)
		slug, err := repo.NextSlug(ctx, s.DB, &domain.Blog{}, utils.Slugify(title))
		if err != nil {
			return nil, err
		}
		fields["title"] = title
		fields["slug"] = slug
	}
	if in.Author != nil {
		fields["author"] = *in.Author
	}
	if in.Excerpt != nil {
		fields["excerpt"] = *in.Excerpt
	}
	if in.Body != nil {
		fields["body"] = *in.Body
	}
	if in.CoverImage != nil {
		if cur.CoverImage != "" && cur.CoverImage != *in.CoverImage {
			s.Cleanup.Enqueue(cur.CoverImage)
		}
		fields["cover_image"] = *in.CoverImage
	}
	if in.Tags != nil {
		fields["tags"] = *in.Tags
	}

	if len(fields) > 0 {
		if err := repo.UpdateBlogFields(ctx, s.DB, id, fields); err != nil {
			return nil, mapContentErr(err)
		}
	}
	out, err := repo.GetBlog(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// SetBlogStatus publishes or unpublishes an article.
func (s *BlogService) SetBlogStatus(ctx context.Context, id string, status domain.ContentStatus) (*domain.Blog, error) {
	ctx, span := contentSpan(ctx, "BlogService", "SetBlogStatus", id)
	defer span.End()

	if status != domain.ContentDraft && status != domain.ContentPublished {
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateBlogFields(ctx, s.DB, id, map[string]any{"status": status}); err != nil {
		return nil, mapContentErr(err)
	}
	out, err := repo.GetBlog(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// DeleteBlog removes the article and cleans up its cover image.
func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	ctx, span := contentSpan(ctx, "BlogService", "DeleteBlog", id)
	defer span.End()

	cur, err := repo.GetBlog(ctx, s.DB, id)
	if err != nil {
		return mapContentErr(err)
	}
	if err := repo.DeleteBlog(ctx, s.DB, id); err != nil {
		return mapContentErr(err)
	}
	s.Cleanup.Enqueue(cur.CoverImage)
	return nil
}

// GetBlog returns an article by ID.
func (s *BlogService) GetBlog(ctx context.Context, id string) (*domain.Blog, error) {
	out, err := repo.GetBlog(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// GetBlogBySlug returns a published article by slug.
func (s *BlogService) GetBlogBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	out, err := repo.GetBlogBySlug(ctx, s.DB, slug)
	if err != nil {
		return nil, mapContentErr(err)
	}
	if out.Status != domain.ContentPublished {
		return nil, ErrContentNotFound
	}
	return out, nil
}

// ListBlogs returns a page of articles, optionally filtered by status.
func (s *BlogService) ListBlogs(ctx context.Context, status domain.ContentStatus, page, pageSize int) ([]domain.Blog, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, 100)
	return repo.ListBlogs(ctx, s.DB, status, (page-1)*pageSize, pageSize)
}

// NewsService manages short announcements. News has no slug lookup on the
// public surface beyond the list view, but keeps one for stable URLs.
type NewsService struct {
	DB      *gorm.DB
	Cleanup *assets.Cleanup
}

// NewsInput carries the writable news fields.
type NewsInput struct {
	Title      *string
	Body       *string
	CoverImage *string
}

// CreateNews inserts a draft announcement with a title-derived slug.
func (s *NewsService) CreateNews(ctx context.Context, in NewsInput) (*domain.News, error) {
	ctx, span := contentSpan(ctx, "NewsService", "CreateNews", "")
	defer span.End()

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrMissingTitle
	}
	n := &domain.News{
		Title:  strings.TrimSpace(*in.Title),
		Status: domain.ContentDraft,
	}
	if in.Body != nil {
		n.Body = *in.Body
	}
	if in.CoverImage != nil {
		n.CoverImage = *in.CoverImage
	}
	slug, err := repo.NextSlug(ctx, s.DB, &domain.News{}, utils.Slugify(n.Title))
	if err != nil {
		return nil, err
	}
	n.Slug = slug
	return repo.CreateNews(ctx, s.DB, n)
}

// UpdateNews applies a partial update.
func (s *NewsService) UpdateNews(ctx context.Context, id string, in NewsInput) (*domain.News, error) {
	ctx, span := contentSpan(ctx, "NewsService", "UpdateNews", id)
	defer span.End()

	cur, err := repo.GetNews(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}

	fields := map[string]any{}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" && *in.Title != cur.Title {
		title := strings.TrimSpace(*in.Title)
		slug, err := repo.NextSlug(ctx, s.DB, &domain.News{}, utils.Slugify(title))
		if err != nil {
			return nil, err
		}
		fields["title"] = title
		fields["slug"] = slug
	}
	if in.Body != nil {
		fields["body"] = *in.Body
	}
	if in.CoverImage != nil {
		if cur.CoverImage != "" && cur.CoverImage != *in.CoverImage {
			s.Cleanup.Enqueue(cur.CoverImage)
		}
		fields["cover_image"] = *in.CoverImage
	}

	if len(fields) > 0 {
		if err := repo.UpdateNewsFields(ctx, s.DB, id, fields); err != nil {
			return nil, mapContentErr(err)
		}
	}
	out, err := repo.GetNews(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// SetNewsStatus publishes or unpublishes an announcement.
func (s *NewsService) SetNewsStatus(ctx context.Context, id string, status domain.ContentStatus) (*domain.News, error) {
	ctx, span := contentSpan(ctx, "NewsService", "SetNewsStatus", id)
	defer span.End()

	if status != domain.ContentDraft && status != domain.ContentPublished {
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateNewsFields(ctx, s.DB, id, map[string]any{"status": status}); err != nil {
		return nil, mapContentErr(err)
	}
	out, err := repo.GetNews(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// DeleteNews removes the announcement and cleans up its cover image.
func (s *NewsService) DeleteNews(ctx context.Context, id string) error {
	ctx, span := contentSpan(ctx, "NewsService", "DeleteNews", id)
	defer span.End()

	cur, err := repo.GetNews(ctx, s.DB, id)
	if err != nil {
		return mapContentErr(err)
	}
	if err := repo.DeleteNews(ctx, s.DB, id); err != nil {
		return mapContentErr(err)
	}
	s.Cleanup.Enqueue(cur.CoverImage)
	return nil
}

// GetNews returns an announcement by ID.
func (s *NewsService) GetNews(ctx context.Context, id string) (*domain.News, error) {
	out, err := repo.GetNews(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// ListNews returns a page of announcements, optionally filtered by status.
func (s *NewsService) ListNews(ctx context.Context, status domain.ContentStatus, page, pageSize int) ([]domain.News, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, 100)
	return repo.ListNews(ctx, s.DB, status, (page-1)*pageSize, pageSize)
}

func mapContentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrContentNotFound
	}
	return err
}

func contentSpan(ctx context.Context, svc, op, id string) (context.Context, trace.Span) {
	tr := otel.Tracer("services/" + svc)
	return tr.Start(ctx, op, trace.WithAttributes(attribute.String("content.id", id)))
}
