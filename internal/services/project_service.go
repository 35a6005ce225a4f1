package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/assets"
	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/utils"
)

// ProjectService manages portfolio projects: CRUD, slugging, publication,
// and remote cleanup of media that a write orphans.
type ProjectService struct {
	DB      *gorm.DB
	Cleanup *assets.Cleanup
}

// ProjectInput carries the writable project fields. Pointer fields
// distinguish "absent" from "set to zero" on updates.
type ProjectInput struct {
	Title       *string
	Tag         *string
	Location    *string
	Year        *int
	Description *string
	CoverImage  *string
	Gallery     *domain.StringList
	Plans       *domain.StringList
}

// CreateProject inserts a draft project. The slug is derived from the title
// and de-duplicated with a numeric suffix. Residential projects never carry
// plans; any supplied plans are discarded.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	ctx, span := contentSpan(ctx, "ProjectService", "CreateProject", "")
	defer span.End()

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrMissingTitle
	}
	p := &domain.Project{
		Title:  strings.TrimSpace(*in.Title),
		Status: domain.ContentDraft,
	}
	if in.Tag != nil {
		p.Tag = *in.Tag
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Year != nil {
		p.Year = *in.Year
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.CoverImage != nil {
		p.CoverImage = *in.CoverImage
	}
	if in.Gallery != nil {
		p.Gallery = *in.Gallery
	}
	if in.Plans != nil && p.Tag != domain.TagResidential {
		p.Plans = *in.Plans
	}

	slug, err := repo.NextSlug(ctx, s.DB, &domain.Project{}, utils.Slugify(p.Title))
	if err != nil {
		return nil, err
	}
	p.Slug = slug
	return repo.CreateProject(ctx, s.DB, p)
}

// UpdateProject applies a partial update. Changing the title re-derives the
// slug. Media fields that get replaced enqueue remote cleanup of the URLs no
// longer referenced. Setting the tag to Residential clears plans, cleaning
// up any stored plan assets.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*domain.Project, error) {
	ctx, span := contentSpan(ctx, "ProjectService", "UpdateProject", id)
	defer span.End()

	cur, err := repo.GetProject(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}

	fields := map[string]any{}
	var orphans []string

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" && *in.Title != cur.Title {
		title := strings.TrimSpace(*in.Title)
		slug, err := repo.NextSlug(ctx, s.DB, &domain.Project{}, utils.Slugify(title))
		if err != nil {
			return nil, err
		}
		fields["title"] = title
		fields["slug"] = slug
	}
	if in.Tag != nil {
		fields["tag"] = *in.Tag
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Year != nil {
		fields["year"] = *in.Year
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.CoverImage != nil {
		if cur.CoverImage != "" && cur.CoverImage != *in.CoverImage {
			orphans = append(orphans, cur.CoverImage)
		}
		fields["cover_image"] = *in.CoverImage
	}
	if in.Gallery != nil {
		orphans = append(orphans, droppedURLs(cur.Gallery, *in.Gallery)...)
		fields["gallery"] = *in.Gallery
	}

	tag := cur.Tag
	if in.Tag != nil {
		tag = *in.Tag
	}
	switch {
	case tag == domain.TagResidential:
		if len(cur.Plans) > 0 {
			orphans = append(orphans, cur.Plans...)
			fields["plans"] = domain.StringList(nil)
		}
	case in.Plans != nil:
		orphans = append(orphans, droppedURLs(cur.Plans, *in.Plans)...)
		fields["plans"] = *in.Plans
	}

	if len(fields) > 0 {
		if err := repo.UpdateProjectFields(ctx, s.DB, id, fields); err != nil {
			return nil, mapContentErr(err)
		}
	}
	s.Cleanup.Enqueue(orphans...)
	out, err := repo.GetProject(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// SetProjectStatus publishes or unpublishes a project.
func (s *ProjectService) SetProjectStatus(ctx context.Context, id string, status domain.ContentStatus) (*domain.Project, error) {
	ctx, span := contentSpan(ctx, "ProjectService", "SetProjectStatus", id)
	defer span.End()

	if status != domain.ContentDraft && status != domain.ContentPublished {
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateProjectFields(ctx, s.DB, id, map[string]any{"status": status}); err != nil {
		return nil, mapContentErr(err)
	}
	out, err := repo.GetProject(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// DeleteProject removes the project and enqueues cleanup of all its media.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	ctx, span := contentSpan(ctx, "ProjectService", "DeleteProject", id)
	defer span.End()

	cur, err := repo.GetProject(ctx, s.DB, id)
	if err != nil {
		return mapContentErr(err)
	}
	if err := repo.DeleteProject(ctx, s.DB, id); err != nil {
		return mapContentErr(err)
	}
	s.Cleanup.Enqueue(cur.MediaURLs()...)
	return nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	out, err := repo.GetProject(ctx, s.DB, id)
	if err != nil {
		return nil, mapContentErr(err)
	}
	return out, nil
}

// GetProjectBySlug returns a published project by slug. Drafts are not
// visible on the public surface.
func (s *ProjectService) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	out, err := repo.GetProjectBySlug(ctx, s.DB, slug)
	if err != nil {
		return nil, mapContentErr(err)
	}
	if out.Status != domain.ContentPublished {
		return nil, ErrContentNotFound
	}
	return out, nil
}

// ListProjects returns a page of projects, optionally filtered by status.
// The public surface passes ContentPublished; admin passes "" for all.
func (s *ProjectService) ListProjects(ctx context.Context, status domain.ContentStatus, page, pageSize int) ([]domain.Project, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, 100)
	return repo.ListProjects(ctx, s.DB, status, (page-1)*pageSize, pageSize)
}

// droppedURLs returns the members of old absent from new.
func droppedURLs(old, new []string) []string {
	keep := make(map[string]struct{}, len(new))
	for _, u := range new {
		keep[u] = struct{}{}
	}
	var out []string
	for _, u := range old {
		if _, ok := keep[u]; !ok && u != "" {
			out = append(out, u)
		}
	}
	return out
}
