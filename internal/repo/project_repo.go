// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Project
// content entity.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// CreateProject inserts a new project row with a fresh UUID.
func CreateProject(ctx context.Context, db *gorm.DB, p *domain.Project) (*domain.Project, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject fetches a project by ID, or ErrNotFound.
func GetProject(ctx context.Context, db *gorm.DB, id string) (*domain.Project, error) {
	var p domain.Project
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectBySlug fetches a project by slug, or ErrNotFound.
func GetProjectBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Project, error) {
	var p domain.Project
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns projects ordered by creation time descending,
// optionally restricted to a publication status.
func ListProjects(ctx context.Context, db *gorm.DB, status domain.ContentStatus, offset, limit int) ([]domain.Project, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Project{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Project
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// UpdateProjectFields applies a field-level update map to the project row.
func UpdateProjectFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProject soft-deletes the project row.
func DeleteProject(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
