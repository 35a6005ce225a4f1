// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Blog and
// News content entities, which share the same lifecycle shape.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// --- Blog ---

// CreateBlog inserts a new blog row with a fresh UUID.
func CreateBlog(ctx context.Context, db *gorm.DB, b *domain.Blog) (*domain.Blog, error) {
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// GetBlog fetches a blog by ID, or ErrNotFound.
func GetBlog(ctx context.Context, db *gorm.DB, id string) (*domain.Blog, error) {
	var b domain.Blog
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBlogBySlug fetches a blog by slug, or ErrNotFound.
func GetBlogBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Blog, error) {
	var b domain.Blog
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBlogs returns blogs ordered by creation time descending, optionally
// restricted to a publication status.
func ListBlogs(ctx context.Context, db *gorm.DB, status domain.ContentStatus, offset, limit int) ([]domain.Blog, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Blog{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Blog
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// UpdateBlogFields applies a field-level update map to the blog row.
func UpdateBlogFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Blog{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBlog soft-deletes the blog row.
func DeleteBlog(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Blog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- News ---

// CreateNews inserts a new news row with a fresh UUID.
func CreateNews(ctx context.Context, db *gorm.DB, n *domain.News) (*domain.News, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// GetNews fetches a news item by ID, or ErrNotFound.
func GetNews(ctx context.Context, db *gorm.DB, id string) (*domain.News, error) {
	var n domain.News
	if err := db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNews returns news items ordered by creation time descending, optionally
// restricted to a publication status.
func ListNews(ctx context.Context, db *gorm.DB, status domain.ContentStatus, offset, limit int) ([]domain.News, int64, error) {
	q := db.WithContext(ctx).Model(&domain.News{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.News
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// UpdateNewsFields applies a field-level update map to the news row.
func UpdateNewsFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.News{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteNews soft-deletes the news row.
func DeleteNews(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.News{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
