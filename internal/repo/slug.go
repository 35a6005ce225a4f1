package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// NextSlug returns base when unused, otherwise the first free incremental
// variant ("base-1", "base-2", …) for the given model's table. Soft-deleted
// rows still hold their slug, so Unscoped is used to avoid resurrecting a
// collision later.
func NextSlug(ctx context.Context, db *gorm.DB, model any, base string) (string, error) {
	if base == "" {
		base = "untitled"
	}
	taken := map[string]struct{}{}
	var existing []string
	err := db.WithContext(ctx).
		Model(model).
		Unscoped().
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &existing).Error
	if err != nil {
		return "", err
	}
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}
