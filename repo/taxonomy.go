// Copyright (C) 2026 Coral CMS Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package repo

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/coralcms/coral/cmsdb"
)

// Taxonomy manages the per-blog categories and tags. Both are deduped
// by slug within a blog: ensuring a title whose slug already exists
// returns the existing row instead of creating a near-duplicate.
type Taxonomy struct {
	db *cmsdb.Store
}

func NewTaxonomy(db *cmsdb.Store) *Taxonomy {
	return &Taxonomy{db: db}
}

// Slugify derives a URL slug from a title: lowercased, whitespace to
// single dashes, everything outside [a-z0-9-] dropped.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// EnsureCategory returns the blog's category with the title's slug,
// creating it when missing.
func (r *Taxonomy) EnsureCategory(ctx context.Context, blogID uuid.UUID, title string) (cmsdb.CategoryRow, error) {
	slug := Slugify(title)
	cat, err := r.db.GetCategoryBySlug(ctx, blogID, slug)
	if err == nil {
		return cat, nil
	}
	if notFound(err) != ErrNotFound {
		return cmsdb.CategoryRow{}, err
	}

	cat = cmsdb.CategoryRow{ID: uuid.New(), BlogID: blogID, Title: title, Slug: slug}
	if err := r.db.UpsertCategory(ctx, cat); err != nil {
		return cmsdb.CategoryRow{}, err
	}
	return cat, nil
}

// EnsureTag returns the blog's tag with the title's slug, creating it
// when missing.
func (r *Taxonomy) EnsureTag(ctx context.Context, blogID uuid.UUID, title string) (cmsdb.TagRow, error) {
	slug := Slugify(title)
	tag, err := r.db.GetTagBySlug(ctx, blogID, slug)
	if err == nil {
		return tag, nil
	}
	if notFound(err) != ErrNotFound {
		return cmsdb.TagRow{}, err
	}

	tag = cmsdb.TagRow{ID: uuid.New(), BlogID: blogID, Title: title, Slug: slug}
	if err := r.db.UpsertTag(ctx, tag); err != nil {
		return cmsdb.TagRow{}, err
	}
	return tag, nil
}

func (r *Taxonomy) GetCategory(ctx context.Context, id uuid.UUID) (cmsdb.CategoryRow, error) {
	cat, err := r.db.GetCategory(ctx, id)
	return cat, notFound(err)
}

func (r *Taxonomy) ListCategories(ctx context.Context, blogID uuid.UUID) ([]cmsdb.CategoryRow, error) {
	return r.db.ListCategories(ctx, blogID)
}

func (r *Taxonomy) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.DeleteCategory(ctx, id)
}

func (r *Taxonomy) GetTag(ctx context.Context, id uuid.UUID) (cmsdb.TagRow, error) {
	tag, err := r.db.GetTag(ctx, id)
	return tag, notFound(err)
}

func (r *Taxonomy) ListTags(ctx context.Context, blogID uuid.UUID) ([]cmsdb.TagRow, error) {
	return r.db.ListTags(ctx, blogID)
}

func (r *Taxonomy) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return r.db.DeleteTag(ctx, id)
}
