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

package cmsdb

import (
	"context"

	"github.com/google/uuid"
)

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (CategoryRow, error) {
	var i CategoryRow
	err := q.db.QueryRow(ctx, `
SELECT id, blog_id, title, slug FROM categories WHERE id = $1`, id).
		Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug)
	return i, err
}

func (q *Queries) GetCategoryBySlug(ctx context.Context, blogID uuid.UUID, slug string) (CategoryRow, error) {
	var i CategoryRow
	err := q.db.QueryRow(ctx, `
SELECT id, blog_id, title, slug FROM categories WHERE blog_id = $1 AND slug = $2`, blogID, slug).
		Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug)
	return i, err
}

func (q *Queries) ListCategories(ctx context.Context, blogID uuid.UUID) ([]CategoryRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT id, blog_id, title, slug FROM categories WHERE blog_id = $1 ORDER BY title`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertCategory = `
INSERT INTO categories (id, blog_id, title, slug)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, slug = EXCLUDED.slug`

func (q *Queries) UpsertCategory(ctx context.Context, c CategoryRow) error {
	_, err := q.db.Exec(ctx, upsertCategory, c.ID, c.BlogID, c.Title, c.Slug)
	return err
}

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (q *Queries) GetTag(ctx context.Context, id uuid.UUID) (TagRow, error) {
	var i TagRow
	err := q.db.QueryRow(ctx, `
SELECT id, blog_id, title, slug FROM tags WHERE id = $1`, id).
		Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug)
	return i, err
}

func (q *Queries) GetTagBySlug(ctx context.Context, blogID uuid.UUID, slug string) (TagRow, error) {
	var i TagRow
	err := q.db.QueryRow(ctx, `
SELECT id, blog_id, title, slug FROM tags WHERE blog_id = $1 AND slug = $2`, blogID, slug).
		Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug)
	return i, err
}

func (q *Queries) ListTags(ctx context.Context, blogID uuid.UUID) ([]TagRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT id, blog_id, title, slug FROM tags WHERE blog_id = $1 ORDER BY title`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TagRow
	for rows.Next() {
		var i TagRow
		if err := rows.Scan(&i.ID, &i.BlogID, &i.Title, &i.Slug); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertTag = `
INSERT INTO tags (id, blog_id, title, slug)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, slug = EXCLUDED.slug`

func (q *Queries) UpsertTag(ctx context.Context, t TagRow) error {
	_, err := q.db.Exec(ctx, upsertTag, t.ID, t.BlogID, t.Title, t.Slug)
	return err
}

func (q *Queries) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM post_tags WHERE tag_id = $1`, id); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	return err
}

const deleteOrphanCategories = `
DELETE FROM categories c
WHERE NOT EXISTS (SELECT 1 FROM posts p WHERE p.category_id = c.id)`

// DeleteOrphanCategories removes categories no post references and
// returns how many were removed.
func (q *Queries) DeleteOrphanCategories(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrphanCategories)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteOrphanTags = `
DELETE FROM tags t
WHERE NOT EXISTS (SELECT 1 FROM post_tags pt WHERE pt.tag_id = t.id)`

// DeleteOrphanTags removes tags no post references and returns how
// many were removed.
func (q *Queries) DeleteOrphanTags(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrphanTags)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
