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

const postColumns = `id, blog_id, category_id, post_type_id, title, slug, published, created, last_modified`

func scanPost(row interface{ Scan(dest ...any) error }) (PostRow, error) {
	var i PostRow
	err := row.Scan(&i.ID, &i.BlogID, &i.CategoryID, &i.PostTypeID, &i.Title, &i.Slug,
		&i.Published, &i.Created, &i.LastModified)
	return i, err
}

func (q *Queries) GetPost(ctx context.Context, id uuid.UUID) (PostRow, error) {
	return scanPost(q.db.QueryRow(ctx, `
SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (q *Queries) GetPostBySlug(ctx context.Context, blogID uuid.UUID, slug string) (PostRow, error) {
	return scanPost(q.db.QueryRow(ctx, `
SELECT `+postColumns+` FROM posts WHERE blog_id = $1 AND slug = $2`, blogID, slug))
}

func (q *Queries) ListPostsByBlog(ctx context.Context, blogID uuid.UUID) ([]PostRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+postColumns+` FROM posts
WHERE blog_id = $1
ORDER BY published DESC NULLS LAST, created DESC`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PostRow
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertPost = `
INSERT INTO posts (id, blog_id, category_id, post_type_id, title, slug, published, created, last_modified)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE
SET category_id = EXCLUDED.category_id,
    post_type_id = EXCLUDED.post_type_id,
    title = EXCLUDED.title,
    slug = EXCLUDED.slug,
    published = EXCLUDED.published,
    last_modified = now()`

func (q *Queries) UpsertPost(ctx context.Context, p PostRow) error {
	_, err := q.db.Exec(ctx, upsertPost, p.ID, p.BlogID, p.CategoryID, p.PostTypeID, p.Title, p.Slug, p.Published)
	return err
}

func (q *Queries) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := q.deleteFieldRows(ctx, postFields, id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// SetPostTags replaces the post's tag set.
func (q *Queries) SetPostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := q.db.Exec(ctx, `
INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) ListPostTags(ctx context.Context, postID uuid.UUID) ([]TagRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT t.id, t.blog_id, t.title, t.slug
FROM tags t
JOIN post_tags pt ON pt.tag_id = t.id
WHERE pt.post_id = $1
ORDER BY t.title`, postID)
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

// PostArchiveCounts buckets a blog's published posts by month for the
// archive read model.
func (q *Queries) PostArchiveCounts(ctx context.Context, blogID uuid.UUID) ([]ArchiveCountRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT extract(year FROM published)::int, extract(month FROM published)::int, count(*)
FROM posts
WHERE blog_id = $1 AND published IS NOT NULL AND published <= now()
GROUP BY 1, 2
ORDER BY 1 DESC, 2 DESC`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ArchiveCountRow
	for rows.Next() {
		var i ArchiveCountRow
		if err := rows.Scan(&i.Year, &i.Month, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
