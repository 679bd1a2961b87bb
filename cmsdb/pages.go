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

const pageColumns = `id, site_id, parent_id, sort_order, page_type_id, title,
navigation_title, slug, is_hidden, route, original_page_id, published, created, last_modified`

func scanPage(row interface{ Scan(dest ...any) error }) (PageRow, error) {
	var i PageRow
	err := row.Scan(&i.ID, &i.SiteID, &i.ParentID, &i.SortOrder, &i.PageTypeID, &i.Title,
		&i.NavigationTitle, &i.Slug, &i.IsHidden, &i.Route, &i.OriginalID, &i.Published,
		&i.Created, &i.LastModified)
	return i, err
}

func (q *Queries) GetPage(ctx context.Context, id uuid.UUID) (PageRow, error) {
	return scanPage(q.db.QueryRow(ctx, `
SELECT `+pageColumns+` FROM pages WHERE id = $1`, id))
}

func (q *Queries) GetStartpage(ctx context.Context, siteID uuid.UUID) (PageRow, error) {
	return scanPage(q.db.QueryRow(ctx, `
SELECT `+pageColumns+` FROM pages
WHERE site_id = $1 AND parent_id IS NULL AND sort_order = 0`, siteID))
}

func (q *Queries) GetPageBySlug(ctx context.Context, siteID uuid.UUID, slug string) (PageRow, error) {
	return scanPage(q.db.QueryRow(ctx, `
SELECT `+pageColumns+` FROM pages WHERE site_id = $1 AND slug = $2`, siteID, slug))
}

func (q *Queries) collectPages(ctx context.Context, sql string, args ...any) ([]PageRow, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PageRow
	for rows.Next() {
		i, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// ListSiblings returns the children of one parent (nil for roots) in
// sort order, which is the working set for reorder planning.
func (q *Queries) ListSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]PageRow, error) {
	if parentID == nil {
		return q.collectPages(ctx, `
SELECT `+pageColumns+` FROM pages
WHERE site_id = $1 AND parent_id IS NULL
ORDER BY sort_order`, siteID)
	}
	return q.collectPages(ctx, `
SELECT `+pageColumns+` FROM pages
WHERE site_id = $1 AND parent_id = $2
ORDER BY sort_order`, siteID, *parentID)
}

// ListPagesBySite returns every page of a site ordered for sitemap
// composition.
func (q *Queries) ListPagesBySite(ctx context.Context, siteID uuid.UUID) ([]PageRow, error) {
	return q.collectPages(ctx, `
SELECT `+pageColumns+` FROM pages
WHERE site_id = $1
ORDER BY parent_id NULLS FIRST, sort_order`, siteID)
}

const upsertPage = `
INSERT INTO pages (id, site_id, parent_id, sort_order, page_type_id, title,
  navigation_title, slug, is_hidden, route, original_page_id, published, created, last_modified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
ON CONFLICT (id) DO UPDATE
SET parent_id = EXCLUDED.parent_id,
    sort_order = EXCLUDED.sort_order,
    page_type_id = EXCLUDED.page_type_id,
    title = EXCLUDED.title,
    navigation_title = EXCLUDED.navigation_title,
    slug = EXCLUDED.slug,
    is_hidden = EXCLUDED.is_hidden,
    route = EXCLUDED.route,
    original_page_id = EXCLUDED.original_page_id,
    published = EXCLUDED.published,
    last_modified = now()`

func (q *Queries) UpsertPage(ctx context.Context, p PageRow) error {
	_, err := q.db.Exec(ctx, upsertPage, p.ID, p.SiteID, p.ParentID, p.SortOrder, p.PageTypeID,
		p.Title, p.NavigationTitle, p.Slug, p.IsHidden, p.Route, p.OriginalID, p.Published)
	return err
}

const updatePageSortOrder = `
UPDATE pages SET sort_order = $2, last_modified = now() WHERE id = $1`

func (q *Queries) UpdatePageSortOrder(ctx context.Context, id uuid.UUID, sortOrder int32) error {
	_, err := q.db.Exec(ctx, updatePageSortOrder, id, sortOrder)
	return err
}

const updatePagePosition = `
UPDATE pages SET parent_id = $2, sort_order = $3, last_modified = now() WHERE id = $1`

func (q *Queries) UpdatePagePosition(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, sortOrder int32) error {
	_, err := q.db.Exec(ctx, updatePagePosition, id, parentID, sortOrder)
	return err
}

func (q *Queries) DeletePage(ctx context.Context, id uuid.UUID) error {
	if err := q.deleteFieldRows(ctx, pageFields, id); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	return err
}

const countPageChildren = `
SELECT count(*) FROM pages WHERE parent_id = $1`

func (q *Queries) CountPageChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countPageChildren, id).Scan(&n)
	return n, err
}

const countPageCopies = `
SELECT count(*) FROM pages WHERE original_page_id = $1`

func (q *Queries) CountPageCopies(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countPageCopies, id).Scan(&n)
	return n, err
}
