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
	"fmt"

	"github.com/google/uuid"

	"github.com/coralcms/coral/content"
)

// The four *_fields tables share one shape, so the row queries are
// written once per statement with the table and FK column interpolated
// from this fixed set. Values never come from callers.
type fieldTable struct {
	table string
	fkCol string
}

var (
	pageFields  = fieldTable{table: "page_fields", fkCol: "page_id"}
	postFields  = fieldTable{table: "post_fields", fkCol: "post_id"}
	blockFields = fieldTable{table: "block_fields", fkCol: "block_id"}
	siteFields  = fieldTable{table: "site_fields", fkCol: "site_id"}
)

func (q *Queries) listFieldRows(ctx context.Context, ft fieldTable, contentID uuid.UUID) ([]content.FieldRow, error) {
	sql := fmt.Sprintf(`
SELECT id, %s, region_id, field_id, sort_order, clr_type, value
FROM %s
WHERE %s = $1
ORDER BY region_id, field_id, sort_order`, ft.fkCol, ft.table, ft.fkCol)

	rows, err := q.db.Query(ctx, sql, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []content.FieldRow
	for rows.Next() {
		var i content.FieldRow
		if err := rows.Scan(&i.ID, &i.ContentID, &i.RegionID, &i.FieldID, &i.SortOrder, &i.CLRType, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) upsertFieldRow(ctx context.Context, ft fieldTable, row content.FieldRow) error {
	sql := fmt.Sprintf(`
INSERT INTO %s (id, %s, region_id, field_id, sort_order, clr_type, value)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET region_id = EXCLUDED.region_id,
    field_id = EXCLUDED.field_id,
    sort_order = EXCLUDED.sort_order,
    clr_type = EXCLUDED.clr_type,
    value = EXCLUDED.value`, ft.table, ft.fkCol)

	_, err := q.db.Exec(ctx, sql, row.ID, row.ContentID, row.RegionID, row.FieldID, row.SortOrder, row.CLRType, row.Value)
	return err
}

// pruneFieldRows deletes the content's rows that the mapping engine
// did not keep on the last save.
func (q *Queries) pruneFieldRows(ctx context.Context, ft fieldTable, contentID uuid.UUID, kept []uuid.UUID) error {
	if len(kept) == 0 {
		return q.deleteFieldRows(ctx, ft, contentID)
	}
	sql := fmt.Sprintf(`
DELETE FROM %s WHERE %s = $1 AND NOT (id = ANY($2))`, ft.table, ft.fkCol)

	_, err := q.db.Exec(ctx, sql, contentID, kept)
	return err
}

func (q *Queries) deleteFieldRows(ctx context.Context, ft fieldTable, contentID uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, ft.table, ft.fkCol)
	_, err := q.db.Exec(ctx, sql, contentID)
	return err
}

func (q *Queries) ListPageFields(ctx context.Context, pageID uuid.UUID) ([]content.FieldRow, error) {
	return q.listFieldRows(ctx, pageFields, pageID)
}

func (q *Queries) UpsertPageField(ctx context.Context, row content.FieldRow) error {
	return q.upsertFieldRow(ctx, pageFields, row)
}

func (q *Queries) PrunePageFields(ctx context.Context, pageID uuid.UUID, kept []uuid.UUID) error {
	return q.pruneFieldRows(ctx, pageFields, pageID, kept)
}

func (q *Queries) ListPostFields(ctx context.Context, postID uuid.UUID) ([]content.FieldRow, error) {
	return q.listFieldRows(ctx, postFields, postID)
}

func (q *Queries) UpsertPostField(ctx context.Context, row content.FieldRow) error {
	return q.upsertFieldRow(ctx, postFields, row)
}

func (q *Queries) PrunePostFields(ctx context.Context, postID uuid.UUID, kept []uuid.UUID) error {
	return q.pruneFieldRows(ctx, postFields, postID, kept)
}

func (q *Queries) ListBlockFields(ctx context.Context, blockID uuid.UUID) ([]content.FieldRow, error) {
	return q.listFieldRows(ctx, blockFields, blockID)
}

func (q *Queries) UpsertBlockField(ctx context.Context, row content.FieldRow) error {
	return q.upsertFieldRow(ctx, blockFields, row)
}

func (q *Queries) PruneBlockFields(ctx context.Context, blockID uuid.UUID, kept []uuid.UUID) error {
	return q.pruneFieldRows(ctx, blockFields, blockID, kept)
}

func (q *Queries) ListSiteFields(ctx context.Context, siteID uuid.UUID) ([]content.FieldRow, error) {
	return q.listFieldRows(ctx, siteFields, siteID)
}

func (q *Queries) UpsertSiteField(ctx context.Context, row content.FieldRow) error {
	return q.upsertFieldRow(ctx, siteFields, row)
}

func (q *Queries) PruneSiteFields(ctx context.Context, siteID uuid.UUID, kept []uuid.UUID) error {
	return q.pruneFieldRows(ctx, siteFields, siteID, kept)
}
