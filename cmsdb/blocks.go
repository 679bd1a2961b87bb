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

const blockColumns = `id, clr_type, is_reusable, title, created, last_modified`

func scanBlock(row interface{ Scan(dest ...any) error }) (BlockRow, error) {
	var i BlockRow
	err := row.Scan(&i.ID, &i.TypeID, &i.IsReusable, &i.Title, &i.Created, &i.LastModified)
	return i, err
}

func (q *Queries) GetBlock(ctx context.Context, id uuid.UUID) (BlockRow, error) {
	return scanBlock(q.db.QueryRow(ctx, `
SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
}

// ListReusableBlocks returns the blocks exposed in the editor's
// shared-block picker.
func (q *Queries) ListReusableBlocks(ctx context.Context) ([]BlockRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+blockColumns+` FROM blocks WHERE is_reusable ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []BlockRow
	for rows.Next() {
		i, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertBlock = `
INSERT INTO blocks (id, clr_type, is_reusable, title, created, last_modified)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE
SET clr_type = EXCLUDED.clr_type,
    is_reusable = EXCLUDED.is_reusable,
    title = EXCLUDED.title,
    last_modified = now()`

func (q *Queries) UpsertBlock(ctx context.Context, b BlockRow) error {
	_, err := q.db.Exec(ctx, upsertBlock, b.ID, b.TypeID, b.IsReusable, b.Title)
	return err
}

func (q *Queries) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if err := q.deleteFieldRows(ctx, blockFields, id); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	return err
}
