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

const paramColumns = `id, key, value, description, created, last_modified`

func scanParam(row interface{ Scan(dest ...any) error }) (ParamRow, error) {
	var i ParamRow
	err := row.Scan(&i.ID, &i.Key, &i.Value, &i.Description, &i.Created, &i.LastModified)
	return i, err
}

func (q *Queries) GetParam(ctx context.Context, id uuid.UUID) (ParamRow, error) {
	return scanParam(q.db.QueryRow(ctx, `
SELECT `+paramColumns+` FROM params WHERE id = $1`, id))
}

func (q *Queries) GetParamByKey(ctx context.Context, key string) (ParamRow, error) {
	return scanParam(q.db.QueryRow(ctx, `
SELECT `+paramColumns+` FROM params WHERE key = $1`, key))
}

func (q *Queries) ListParams(ctx context.Context) ([]ParamRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+paramColumns+` FROM params ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ParamRow
	for rows.Next() {
		i, err := scanParam(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertParam = `
INSERT INTO params (id, key, value, description, created, last_modified)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE
SET key = EXCLUDED.key,
    value = EXCLUDED.value,
    description = EXCLUDED.description,
    last_modified = now()`

func (q *Queries) UpsertParam(ctx context.Context, p ParamRow) error {
	_, err := q.db.Exec(ctx, upsertParam, p.ID, p.Key, p.Value, p.Description)
	return err
}

func (q *Queries) DeleteParam(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM params WHERE id = $1`, id)
	return err
}
