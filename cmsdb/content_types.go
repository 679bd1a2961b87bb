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
)

const listContentTypes = `
SELECT id, body, created, last_modified
FROM content_types
ORDER BY id`

func (q *Queries) ListContentTypes(ctx context.Context) ([]ContentTypeRow, error) {
	rows, err := q.db.Query(ctx, listContentTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ContentTypeRow
	for rows.Next() {
		var i ContentTypeRow
		if err := rows.Scan(&i.ID, &i.Body, &i.Created, &i.LastModified); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getContentType = `
SELECT id, body, created, last_modified
FROM content_types
WHERE id = $1`

func (q *Queries) GetContentType(ctx context.Context, id string) (ContentTypeRow, error) {
	var i ContentTypeRow
	err := q.db.QueryRow(ctx, getContentType, id).
		Scan(&i.ID, &i.Body, &i.Created, &i.LastModified)
	return i, err
}

const upsertContentType = `
INSERT INTO content_types (id, body, created, last_modified)
VALUES ($1, $2, now(), now())
ON CONFLICT (id) DO UPDATE
SET body = EXCLUDED.body, last_modified = now()`

type UpsertContentTypeParams struct {
	ID   string
	Body []byte
}

func (q *Queries) UpsertContentType(ctx context.Context, arg UpsertContentTypeParams) error {
	_, err := q.db.Exec(ctx, upsertContentType, arg.ID, arg.Body)
	return err
}

const deleteContentType = `
DELETE FROM content_types WHERE id = $1`

func (q *Queries) DeleteContentType(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteContentType, id)
	return err
}
