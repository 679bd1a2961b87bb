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

const aliasColumns = `id, site_id, alias_url, redirect_url, created`

func scanAlias(row interface{ Scan(dest ...any) error }) (AliasRow, error) {
	var i AliasRow
	err := row.Scan(&i.ID, &i.SiteID, &i.AliasURL, &i.RedirectURL, &i.Created)
	return i, err
}

func (q *Queries) GetAlias(ctx context.Context, id uuid.UUID) (AliasRow, error) {
	return scanAlias(q.db.QueryRow(ctx, `
SELECT `+aliasColumns+` FROM aliases WHERE id = $1`, id))
}

func (q *Queries) GetAliasByURL(ctx context.Context, siteID uuid.UUID, aliasURL string) (AliasRow, error) {
	return scanAlias(q.db.QueryRow(ctx, `
SELECT `+aliasColumns+` FROM aliases WHERE site_id = $1 AND alias_url = $2`, siteID, aliasURL))
}

func (q *Queries) ListAliases(ctx context.Context, siteID uuid.UUID) ([]AliasRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+aliasColumns+` FROM aliases WHERE site_id = $1 ORDER BY alias_url`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AliasRow
	for rows.Next() {
		i, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertAlias = `
INSERT INTO aliases (id, site_id, alias_url, redirect_url, created)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE
SET alias_url = EXCLUDED.alias_url,
    redirect_url = EXCLUDED.redirect_url`

func (q *Queries) UpsertAlias(ctx context.Context, a AliasRow) error {
	_, err := q.db.Exec(ctx, upsertAlias, a.ID, a.SiteID, a.AliasURL, a.RedirectURL)
	return err
}

func (q *Queries) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM aliases WHERE id = $1`, id)
	return err
}
