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

const siteColumns = `id, internal_id, title, hostnames, is_default, site_type_id, culture, created, last_modified`

func scanSite(row interface{ Scan(dest ...any) error }) (SiteRow, error) {
	var i SiteRow
	err := row.Scan(&i.ID, &i.InternalID, &i.Title, &i.Hostnames, &i.IsDefault,
		&i.SiteTypeID, &i.Culture, &i.Created, &i.LastModified)
	return i, err
}

func (q *Queries) GetSite(ctx context.Context, id uuid.UUID) (SiteRow, error) {
	return scanSite(q.db.QueryRow(ctx, `
SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
}

func (q *Queries) GetSiteByInternalID(ctx context.Context, internalID string) (SiteRow, error) {
	return scanSite(q.db.QueryRow(ctx, `
SELECT `+siteColumns+` FROM sites WHERE internal_id = $1`, internalID))
}

func (q *Queries) GetDefaultSite(ctx context.Context) (SiteRow, error) {
	return scanSite(q.db.QueryRow(ctx, `
SELECT `+siteColumns+` FROM sites WHERE is_default LIMIT 1`))
}

func (q *Queries) ListSites(ctx context.Context) ([]SiteRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+siteColumns+` FROM sites ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SiteRow
	for rows.Next() {
		i, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertSite = `
INSERT INTO sites (id, internal_id, title, hostnames, is_default, site_type_id, culture, created, last_modified)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE
SET internal_id = EXCLUDED.internal_id,
    title = EXCLUDED.title,
    hostnames = EXCLUDED.hostnames,
    is_default = EXCLUDED.is_default,
    site_type_id = EXCLUDED.site_type_id,
    culture = EXCLUDED.culture,
    last_modified = now()`

func (q *Queries) UpsertSite(ctx context.Context, s SiteRow) error {
	_, err := q.db.Exec(ctx, upsertSite, s.ID, s.InternalID, s.Title, s.Hostnames,
		s.IsDefault, s.SiteTypeID, s.Culture)
	return err
}

func (q *Queries) DeleteSite(ctx context.Context, id uuid.UUID) error {
	if err := q.deleteFieldRows(ctx, siteFields, id); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	return err
}
