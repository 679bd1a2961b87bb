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

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
)

// Archive serves the per-blog month buckets of published posts that
// archive navigation renders. Counts are aggregated in the database and
// cached per blog; any post save or delete against the blog drops the
// entry.
type Archive struct {
	db    *cmsdb.Store
	cache *cache.TwoLevel
}

func NewArchive(db *cmsdb.Store, c *cache.TwoLevel) *Archive {
	return &Archive{db: db, cache: c}
}

// Counts returns the blog's post counts grouped by year and month,
// newest first.
func (r *Archive) Counts(ctx context.Context, blogID uuid.UUID) ([]cmsdb.ArchiveCountRow, error) {
	var counts []cmsdb.ArchiveCountRow
	if r.cache.Get(ctx, cache.ArchiveKey(blogID), &counts) {
		return counts, nil
	}

	counts, err := r.db.PostArchiveCounts(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cache.ArchiveKey(blogID), counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Invalidate drops the blog's cached counts.
func (r *Archive) Invalidate(ctx context.Context, blogID uuid.UUID) {
	r.cache.Remove(ctx, cache.ArchiveKey(blogID))
}
