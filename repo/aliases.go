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
	"strings"

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
)

// Aliases is the redirect alias repository. Lookups by URL are the hot
// path (every unresolved request checks for an alias), so those are
// cached under the composite site+URL key.
type Aliases struct {
	db    *cmsdb.Store
	cache *cache.TwoLevel
}

func NewAliases(db *cmsdb.Store, c *cache.TwoLevel) *Aliases {
	return &Aliases{db: db, cache: c}
}

// normalizeAliasURL gives the source URL a leading slash.
func normalizeAliasURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	return "/" + strings.TrimLeft(url, "/")
}

// normalizeRedirectURL gives relative targets a leading slash and
// leaves absolute http(s) targets untouched.
func normalizeRedirectURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "/" + strings.TrimLeft(url, "/")
}

func (r *Aliases) GetByID(ctx context.Context, id uuid.UUID) (cmsdb.AliasRow, error) {
	alias, err := r.db.GetAlias(ctx, id)
	return alias, notFound(err)
}

// GetByURL resolves a request path to its alias for one site.
func (r *Aliases) GetByURL(ctx context.Context, siteID uuid.UUID, aliasURL string) (cmsdb.AliasRow, error) {
	aliasURL = normalizeAliasURL(aliasURL)

	var alias cmsdb.AliasRow
	if r.cache.Get(ctx, cache.AliasKey(siteID, aliasURL), &alias) {
		return alias, nil
	}

	alias, err := r.db.GetAliasByURL(ctx, siteID, aliasURL)
	if err != nil {
		return cmsdb.AliasRow{}, notFound(err)
	}
	if err := r.cache.Set(ctx, cache.AliasKey(siteID, aliasURL), alias); err != nil {
		return cmsdb.AliasRow{}, err
	}
	return alias, nil
}

func (r *Aliases) List(ctx context.Context, siteID uuid.UUID) ([]cmsdb.AliasRow, error) {
	return r.db.ListAliases(ctx, siteID)
}

// Save normalizes both URLs and persists the alias. Empty URLs are
// configuration errors and rejected before any write.
func (r *Aliases) Save(ctx context.Context, alias *cmsdb.AliasRow) error {
	alias.AliasURL = normalizeAliasURL(alias.AliasURL)
	alias.RedirectURL = normalizeRedirectURL(alias.RedirectURL)
	if alias.AliasURL == "" {
		return ErrEmptyAliasURL
	}
	if alias.RedirectURL == "" {
		return ErrEmptyRedirectURL
	}
	if alias.ID == uuid.Nil {
		alias.ID = uuid.New()
	}

	prev, err := r.db.GetAlias(ctx, alias.ID)
	hadPrev := err == nil
	if err != nil && notFound(err) != ErrNotFound {
		return err
	}

	if err := r.db.UpsertAlias(ctx, *alias); err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.AliasKey(alias.SiteID, alias.AliasURL))
	if hadPrev && prev.AliasURL != alias.AliasURL {
		r.cache.Remove(ctx, cache.AliasKey(prev.SiteID, prev.AliasURL))
	}
	return nil
}

func (r *Aliases) Delete(ctx context.Context, id uuid.UUID) error {
	alias, err := r.db.GetAlias(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := r.db.DeleteAlias(ctx, id); err != nil {
		return err
	}
	r.cache.Remove(ctx, cache.AliasKey(alias.SiteID, alias.AliasURL))
	return nil
}
