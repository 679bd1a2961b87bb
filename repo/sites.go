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
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
	"github.com/coralcms/coral/content"
	"github.com/coralcms/coral/content/mapping"
	"github.com/coralcms/coral/typeregistry"
)

// Sites is the site repository. A site optionally carries global
// content of its own (header, footer, contact data) when its type id
// is set; that content is mapped through the same engine as pages.
type Sites struct {
	db     *cmsdb.Store
	types  *typeregistry.Registry
	mapper *mapping.Engine
	cache  *cache.TwoLevel
}

func NewSites(db *cmsdb.Store, types *typeregistry.Registry, mapper *mapping.Engine, c *cache.TwoLevel) *Sites {
	return &Sites{db: db, types: types, mapper: mapper, cache: c}
}

func (r *Sites) GetByID(ctx context.Context, id uuid.UUID) (cmsdb.SiteRow, error) {
	site, err := r.db.GetSite(ctx, id)
	return site, notFound(err)
}

// GetByInternalID resolves a site by its stable internal id, the form
// host configuration references sites by.
func (r *Sites) GetByInternalID(ctx context.Context, internalID string) (cmsdb.SiteRow, error) {
	var site cmsdb.SiteRow
	if r.cache.Get(ctx, cache.SiteInternalIDKey(internalID), &site) {
		return site, nil
	}

	site, err := r.db.GetSiteByInternalID(ctx, internalID)
	if err != nil {
		return cmsdb.SiteRow{}, notFound(err)
	}
	if err := r.cache.Set(ctx, cache.SiteInternalIDKey(internalID), site); err != nil {
		return cmsdb.SiteRow{}, err
	}
	return site, nil
}

func (r *Sites) GetDefault(ctx context.Context) (cmsdb.SiteRow, error) {
	site, err := r.db.GetDefaultSite(ctx)
	return site, notFound(err)
}

func (r *Sites) List(ctx context.Context) ([]cmsdb.SiteRow, error) {
	return r.db.ListSites(ctx)
}

// Save persists the site. An empty title is a configuration error.
func (r *Sites) Save(ctx context.Context, site *cmsdb.SiteRow) error {
	if strings.TrimSpace(site.Title) == "" {
		return ErrEmptyTitle
	}
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if site.InternalID == "" {
		site.InternalID = Slugify(site.Title)
	}

	prev, err := r.db.GetSite(ctx, site.ID)
	hadPrev := err == nil
	if err != nil && notFound(err) != ErrNotFound {
		return err
	}

	if err := r.db.UpsertSite(ctx, *site); err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.SiteInternalIDKey(site.InternalID))
	if hadPrev && prev.InternalID != site.InternalID {
		r.cache.Remove(ctx, cache.SiteInternalIDKey(prev.InternalID))
	}
	return nil
}

// GetContent loads the site's global content. Sites without a site
// type have no content and return nil.
func (r *Sites) GetContent(ctx context.Context, siteID uuid.UUID) (*content.DynamicModel, error) {
	site, err := r.db.GetSite(ctx, siteID)
	if err != nil {
		return nil, notFound(err)
	}
	if site.SiteTypeID == "" {
		return nil, nil
	}

	def, err := r.types.GetByID(ctx, site.SiteTypeID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("site %s: %w: %q", siteID, ErrUnknownType, site.SiteTypeID)
	}

	rows, err := r.db.ListSiteFields(ctx, siteID)
	if err != nil {
		return nil, err
	}

	model := content.NewDynamicModel(siteID, site.SiteTypeID)
	if err := r.mapper.Load(def, rows, model, nil); err != nil {
		return nil, err
	}
	return model, nil
}

// SaveContent persists the site's global content rows.
func (r *Sites) SaveContent(ctx context.Context, siteID uuid.UUID, model *content.DynamicModel) error {
	site, err := r.db.GetSite(ctx, siteID)
	if err != nil {
		return notFound(err)
	}
	if site.SiteTypeID == "" {
		return fmt.Errorf("site %s has no site type, content cannot be saved", siteID)
	}

	def, err := r.types.GetByID(ctx, site.SiteTypeID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("site %s: %w: %q", siteID, ErrUnknownType, site.SiteTypeID)
	}

	existing, err := r.db.ListSiteFields(ctx, siteID)
	if err != nil {
		return err
	}
	result, err := r.mapper.Save(def, siteID, model, existing)
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		for _, row := range result.Rows {
			if err := tx.UpsertSiteField(ctx, row); err != nil {
				return err
			}
		}
		return tx.PruneSiteFields(ctx, siteID, result.Kept)
	})
}

func (r *Sites) Delete(ctx context.Context, id uuid.UUID) error {
	site, err := r.db.GetSite(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := r.db.DeleteSite(ctx, id); err != nil {
		return err
	}
	r.cache.Remove(ctx, cache.SiteInternalIDKey(site.InternalID))
	r.cache.Remove(ctx, cache.SitemapKey(id))
	return nil
}
