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
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
)

// SitemapItem is one node of a site's navigation tree. MenuTitle is the
// navigation title when set, the page title otherwise.
type SitemapItem struct {
	ID        uuid.UUID      `json:"id"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	Title     string         `json:"title"`
	MenuTitle string         `json:"menu_title"`
	Slug      string         `json:"slug"`
	Permalink string         `json:"permalink"`
	SortOrder int32          `json:"sort_order"`
	IsHidden  bool           `json:"is_hidden"`
	Published *time.Time     `json:"published,omitempty"`
	Items     []*SitemapItem `json:"items,omitempty"`
}

// Sitemap builds and caches the per-site navigation structure. The
// whole tree is cached as one entry; any structural page change drops
// it and the next read rebuilds from storage.
type Sitemap struct {
	db    *cmsdb.Store
	cache *cache.TwoLevel
}

func NewSitemap(db *cmsdb.Store, c *cache.TwoLevel) *Sitemap {
	return &Sitemap{db: db, cache: c}
}

// Get returns the site's page tree. With onlyPublished set, pages
// without a publish date in the past are filtered out together with
// their subtrees.
func (r *Sitemap) Get(ctx context.Context, siteID uuid.UUID, onlyPublished bool) ([]*SitemapItem, error) {
	var tree []*SitemapItem
	if !r.cache.Get(ctx, cache.SitemapKey(siteID), &tree) {
		pages, err := r.db.ListPagesBySite(ctx, siteID)
		if err != nil {
			return nil, err
		}
		tree = buildSitemap(pages)
		if err := r.cache.Set(ctx, cache.SitemapKey(siteID), tree); err != nil {
			return nil, err
		}
	}

	if onlyPublished {
		tree = filterPublished(tree, time.Now())
	}
	return tree, nil
}

// Invalidate drops the site's cached tree.
func (r *Sitemap) Invalidate(ctx context.Context, siteID uuid.UUID) {
	r.cache.Remove(ctx, cache.SitemapKey(siteID))
}

// buildSitemap assembles the page rows into a tree ordered by sort
// order at every level. Permalinks are the slash-joined slug chain from
// the root.
func buildSitemap(pages []cmsdb.PageRow) []*SitemapItem {
	items := make(map[uuid.UUID]*SitemapItem, len(pages))
	for _, p := range pages {
		menuTitle := p.NavigationTitle
		if menuTitle == "" {
			menuTitle = p.Title
		}
		items[p.ID] = &SitemapItem{
			ID:        p.ID,
			ParentID:  p.ParentID,
			Title:     p.Title,
			MenuTitle: menuTitle,
			Slug:      p.Slug,
			SortOrder: p.SortOrder,
			IsHidden:  p.IsHidden,
			Published: p.Published,
		}
	}

	var roots []*SitemapItem
	for _, p := range pages {
		item := items[p.ID]
		if p.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		if parent, ok := items[*p.ParentID]; ok {
			parent.Items = append(parent.Items, item)
		}
	}

	sortTree(roots)
	for _, root := range roots {
		setPermalinks(root, "")
	}
	return roots
}

func sortTree(items []*SitemapItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	for _, item := range items {
		sortTree(item.Items)
	}
}

func setPermalinks(item *SitemapItem, prefix string) {
	item.Permalink = prefix + "/" + item.Slug
	for _, child := range item.Items {
		setPermalinks(child, item.Permalink)
	}
}

// filterPublished drops unpublished nodes and their subtrees.
func filterPublished(items []*SitemapItem, now time.Time) []*SitemapItem {
	out := make([]*SitemapItem, 0, len(items))
	for _, item := range items {
		if item.Published == nil || item.Published.After(now) {
			continue
		}
		kept := *item
		kept.Items = filterPublished(item.Items, now)
		out = append(out, &kept)
	}
	return out
}
