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

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
	"github.com/coralcms/coral/content"
	"github.com/coralcms/coral/content/mapping"
	"github.com/coralcms/coral/typeregistry"
)

// Page is a page's meta row plus its mapped regions.
type Page struct {
	Meta    cmsdb.PageRow
	Content *content.DynamicModel
}

// pageEntry is the cache representation: the meta row and the raw field
// rows. Rows rather than the mapped model go in the cache so that a
// cache read runs through the mapping engine with full type fidelity;
// JSON round-tripping a mapped model would degrade int64, time and
// uuid values to their JSON shapes.
type pageEntry struct {
	Meta   cmsdb.PageRow      `json:"meta"`
	Fields []content.FieldRow `json:"fields"`
}

// Pages is the page repository. Reads go local cache, Redis, database,
// in that order. Writes run in one transaction together with the
// sibling sort order deltas they cause, then invalidate the touched
// cache entries.
type Pages struct {
	db     *cmsdb.Store
	types  *typeregistry.Registry
	mapper *mapping.Engine
	cache  *cache.TwoLevel
}

func NewPages(db *cmsdb.Store, types *typeregistry.Registry, mapper *mapping.Engine, c *cache.TwoLevel) *Pages {
	return &Pages{db: db, types: types, mapper: mapper, cache: c}
}

// GetByID loads one page with its regions mapped.
func (r *Pages) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	var entry pageEntry
	if !r.cache.Get(ctx, cache.EntityKey(id), &entry) {
		meta, err := r.db.GetPage(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		rows, err := r.db.ListPageFields(ctx, id)
		if err != nil {
			return nil, err
		}
		entry = pageEntry{Meta: meta, Fields: rows}
		if err := r.cache.Set(ctx, cache.EntityKey(id), entry); err != nil {
			return nil, err
		}
	}
	return r.mapPage(ctx, entry)
}

// GetBySlug resolves a slug through the secondary cache index and then
// loads the page by id.
func (r *Pages) GetBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error) {
	var idStr string
	if r.cache.Get(ctx, cache.PageSlugKey(siteID, slug), &idStr) {
		if id, err := uuid.Parse(idStr); err == nil {
			return r.GetByID(ctx, id)
		}
	}

	meta, err := r.db.GetPageBySlug(ctx, siteID, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.cache.Set(ctx, cache.PageSlugKey(siteID, slug), meta.ID.String()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, meta.ID)
}

// GetStartpage loads the site's root page at sort order zero.
func (r *Pages) GetStartpage(ctx context.Context, siteID uuid.UUID) (*Page, error) {
	meta, err := r.db.GetStartpage(ctx, siteID)
	if err != nil {
		return nil, notFound(err)
	}
	return r.GetByID(ctx, meta.ID)
}

func (r *Pages) mapPage(ctx context.Context, entry pageEntry) (*Page, error) {
	def, err := r.types.GetByID(ctx, entry.Meta.PageTypeID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("page %s: %w: %q", entry.Meta.ID, ErrUnknownType, entry.Meta.PageTypeID)
	}

	model := content.NewDynamicModel(entry.Meta.ID, entry.Meta.PageTypeID)
	if err := r.mapper.Load(def, entry.Fields, model, nil); err != nil {
		return nil, err
	}
	return &Page{Meta: entry.Meta, Content: model}, nil
}

// Save persists the page and its field rows. An insert opens a gap
// among its new siblings; an update whose parent or sort order changed
// is also a move. Returns the ids of siblings whose sort order changed.
func (r *Pages) Save(ctx context.Context, p *Page) ([]uuid.UUID, error) {
	def, err := r.types.GetByID(ctx, p.Meta.PageTypeID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Meta.PageTypeID)
	}
	if err := r.checkCopyRules(ctx, p); err != nil {
		return nil, err
	}

	prev, err := r.db.GetPage(ctx, p.Meta.ID)
	isNew := notFound(err) == ErrNotFound
	if err != nil && !isNew {
		return nil, err
	}

	changes, err := r.planPagePosition(ctx, p, prev, isNew)
	if err != nil {
		return nil, err
	}

	existing, err := r.db.ListPageFields(ctx, p.Meta.ID)
	if err != nil {
		return nil, err
	}
	result, err := r.mapper.Save(def, p.Meta.ID, p.Content, existing)
	if err != nil {
		return nil, err
	}

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		if err := tx.UpsertPage(ctx, p.Meta); err != nil {
			return err
		}
		for id, so := range changes {
			if err := tx.UpdatePageSortOrder(ctx, id, so); err != nil {
				return err
			}
		}
		for _, row := range result.Rows {
			if err := tx.UpsertPageField(ctx, row); err != nil {
				return err
			}
		}
		return tx.PrunePageFields(ctx, p.Meta.ID, result.Kept)
	})
	if err != nil {
		return nil, err
	}

	r.cache.Remove(ctx, cache.EntityKey(p.Meta.ID))
	r.cache.Remove(ctx, cache.PageSlugKey(p.Meta.SiteID, p.Meta.Slug))
	if !isNew && prev.Slug != p.Meta.Slug {
		r.cache.Remove(ctx, cache.PageSlugKey(prev.SiteID, prev.Slug))
	}
	return r.finishStructuralChange(ctx, p.Meta.SiteID, changes), nil
}

// checkCopyRules enforces the constraints on copied pages: the original
// must exist, must not itself be a copy, and the copy cannot change
// content type.
func (r *Pages) checkCopyRules(ctx context.Context, p *Page) error {
	if p.Meta.OriginalID == nil {
		return nil
	}
	original, err := r.db.GetPage(ctx, *p.Meta.OriginalID)
	if err != nil {
		return fmt.Errorf("original page %s: %w", *p.Meta.OriginalID, notFound(err))
	}
	if original.OriginalID != nil {
		return ErrCopyOfCopy
	}
	if original.PageTypeID != p.Meta.PageTypeID {
		return ErrCopyTypeMismatch
	}
	return nil
}

// planPagePosition computes the sibling sort order deltas a save
// implies and clamps the page's own sort order to a valid slot.
func (r *Pages) planPagePosition(ctx context.Context, p *Page, prev cmsdb.PageRow, isNew bool) (map[uuid.UUID]int32, error) {
	newSibs, err := r.siblings(ctx, p.Meta.SiteID, p.Meta.ParentID)
	if err != nil {
		return nil, err
	}
	p.Meta.SortOrder = clampPosition(newSibs, p.Meta.ID, p.Meta.SortOrder)

	if isNew {
		return planInsertion(newSibs, p.Meta.ID, p.Meta.SortOrder), nil
	}

	sameParent := uuidPtrEqual(prev.ParentID, p.Meta.ParentID)
	if sameParent && prev.SortOrder == p.Meta.SortOrder {
		return nil, nil
	}

	oldSibs := newSibs
	if !sameParent {
		oldSibs, err = r.siblings(ctx, prev.SiteID, prev.ParentID)
		if err != nil {
			return nil, err
		}
	}
	oldPos := prev.SortOrder
	return planReorder(oldSibs, newSibs, p.Meta.ID, &oldPos, p.Meta.SortOrder, sameParent), nil
}

// Move repositions a page under a new parent and sort order without
// touching its content. Returns the ids of siblings whose sort order
// changed; a move to the current position is a no-op.
func (r *Pages) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, sortOrder int32) ([]uuid.UUID, error) {
	page, err := r.db.GetPage(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	newSibs, err := r.siblings(ctx, page.SiteID, parentID)
	if err != nil {
		return nil, err
	}
	sortOrder = clampPosition(newSibs, id, sortOrder)

	sameParent := uuidPtrEqual(page.ParentID, parentID)
	if sameParent && page.SortOrder == sortOrder {
		return nil, nil
	}

	oldSibs := newSibs
	if !sameParent {
		oldSibs, err = r.siblings(ctx, page.SiteID, page.ParentID)
		if err != nil {
			return nil, err
		}
	}
	oldPos := page.SortOrder
	changes := planReorder(oldSibs, newSibs, id, &oldPos, sortOrder, sameParent)

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		if err := tx.UpdatePagePosition(ctx, id, parentID, sortOrder); err != nil {
			return err
		}
		for sibID, so := range changes {
			if err := tx.UpdatePageSortOrder(ctx, sibID, so); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Remove(ctx, cache.EntityKey(id))
	return r.finishStructuralChange(ctx, page.SiteID, changes), nil
}

// Delete removes a page, its field rows, and closes the sort order gap
// it leaves. Pages with children or copies cannot be deleted.
func (r *Pages) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	page, err := r.db.GetPage(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	children, err := r.db.CountPageChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, ErrHasChildren
	}
	copies, err := r.db.CountPageCopies(ctx, id)
	if err != nil {
		return nil, err
	}
	if copies > 0 {
		return nil, ErrHasCopies
	}

	sibs, err := r.siblings(ctx, page.SiteID, page.ParentID)
	if err != nil {
		return nil, err
	}
	changes := planRemoval(sibs, id, page.SortOrder)

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		for sibID, so := range changes {
			if err := tx.UpdatePageSortOrder(ctx, sibID, so); err != nil {
				return err
			}
		}
		return tx.DeletePage(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	r.cache.Remove(ctx, cache.EntityKey(id))
	r.cache.Remove(ctx, cache.PageSlugKey(page.SiteID, page.Slug))
	return r.finishStructuralChange(ctx, page.SiteID, changes), nil
}

func (r *Pages) siblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]sibling, error) {
	rows, err := r.db.ListSiblings(ctx, siteID, parentID)
	if err != nil {
		return nil, err
	}
	sibs := make([]sibling, 0, len(rows))
	for _, row := range rows {
		sibs = append(sibs, sibling{ID: row.ID, SortOrder: row.SortOrder})
	}
	return sibs, nil
}

// finishStructuralChange invalidates the cached entries of every
// reordered sibling plus the site's sitemap and reports the affected
// sibling ids.
func (r *Pages) finishStructuralChange(ctx context.Context, siteID uuid.UUID, changes map[uuid.UUID]int32) []uuid.UUID {
	affected := make([]uuid.UUID, 0, len(changes))
	for id := range changes {
		r.cache.Remove(ctx, cache.EntityKey(id))
		affected = append(affected, id)
	}
	r.cache.Remove(ctx, cache.SitemapKey(siteID))
	return affected
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
