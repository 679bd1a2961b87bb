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

// Post is a post's meta row, its mapped regions, and its taxonomy.
// Category and Tags live in their own tables, not in field rows; the
// mapping engine attaches them through its post-load hook.
type Post struct {
	Meta     cmsdb.PostRow
	Content  *content.DynamicModel
	Category *cmsdb.CategoryRow
	Tags     []cmsdb.TagRow
}

type postEntry struct {
	Meta   cmsdb.PostRow      `json:"meta"`
	Fields []content.FieldRow `json:"fields"`
}

// Posts is the post repository.
type Posts struct {
	db       *cmsdb.Store
	types    *typeregistry.Registry
	mapper   *mapping.Engine
	cache    *cache.TwoLevel
	taxonomy *Taxonomy
}

func NewPosts(db *cmsdb.Store, types *typeregistry.Registry, mapper *mapping.Engine, c *cache.TwoLevel) *Posts {
	return &Posts{db: db, types: types, mapper: mapper, cache: c, taxonomy: NewTaxonomy(db)}
}

// GetByID loads one post with regions, category and tags.
func (r *Posts) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var entry postEntry
	if !r.cache.Get(ctx, cache.EntityKey(id), &entry) {
		meta, err := r.db.GetPost(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		rows, err := r.db.ListPostFields(ctx, id)
		if err != nil {
			return nil, err
		}
		entry = postEntry{Meta: meta, Fields: rows}
		if err := r.cache.Set(ctx, cache.EntityKey(id), entry); err != nil {
			return nil, err
		}
	}
	return r.mapPost(ctx, entry)
}

// GetBySlug resolves a slug within one blog page.
func (r *Posts) GetBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*Post, error) {
	var idStr string
	if r.cache.Get(ctx, cache.PostSlugKey(blogID, slug), &idStr) {
		if id, err := uuid.Parse(idStr); err == nil {
			return r.GetByID(ctx, id)
		}
	}

	meta, err := r.db.GetPostBySlug(ctx, blogID, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.cache.Set(ctx, cache.PostSlugKey(blogID, slug), meta.ID.String()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, meta.ID)
}

// ListByBlog loads every post of one blog page, mapped. The listing
// goes straight to storage; only single-entity reads are cached.
func (r *Posts) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]*Post, error) {
	metas, err := r.db.ListPostsByBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}
	out := make([]*Post, 0, len(metas))
	for _, meta := range metas {
		post, err := r.GetByID(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}

func (r *Posts) mapPost(ctx context.Context, entry postEntry) (*Post, error) {
	def, err := r.types.GetByID(ctx, entry.Meta.PostTypeID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("post %s: %w: %q", entry.Meta.ID, ErrUnknownType, entry.Meta.PostTypeID)
	}

	post := &Post{Meta: entry.Meta}
	post.Content = content.NewDynamicModel(entry.Meta.ID, entry.Meta.PostTypeID)

	err = r.mapper.Load(def, entry.Fields, post.Content, func() error {
		if entry.Meta.CategoryID != nil {
			cat, err := r.db.GetCategory(ctx, *entry.Meta.CategoryID)
			if err != nil {
				return notFound(err)
			}
			post.Category = &cat
		}
		tags, err := r.db.ListPostTags(ctx, entry.Meta.ID)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Save persists the post, its field rows, and its taxonomy links.
// Category and tags given by title are created in the blog's taxonomy
// when missing. The blog's archive counts are invalidated because any
// post write may change a month bucket.
func (r *Posts) Save(ctx context.Context, p *Post) error {
	def, err := r.types.GetByID(ctx, p.Meta.PostTypeID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, p.Meta.PostTypeID)
	}

	if p.Category != nil {
		cat, err := r.taxonomy.EnsureCategory(ctx, p.Meta.BlogID, p.Category.Title)
		if err != nil {
			return err
		}
		p.Category = &cat
		p.Meta.CategoryID = &cat.ID
	} else {
		p.Meta.CategoryID = nil
	}

	tagIDs := make([]uuid.UUID, 0, len(p.Tags))
	for i, tag := range p.Tags {
		ensured, err := r.taxonomy.EnsureTag(ctx, p.Meta.BlogID, tag.Title)
		if err != nil {
			return err
		}
		p.Tags[i] = ensured
		tagIDs = append(tagIDs, ensured.ID)
	}

	prev, err := r.db.GetPost(ctx, p.Meta.ID)
	hadPrev := err == nil
	if err != nil && notFound(err) != ErrNotFound {
		return err
	}

	existing, err := r.db.ListPostFields(ctx, p.Meta.ID)
	if err != nil {
		return err
	}
	result, err := r.mapper.Save(def, p.Meta.ID, p.Content, existing)
	if err != nil {
		return err
	}

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		if err := tx.UpsertPost(ctx, p.Meta); err != nil {
			return err
		}
		for _, row := range result.Rows {
			if err := tx.UpsertPostField(ctx, row); err != nil {
				return err
			}
		}
		if err := tx.PrunePostFields(ctx, p.Meta.ID, result.Kept); err != nil {
			return err
		}
		return tx.SetPostTags(ctx, p.Meta.ID, tagIDs)
	})
	if err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.EntityKey(p.Meta.ID))
	r.cache.Remove(ctx, cache.PostSlugKey(p.Meta.BlogID, p.Meta.Slug))
	if hadPrev && prev.Slug != p.Meta.Slug {
		r.cache.Remove(ctx, cache.PostSlugKey(prev.BlogID, prev.Slug))
	}
	r.cache.Remove(ctx, cache.ArchiveKey(p.Meta.BlogID))
	return nil
}

// Delete removes the post, its field rows and its tag links.
func (r *Posts) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := r.db.GetPost(ctx, id)
	if err != nil {
		return notFound(err)
	}

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		return tx.DeletePost(ctx, id)
	})
	if err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.EntityKey(id))
	r.cache.Remove(ctx, cache.PostSlugKey(post.BlogID, post.Slug))
	r.cache.Remove(ctx, cache.ArchiveKey(post.BlogID))
	return nil
}
