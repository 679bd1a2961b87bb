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

// Block is a standalone content block: a meta row plus mapped regions.
// Reusable blocks are shared across pages by reference.
type Block struct {
	Meta    cmsdb.BlockRow
	Content *content.DynamicModel
}

type blockEntry struct {
	Meta   cmsdb.BlockRow     `json:"meta"`
	Fields []content.FieldRow `json:"fields"`
}

// Blocks is the block repository.
type Blocks struct {
	db     *cmsdb.Store
	types  *typeregistry.Registry
	mapper *mapping.Engine
	cache  *cache.TwoLevel
}

func NewBlocks(db *cmsdb.Store, types *typeregistry.Registry, mapper *mapping.Engine, c *cache.TwoLevel) *Blocks {
	return &Blocks{db: db, types: types, mapper: mapper, cache: c}
}

func (r *Blocks) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	var entry blockEntry
	if !r.cache.Get(ctx, cache.EntityKey(id), &entry) {
		meta, err := r.db.GetBlock(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		rows, err := r.db.ListBlockFields(ctx, id)
		if err != nil {
			return nil, err
		}
		entry = blockEntry{Meta: meta, Fields: rows}
		if err := r.cache.Set(ctx, cache.EntityKey(id), entry); err != nil {
			return nil, err
		}
	}

	def, err := r.types.GetByID(ctx, entry.Meta.TypeID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("block %s: %w: %q", entry.Meta.ID, ErrUnknownType, entry.Meta.TypeID)
	}

	model := content.NewDynamicModel(entry.Meta.ID, entry.Meta.TypeID)
	if err := r.mapper.Load(def, entry.Fields, model, nil); err != nil {
		return nil, err
	}
	return &Block{Meta: entry.Meta, Content: model}, nil
}

// ListReusable returns the metadata of every reusable block. Content is
// loaded per block on demand.
func (r *Blocks) ListReusable(ctx context.Context) ([]cmsdb.BlockRow, error) {
	return r.db.ListReusableBlocks(ctx)
}

func (r *Blocks) Save(ctx context.Context, b *Block) error {
	def, err := r.types.GetByID(ctx, b.Meta.TypeID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, b.Meta.TypeID)
	}

	existing, err := r.db.ListBlockFields(ctx, b.Meta.ID)
	if err != nil {
		return err
	}
	result, err := r.mapper.Save(def, b.Meta.ID, b.Content, existing)
	if err != nil {
		return err
	}

	err = r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		if err := tx.UpsertBlock(ctx, b.Meta); err != nil {
			return err
		}
		for _, row := range result.Rows {
			if err := tx.UpsertBlockField(ctx, row); err != nil {
				return err
			}
		}
		return tx.PruneBlockFields(ctx, b.Meta.ID, result.Kept)
	})
	if err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.EntityKey(b.Meta.ID))
	return nil
}

func (r *Blocks) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx *cmsdb.Store) error {
		return tx.DeleteBlock(ctx, id)
	})
	if err != nil {
		return err
	}
	r.cache.Remove(ctx, cache.EntityKey(id))
	return nil
}
