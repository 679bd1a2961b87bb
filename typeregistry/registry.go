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

// Package typeregistry keeps the in-memory catalog of content type
// definitions. Reads are served from an immutable snapshot published
// atomically; every write persists and then reloads the whole snapshot
// before returning, because a stale definition corrupts the mapping
// engine's output (wrong field count, wrong type). The rare O(n)
// reload buys always-consistent lock-free reads.
package typeregistry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coralcms/coral/cmsdb"
	"github.com/coralcms/coral/content"
)

// Store is the slice of cmsdb the registry needs.
type Store interface {
	ListContentTypes(ctx context.Context) ([]cmsdb.ContentTypeRow, error)
	UpsertContentType(ctx context.Context, arg cmsdb.UpsertContentTypeParams) error
	DeleteContentType(ctx context.Context, id string) error
}

type snapshot struct {
	byID    map[string]*content.ContentTypeDefinition
	ordered []*content.ContentTypeDefinition
}

type Registry struct {
	db Store

	mu     sync.Mutex
	loaded atomic.Bool
	snap   atomic.Pointer[snapshot]
}

func New(db Store) *Registry {
	r := &Registry{db: db}
	r.snap.Store(&snapshot{byID: map[string]*content.ContentTypeDefinition{}})
	return r
}

// EnsureLoaded loads the snapshot on first use. Double-checked so
// concurrent callers never trigger duplicate reloads.
func (r *Registry) EnsureLoaded(ctx context.Context) error {
	if r.loaded.Load() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded.Load() {
		return nil
	}
	if err := r.reloadLocked(ctx); err != nil {
		return err
	}
	r.loaded.Store(true)
	return nil
}

// GetByID returns the definition, or nil when the id is unknown.
// The returned definition is shared and must not be mutated.
func (r *Registry) GetByID(ctx context.Context, id string) (*content.ContentTypeDefinition, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return r.snap.Load().byID[id], nil
}

// GetAll returns all definitions ordered by id.
func (r *Registry) GetAll(ctx context.Context) ([]*content.ContentTypeDefinition, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	s := r.snap.Load()
	out := make([]*content.ContentTypeDefinition, len(s.ordered))
	copy(out, s.ordered)
	return out, nil
}

// Save validates, persists, and reloads the snapshot before returning,
// all under the registry lock.
func (r *Registry) Save(ctx context.Context, def *content.ContentTypeDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	body, err := content.MarshalDefinition(def)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.UpsertContentType(ctx, cmsdb.UpsertContentTypeParams{ID: def.ID, Body: body}); err != nil {
		return fmt.Errorf("save content type %q: %w", def.ID, err)
	}
	if err := r.reloadLocked(ctx); err != nil {
		return err
	}
	r.loaded.Store(true)
	return nil
}

// Delete removes the definition and reloads the snapshot.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.DeleteContentType(ctx, id); err != nil {
		return fmt.Errorf("delete content type %q: %w", id, err)
	}
	if err := r.reloadLocked(ctx); err != nil {
		return err
	}
	r.loaded.Store(true)
	return nil
}

// reloadLocked rebuilds the snapshot from storage and publishes it.
// Callers hold r.mu. Readers keep serving the previous snapshot until
// the new one is swapped in, so a partially built registry is never
// observable.
func (r *Registry) reloadLocked(ctx context.Context) error {
	rows, err := r.db.ListContentTypes(ctx)
	if err != nil {
		return fmt.Errorf("load content types: %w", err)
	}

	s := &snapshot{
		byID:    make(map[string]*content.ContentTypeDefinition, len(rows)),
		ordered: make([]*content.ContentTypeDefinition, 0, len(rows)),
	}
	for _, row := range rows {
		def, err := content.UnmarshalDefinition(row.Body)
		if err != nil {
			return fmt.Errorf("content type %q: %w", row.ID, err)
		}
		s.byID[def.ID] = def
		s.ordered = append(s.ordered, def)
	}

	r.snap.Store(s)
	return nil
}
