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

// Package mapping translates between the normalized field rows stored
// in the database and in-memory content models, in both directions,
// driven entirely by a content type definition. Region and field
// traversal follows declaration order in the definition, never stored
// order, so output is deterministic for a given definition and model.
package mapping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/coralcms/coral/content"
	"github.com/coralcms/coral/content/fields"
)

// ErrNilCollectionAnchor is returned when a collection item carries a
// nil value in its region's first field. The first field's rows anchor
// the item count on load, so every item must persist one.
var ErrNilCollectionAnchor = errors.New("collection item has nil value in its first field")

// Engine maps field rows to models and back using one field registry.
type Engine struct {
	fields *fields.Registry
}

func New(reg *fields.Registry) *Engine {
	return &Engine{fields: reg}
}

// NewDefault returns an engine over the built-in field registry.
func NewDefault() *Engine {
	return New(fields.Default())
}

type rowKey struct {
	regionID  string
	fieldID   string
	sortOrder int32
}

// Load populates the model's regions from stored rows according to the
// definition. Rows for regions or fields no longer declared are
// skipped, and values whose blobs no longer decode under the current
// registry come back nil; neither is an error, because content types
// evolve in place and old rows must remain loadable. The optional
// postLoad hook runs once after all regions are populated, which is
// where callers attach non-field data such as blocks, category, and
// tags.
func (e *Engine) Load(def *content.ContentTypeDefinition, rows []content.FieldRow, model content.RegionContainer, postLoad func() error) error {
	byKey := make(map[rowKey]content.FieldRow, len(rows))
	for _, row := range rows {
		byKey[rowKey{row.RegionID, row.FieldID, row.SortOrder}] = row
	}

	for _, region := range def.Regions {
		// A region with no fields can occur in a definition blob that
		// bypassed validation, such as a hand-edited database row.
		// There is nothing to map, so skip it rather than panic.
		if len(region.Fields) == 0 {
			continue
		}

		if !region.Collection {
			if item, ok := e.loadItem(region, byKey, 0); ok {
				model.SetRegion(region.ID, item)
			}
			continue
		}

		// The first declared field anchors the item count: every field
		// of one item shares its sortOrder, so the anchor's rows
		// enumerate the items.
		anchor := region.Fields[0].ID
		var orders []int32
		for _, row := range rows {
			if row.RegionID == region.ID && row.FieldID == anchor {
				orders = append(orders, row.SortOrder)
			}
		}
		sort.Slice(orders, func(i, j int) bool { return orders[i] < orders[j] })

		items := make([]any, 0, len(orders))
		for _, so := range orders {
			if item, ok := e.loadItem(region, byKey, so); ok {
				items = append(items, item)
			}
		}
		// Zero items is a normal state, not "missing": the region is
		// always set, to an empty list.
		model.SetRegion(region.ID, items)
	}

	if postLoad != nil {
		return postLoad()
	}
	return nil
}

// loadItem builds the value of one region item at the given sortOrder:
// the decoded value itself for a single-field region, a FieldSet for a
// multi-field region.
func (e *Engine) loadItem(region content.RegionDefinition, byKey map[rowKey]content.FieldRow, sortOrder int32) (any, bool) {
	if len(region.Fields) == 1 {
		row, ok := byKey[rowKey{region.ID, region.Fields[0].ID, sortOrder}]
		if !ok {
			return nil, false
		}
		return e.fields.Decode(row.CLRType, row.Value), true
	}

	set := content.NewFieldSet()
	found := false
	for _, field := range region.Fields {
		row, ok := byKey[rowKey{region.ID, field.ID, sortOrder}]
		if !ok {
			continue
		}
		set.Set(field.ID, e.fields.Decode(row.CLRType, row.Value))
		found = true
	}
	if !found {
		return nil, false
	}
	return set, true
}

// SaveResult is the row set produced by Save. Rows are the rows to
// persist; Kept lists their ids. Existing rows whose ids are not in
// Kept are orphans and must be deleted by the caller after the rows
// are written.
type SaveResult struct {
	Rows []content.FieldRow
	Kept []uuid.UUID
}

// KeptSet returns the kept ids as a set for orphan pruning.
func (r SaveResult) KeptSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(r.Kept))
	for _, id := range r.Kept {
		set[id] = struct{}{}
	}
	return set
}

// Save diffs the model against the existing rows and produces the rows
// to persist. Nil field values emit nothing. A row whose natural key
// (regionID, fieldID, sortOrder) already exists is reused, keeping its
// id stable, which makes a repeated save of unchanged content a no-op
// at the storage level. A runtime value whose type does not match its
// field's declared type aborts the save before any row is produced.
func (e *Engine) Save(def *content.ContentTypeDefinition, contentID uuid.UUID, model content.RegionContainer, existing []content.FieldRow) (SaveResult, error) {
	byKey := make(map[rowKey]content.FieldRow, len(existing))
	for _, row := range existing {
		byKey[rowKey{row.RegionID, row.FieldID, row.SortOrder}] = row
	}

	var result SaveResult
	for _, region := range def.Regions {
		if len(region.Fields) == 0 {
			continue
		}

		value, ok := model.Region(region.ID)
		if !ok || value == nil {
			continue
		}

		if !region.Collection {
			if err := e.saveItem(&result, byKey, contentID, region, value, 0); err != nil {
				return SaveResult{}, err
			}
			continue
		}

		items, ok := value.([]any)
		if !ok {
			return SaveResult{}, fmt.Errorf("region %q: collection value is %T, want []any", region.ID, value)
		}
		for idx, item := range items {
			if extractField(region, region.Fields[0].ID, item) == nil {
				return SaveResult{}, fmt.Errorf("region %q item %d: %w", region.ID, idx, ErrNilCollectionAnchor)
			}
			if err := e.saveItem(&result, byKey, contentID, region, item, int32(idx)); err != nil {
				return SaveResult{}, err
			}
		}
	}
	return result, nil
}

func (e *Engine) saveItem(result *SaveResult, byKey map[rowKey]content.FieldRow, contentID uuid.UUID, region content.RegionDefinition, item any, sortOrder int32) error {
	for _, field := range region.Fields {
		desc, ok := e.fields.Resolve(field.Type)
		if !ok {
			return fmt.Errorf("region %q field %q: unknown field type %q", region.ID, field.ID, field.Type)
		}

		value := extractField(region, field.ID, item)
		if value == nil {
			continue
		}

		blob, err := desc.Encode(value)
		if err != nil {
			return fmt.Errorf("region %q field %q: %w", region.ID, field.ID, err)
		}

		row := content.FieldRow{
			ID:        uuid.New(),
			ContentID: contentID,
			RegionID:  region.ID,
			FieldID:   field.ID,
			SortOrder: sortOrder,
			CLRType:   desc.TypeName(),
			Value:     blob,
		}
		if prev, ok := byKey[rowKey{region.ID, field.ID, sortOrder}]; ok {
			row.ID = prev.ID
		}
		result.Rows = append(result.Rows, row)
		result.Kept = append(result.Kept, row.ID)
	}
	return nil
}

// extractField pulls one field's value out of a region item: the item
// itself for single-field regions, a keyed lookup otherwise. Composite
// items may be a *content.FieldSet or a plain map.
func extractField(region content.RegionDefinition, fieldID string, item any) any {
	if len(region.Fields) == 1 {
		return item
	}
	switch v := item.(type) {
	case *content.FieldSet:
		value, _ := v.Get(fieldID)
		return value
	case map[string]any:
		return v[fieldID]
	default:
		return nil
	}
}
