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

// Package content defines the dynamic content model: content type
// definitions (regions containing typed fields), the region container
// capability shared by typed and dynamic models, and the normalized
// field-row representation used by storage.
package content

import (
	"encoding/json"
	"fmt"
)

// FieldDefinition describes a single typed value slot within a region.
// Type is resolved against the field registry by shorthand first, then
// by full type name.
type FieldDefinition struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type"`
}

// RegionDefinition describes a named group of fields. A collection
// region holds zero or more ordered items, each item being one set of
// field values.
type RegionDefinition struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Collection bool              `json:"collection,omitempty"`
	Fields     []FieldDefinition `json:"fields"`
}

// ContentTypeDefinition is the schema for one kind of content (page
// type, post type, site type, block type). Definitions are treated as
// immutable once loaded into a registry snapshot.
type ContentTypeDefinition struct {
	ID      string             `json:"id"`
	Title   string             `json:"title,omitempty"`
	Regions []RegionDefinition `json:"regions"`
}

// Region returns the region declaration with the given id.
func (d *ContentTypeDefinition) Region(id string) (*RegionDefinition, bool) {
	for i := range d.Regions {
		if d.Regions[i].ID == id {
			return &d.Regions[i], true
		}
	}
	return nil, false
}

// Validate checks structural invariants: a non-empty type id, region
// ids unique within the type, at least one field per region, and field
// ids unique within each region.
func (d *ContentTypeDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("content type id must not be empty")
	}
	regionIDs := make(map[string]struct{}, len(d.Regions))
	for _, r := range d.Regions {
		if r.ID == "" {
			return fmt.Errorf("content type %q: region id must not be empty", d.ID)
		}
		if _, dup := regionIDs[r.ID]; dup {
			return fmt.Errorf("content type %q: duplicate region id %q", d.ID, r.ID)
		}
		regionIDs[r.ID] = struct{}{}
		if len(r.Fields) == 0 {
			return fmt.Errorf("content type %q: region %q has no fields", d.ID, r.ID)
		}
		fieldIDs := make(map[string]struct{}, len(r.Fields))
		for _, f := range r.Fields {
			if f.ID == "" {
				return fmt.Errorf("content type %q: region %q: field id must not be empty", d.ID, r.ID)
			}
			if _, dup := fieldIDs[f.ID]; dup {
				return fmt.Errorf("content type %q: region %q: duplicate field id %q", d.ID, r.ID, f.ID)
			}
			fieldIDs[f.ID] = struct{}{}
			if f.Type == "" {
				return fmt.Errorf("content type %q: region %q: field %q has no type", d.ID, r.ID, f.ID)
			}
		}
	}
	return nil
}

// MarshalDefinition serializes a definition to the opaque JSON blob
// stored in the content_types table.
func MarshalDefinition(d *ContentTypeDefinition) ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal content type %q: %w", d.ID, err)
	}
	return body, nil
}

// UnmarshalDefinition decodes a stored definition blob.
func UnmarshalDefinition(body []byte) (*ContentTypeDefinition, error) {
	var d ContentTypeDefinition
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("unmarshal content type: %w", err)
	}
	return &d, nil
}
