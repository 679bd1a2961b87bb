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

package content

import "github.com/google/uuid"

// RegionContainer is the capability the mapping engine works against.
// A region value is one of:
//   - a scalar (single-field, non-collection region)
//   - a *FieldSet (multi-field, non-collection region)
//   - a []any of scalars or *FieldSet (collection region)
//
// Both the dynamic model and compiled typed models implement it, which
// keeps the mapping algorithm identical for the two representations.
type RegionContainer interface {
	Region(id string) (any, bool)
	SetRegion(id string, value any)
}

// FieldSet holds the field values of one composite region item, keyed
// by field id and ordered by insertion.
type FieldSet struct {
	order  []string
	values map[string]any
}

func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string]any)}
}

func (s *FieldSet) Get(id string) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

func (s *FieldSet) Set(id string, value any) {
	if _, seen := s.values[id]; !seen {
		s.order = append(s.order, id)
	}
	s.values[id] = value
}

// FieldIDs returns the field ids in insertion order.
func (s *FieldSet) FieldIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *FieldSet) Len() int { return len(s.values) }

// DynamicModel represents content whose regions are generic key-ordered
// values rather than compiled struct properties.
type DynamicModel struct {
	ID     uuid.UUID
	TypeID string

	order   []string
	regions map[string]any
}

// NewDynamicModel creates an empty model of the given content type.
func NewDynamicModel(id uuid.UUID, typeID string) *DynamicModel {
	return &DynamicModel{
		ID:      id,
		TypeID:  typeID,
		regions: make(map[string]any),
	}
}

func (m *DynamicModel) Region(id string) (any, bool) {
	v, ok := m.regions[id]
	return v, ok
}

func (m *DynamicModel) SetRegion(id string, value any) {
	if _, seen := m.regions[id]; !seen {
		m.order = append(m.order, id)
	}
	m.regions[id] = value
}

// RegionIDs returns the populated region ids in insertion order.
func (m *DynamicModel) RegionIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Regions implements RegionContainer over a plain ordered map and can
// be embedded by compiled typed models that want struct properties for
// some regions while still flowing through the shared mapping path.
type Regions struct {
	order  []string
	values map[string]any
}

func (r *Regions) Region(id string) (any, bool) {
	if r.values == nil {
		return nil, false
	}
	v, ok := r.values[id]
	return v, ok
}

func (r *Regions) SetRegion(id string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, seen := r.values[id]; !seen {
		r.order = append(r.order, id)
	}
	r.values[id] = value
}
