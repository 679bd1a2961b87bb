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

// Package fields implements the field value codec: a registry of field
// type descriptors resolvable by full type name or short alias, each
// descriptor encoding a typed value to a storage-neutral string blob
// and back.
package fields

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned by Encode when the runtime value's type
// does not match the descriptor's declared value type. This is a
// configuration error and always fails fast; it is never produced on
// the decode path.
var ErrTypeMismatch = errors.New("field value type mismatch")

// Descriptor describes one field type. Encode fails on a value of the
// wrong runtime type; Decode returns nil for a malformed blob so that
// rows written under an older definition stay loadable.
type Descriptor interface {
	TypeName() string
	Shorthand() string
	Encode(value any) (string, error)
	Decode(blob string) any
}

// Registry resolves field type identifiers to descriptors. A
// descriptor registered with a shorthand is reachable through both
// lookup paths and both return the same instance.
type Registry struct {
	byType      map[string]Descriptor
	byShorthand map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		byType:      make(map[string]Descriptor),
		byShorthand: make(map[string]Descriptor),
	}
}

// Register adds a descriptor. Registering a duplicate type name or
// shorthand is an error.
func (r *Registry) Register(d Descriptor) error {
	name := d.TypeName()
	if name == "" {
		return fmt.Errorf("field descriptor has no type name")
	}
	if _, dup := r.byType[name]; dup {
		return fmt.Errorf("field type %q already registered", name)
	}
	if s := d.Shorthand(); s != "" {
		if _, dup := r.byShorthand[s]; dup {
			return fmt.Errorf("field shorthand %q already registered", s)
		}
		r.byShorthand[s] = d
	}
	r.byType[name] = d
	return nil
}

// GetByType resolves by canonical full type name.
func (r *Registry) GetByType(name string) (Descriptor, bool) {
	d, ok := r.byType[name]
	return d, ok
}

// GetByShorthand resolves by short alias.
func (r *Registry) GetByShorthand(shorthand string) (Descriptor, bool) {
	d, ok := r.byShorthand[shorthand]
	return d, ok
}

// Resolve tries the shorthand first and falls back to the full type
// name, matching how field definitions reference their type.
func (r *Registry) Resolve(typeID string) (Descriptor, bool) {
	if d, ok := r.byShorthand[typeID]; ok {
		return d, true
	}
	d, ok := r.byType[typeID]
	return d, ok
}

// Decode resolves the stored type tag and decodes the blob. An unknown
// tag yields nil, not an error: content types evolve and old rows must
// remain loadable.
func (r *Registry) Decode(clrType, blob string) any {
	d, ok := r.byType[clrType]
	if !ok {
		return nil
	}
	return d.Decode(blob)
}

var defaultRegistry = mustBuiltins()

// Default returns the process-wide registry preloaded with the
// built-in field types.
func Default() *Registry { return defaultRegistry }

func mustBuiltins() *Registry {
	r := NewRegistry()
	for _, d := range builtins() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}
