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

package fields

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Canonical type names. These are the tags written to the clr_type
// column, so they must stay stable across releases.
const (
	TypeString   = "fields.String"
	TypeText     = "fields.Text"
	TypeHTML     = "fields.Html"
	TypeMarkdown = "fields.Markdown"
	TypeNumber   = "fields.Number"
	TypeDate     = "fields.Date"
	TypeCheckbox = "fields.Checkbox"
	TypeImage    = "fields.Image"
)

func builtins() []Descriptor {
	return []Descriptor{
		stringDescriptor{name: TypeString, shorthand: "1"},
		stringDescriptor{name: TypeText, shorthand: "2"},
		stringDescriptor{name: TypeHTML, shorthand: "3"},
		stringDescriptor{name: TypeMarkdown, shorthand: "4"},
		numberDescriptor{},
		dateDescriptor{},
		checkboxDescriptor{},
		imageDescriptor{},
	}
}

// stringDescriptor covers the text-like field types. They share a Go
// value type but carry distinct type tags so editors can render them
// differently.
type stringDescriptor struct {
	name      string
	shorthand string
}

func (d stringDescriptor) TypeName() string  { return d.name }
func (d stringDescriptor) Shorthand() string { return d.shorthand }

func (d stringDescriptor) Encode(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: got %T, want string: %w", d.name, value, ErrTypeMismatch)
	}
	return s, nil
}

func (d stringDescriptor) Decode(blob string) any { return blob }

type numberDescriptor struct{}

func (numberDescriptor) TypeName() string  { return TypeNumber }
func (numberDescriptor) Shorthand() string { return "5" }

func (numberDescriptor) Encode(value any) (string, error) {
	n, ok := value.(int64)
	if !ok {
		return "", fmt.Errorf("%s: got %T, want int64: %w", TypeNumber, value, ErrTypeMismatch)
	}
	return strconv.FormatInt(n, 10), nil
}

func (numberDescriptor) Decode(blob string) any {
	n, err := strconv.ParseInt(blob, 10, 64)
	if err != nil {
		return nil
	}
	return n
}

type dateDescriptor struct{}

func (dateDescriptor) TypeName() string  { return TypeDate }
func (dateDescriptor) Shorthand() string { return "6" }

func (dateDescriptor) Encode(value any) (string, error) {
	t, ok := value.(time.Time)
	if !ok {
		return "", fmt.Errorf("%s: got %T, want time.Time: %w", TypeDate, value, ErrTypeMismatch)
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

func (dateDescriptor) Decode(blob string) any {
	t, err := time.Parse(time.RFC3339Nano, blob)
	if err != nil {
		return nil
	}
	return t
}

type checkboxDescriptor struct{}

func (checkboxDescriptor) TypeName() string  { return TypeCheckbox }
func (checkboxDescriptor) Shorthand() string { return "7" }

func (checkboxDescriptor) Encode(value any) (string, error) {
	b, ok := value.(bool)
	if !ok {
		return "", fmt.Errorf("%s: got %T, want bool: %w", TypeCheckbox, value, ErrTypeMismatch)
	}
	return strconv.FormatBool(b), nil
}

func (checkboxDescriptor) Decode(blob string) any {
	b, err := strconv.ParseBool(blob)
	if err != nil {
		return nil
	}
	return b
}

// imageDescriptor stores a media id. The media subsystem itself lives
// outside this engine; the field only carries the reference.
type imageDescriptor struct{}

func (imageDescriptor) TypeName() string  { return TypeImage }
func (imageDescriptor) Shorthand() string { return "8" }

func (imageDescriptor) Encode(value any) (string, error) {
	id, ok := value.(uuid.UUID)
	if !ok {
		return "", fmt.Errorf("%s: got %T, want uuid.UUID: %w", TypeImage, value, ErrTypeMismatch)
	}
	return id.String(), nil
}

func (imageDescriptor) Decode(blob string) any {
	id, err := uuid.Parse(blob)
	if err != nil {
		return nil
	}
	return id
}
