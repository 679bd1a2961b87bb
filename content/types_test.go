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

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validType() *ContentTypeDefinition {
	return &ContentTypeDefinition{
		ID:    "StandardPage",
		Title: "Standard page",
		Regions: []RegionDefinition{
			{ID: "Body", Fields: []FieldDefinition{{ID: "Default", Type: "3"}}},
			{
				ID:         "Teasers",
				Collection: true,
				Fields: []FieldDefinition{
					{ID: "Title", Type: "1"},
					{ID: "Body", Type: "2"},
				},
			},
		},
	}
}

func TestDefinition_Validate(t *testing.T) {
	require.NoError(t, validType().Validate())

	tests := []struct {
		name   string
		mutate func(*ContentTypeDefinition)
	}{
		{"empty id", func(d *ContentTypeDefinition) { d.ID = "" }},
		{"duplicate region", func(d *ContentTypeDefinition) { d.Regions[1].ID = "Body" }},
		{"region without fields", func(d *ContentTypeDefinition) { d.Regions[0].Fields = nil }},
		{"duplicate field", func(d *ContentTypeDefinition) { d.Regions[1].Fields[1].ID = "Title" }},
		{"field without type", func(d *ContentTypeDefinition) { d.Regions[0].Fields[0].Type = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validType()
			tt.mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDefinition_BlobRoundTrip(t *testing.T) {
	src := validType()
	body, err := MarshalDefinition(src)
	require.NoError(t, err)

	dst, err := UnmarshalDefinition(body)
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

func TestDynamicModel_RegionOrder(t *testing.T) {
	m := NewDynamicModel(uuid.New(), "StandardPage")
	m.SetRegion("b", 1)
	m.SetRegion("a", 2)
	m.SetRegion("b", 3)

	assert.Equal(t, []string{"b", "a"}, m.RegionIDs())
	v, ok := m.Region("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestFieldSet_InsertionOrder(t *testing.T) {
	s := NewFieldSet()
	s.Set("Title", "t")
	s.Set("Body", "b")
	s.Set("Title", "t2")

	assert.Equal(t, []string{"Title", "Body"}, s.FieldIDs())
	assert.Equal(t, 2, s.Len())
}
