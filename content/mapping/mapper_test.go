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

package mapping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralcms/coral/content"
	"github.com/coralcms/coral/content/fields"
)

func blogPostType() *content.ContentTypeDefinition {
	return &content.ContentTypeDefinition{
		ID: "BlogPost",
		Regions: []content.RegionDefinition{
			{
				ID:     "Title",
				Fields: []content.FieldDefinition{{ID: "Default", Type: "1"}},
			},
			{
				ID:         "Tags",
				Collection: true,
				Fields:     []content.FieldDefinition{{ID: "Default", Type: "1"}},
			},
		},
	}
}

func heroType() *content.ContentTypeDefinition {
	return &content.ContentTypeDefinition{
		ID: "Hero",
		Regions: []content.RegionDefinition{
			{
				ID: "Banner",
				Fields: []content.FieldDefinition{
					{ID: "Heading", Type: fields.TypeString},
					{ID: "Body", Type: fields.TypeHTML},
					{ID: "Count", Type: "5"},
				},
			},
		},
	}
}

func TestSaveLoad_BlogPostScenario(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Title", "Hello")
	model.SetRegion("Tags", []any{"a", "b", "c"})

	result, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 4)

	var titleRows, tagRows []content.FieldRow
	for _, row := range result.Rows {
		switch row.RegionID {
		case "Title":
			titleRows = append(titleRows, row)
		case "Tags":
			tagRows = append(tagRows, row)
		}
	}
	require.Len(t, titleRows, 1)
	assert.Equal(t, int32(0), titleRows[0].SortOrder)
	require.Len(t, tagRows, 3)
	for i, row := range tagRows {
		assert.Equal(t, int32(i), row.SortOrder)
	}

	loaded := content.NewDynamicModel(contentID, def.ID)
	require.NoError(t, engine.Load(def, result.Rows, loaded, nil))

	title, ok := loaded.Region("Title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)

	tags, ok := loaded.Region("Tags")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b", "c"}, tags)

	// Remove "b" and re-save against the previous rows: exactly two tag
	// rows survive, repacked at sortOrder 0 and 1, and the row that held
	// the old sortOrder 2 is not in the kept set.
	loaded.SetRegion("Tags", []any{"a", "c"})
	second, err := engine.Save(def, contentID, loaded, result.Rows)
	require.NoError(t, err)

	kept := second.KeptSet()
	var secondTags []content.FieldRow
	for _, row := range second.Rows {
		if row.RegionID == "Tags" {
			secondTags = append(secondTags, row)
		}
	}
	require.Len(t, secondTags, 2)
	assert.Equal(t, int32(0), secondTags[0].SortOrder)
	assert.Equal(t, int32(1), secondTags[1].SortOrder)

	orphans := 0
	for _, row := range result.Rows {
		if _, ok := kept[row.ID]; !ok {
			orphans++
			assert.Equal(t, int32(2), row.SortOrder)
		}
	}
	assert.Equal(t, 1, orphans)
}

func TestSave_ReusesRowIDsByNaturalKey(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Title", "Hello")
	model.SetRegion("Tags", []any{"a", "b"})

	first, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	second, err := engine.Save(def, contentID, model, first.Rows)
	require.NoError(t, err)

	require.Equal(t, len(first.Rows), len(second.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i], second.Rows[i], "repeated save must be a storage no-op")
	}
}

func TestSaveLoad_CompositeRegion(t *testing.T) {
	engine := NewDefault()
	def := heroType()
	contentID := uuid.New()

	banner := content.NewFieldSet()
	banner.Set("Heading", "Welcome")
	banner.Set("Body", "<p>intro</p>")
	banner.Set("Count", int64(3))

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Banner", banner)

	result, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	loaded := content.NewDynamicModel(contentID, def.ID)
	require.NoError(t, engine.Load(def, result.Rows, loaded, nil))

	value, ok := loaded.Region("Banner")
	require.True(t, ok)
	set, ok := value.(*content.FieldSet)
	require.True(t, ok)

	heading, _ := set.Get("Heading")
	assert.Equal(t, "Welcome", heading)
	body, _ := set.Get("Body")
	assert.Equal(t, "<p>intro</p>", body)
	count, _ := set.Get("Count")
	assert.Equal(t, int64(3), count)
}

func TestSave_NilFieldEmitsNothing(t *testing.T) {
	engine := NewDefault()
	def := heroType()
	contentID := uuid.New()

	banner := content.NewFieldSet()
	banner.Set("Heading", "Welcome")
	// Body and Count never set.

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Banner", banner)

	result, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Heading", result.Rows[0].FieldID)
}

func TestLoad_EmptyCollectionIsEmptyNotMissing(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()

	model := content.NewDynamicModel(uuid.New(), def.ID)
	require.NoError(t, engine.Load(def, nil, model, nil))

	tags, ok := model.Region("Tags")
	require.True(t, ok)
	assert.Equal(t, []any{}, tags)

	_, ok = model.Region("Title")
	assert.False(t, ok)
}

func TestSave_EmptyCollectionEmitsNoRows(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Title", "Hello")
	model.SetRegion("Tags", []any{})

	result, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Title", result.Rows[0].RegionID)
}

func TestSave_TypeMismatchAbortsBeforeAnyRow(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Title", int64(99))

	result, err := engine.Save(def, contentID, model, nil)
	assert.ErrorIs(t, err, fields.ErrTypeMismatch)
	assert.Empty(t, result.Rows)
}

func TestSave_NilCollectionAnchorRejected(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Tags", []any{"a", nil, "c"})

	_, err := engine.Save(def, contentID, model, nil)
	assert.ErrorIs(t, err, ErrNilCollectionAnchor)
}

func TestSave_UnknownFieldTypeIsError(t *testing.T) {
	engine := NewDefault()
	def := &content.ContentTypeDefinition{
		ID: "Broken",
		Regions: []content.RegionDefinition{
			{ID: "R", Fields: []content.FieldDefinition{{ID: "F", Type: "fields.Gone"}}},
		},
	}

	model := content.NewDynamicModel(uuid.New(), def.ID)
	model.SetRegion("R", "v")

	_, err := engine.Save(def, uuid.New(), model, nil)
	assert.Error(t, err)
}

func TestLoad_StaleRowsAreSkipped(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	rows := []content.FieldRow{
		{ID: uuid.New(), ContentID: contentID, RegionID: "Title", FieldID: "Default", SortOrder: 0, CLRType: fields.TypeString, Value: "Hello"},
		// Region removed from the definition.
		{ID: uuid.New(), ContentID: contentID, RegionID: "Teaser", FieldID: "Default", SortOrder: 0, CLRType: fields.TypeString, Value: "old"},
		// Field removed from its region.
		{ID: uuid.New(), ContentID: contentID, RegionID: "Title", FieldID: "Subtitle", SortOrder: 0, CLRType: fields.TypeString, Value: "old"},
	}

	model := content.NewDynamicModel(contentID, def.ID)
	require.NoError(t, engine.Load(def, rows, model, nil))

	title, ok := model.Region("Title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)
	_, ok = model.Region("Teaser")
	assert.False(t, ok)
}

func TestSaveLoad_FieldlessRegionIsSkipped(t *testing.T) {
	engine := NewDefault()
	// A definition edited directly in the database can reach the engine
	// without passing validation, so a region may declare no fields.
	def := &content.ContentTypeDefinition{
		ID: "HandEdited",
		Regions: []content.RegionDefinition{
			{ID: "Empty"},
			{ID: "EmptyList", Collection: true},
			{ID: "Title", Fields: []content.FieldDefinition{{ID: "Default", Type: fields.TypeString}}},
		},
	}
	contentID := uuid.New()

	model := content.NewDynamicModel(contentID, def.ID)
	model.SetRegion("Empty", "orphaned")
	model.SetRegion("EmptyList", []any{"a"})
	model.SetRegion("Title", "Hello")

	result, err := engine.Save(def, contentID, model, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Title", result.Rows[0].RegionID)

	loaded := content.NewDynamicModel(contentID, def.ID)
	require.NoError(t, engine.Load(def, result.Rows, loaded, nil))

	title, ok := loaded.Region("Title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)
	_, ok = loaded.Region("Empty")
	assert.False(t, ok)
	_, ok = loaded.Region("EmptyList")
	assert.False(t, ok)
}

func TestLoad_ChangedFieldTypeDecodesNil(t *testing.T) {
	engine := NewDefault()
	// The definition now declares Number, but the stored row was written
	// under an older String declaration with a non-numeric blob.
	def := &content.ContentTypeDefinition{
		ID: "Counter",
		Regions: []content.RegionDefinition{
			{ID: "Count", Fields: []content.FieldDefinition{{ID: "Default", Type: "5"}}},
		},
	}
	contentID := uuid.New()
	rows := []content.FieldRow{
		{ID: uuid.New(), ContentID: contentID, RegionID: "Count", FieldID: "Default", SortOrder: 0, CLRType: "fields.Legacy", Value: "three"},
	}

	model := content.NewDynamicModel(contentID, def.ID)
	require.NoError(t, engine.Load(def, rows, model, nil))

	value, ok := model.Region("Count")
	require.True(t, ok)
	assert.Nil(t, value)
}

func TestLoad_PostLoadHookRunsOnce(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()

	calls := 0
	model := content.NewDynamicModel(uuid.New(), def.ID)
	require.NoError(t, engine.Load(def, nil, model, func() error {
		calls++
		// All regions must already be populated when the hook runs.
		_, ok := model.Region("Tags")
		assert.True(t, ok)
		return nil
	}))
	assert.Equal(t, 1, calls)
}

func TestLoad_TypedModelSharesAlgorithm(t *testing.T) {
	engine := NewDefault()
	def := blogPostType()
	contentID := uuid.New()

	// A compiled model embedding content.Regions goes through the same
	// engine as the dynamic variant.
	type typedPost struct {
		content.Regions
		ID uuid.UUID
	}

	src := &typedPost{ID: contentID}
	src.SetRegion("Title", "Typed")
	src.SetRegion("Tags", []any{"x"})

	result, err := engine.Save(def, contentID, src, nil)
	require.NoError(t, err)

	dst := &typedPost{ID: contentID}
	require.NoError(t, engine.Load(def, result.Rows, dst, nil))

	title, ok := dst.Region("Title")
	require.True(t, ok)
	assert.Equal(t, "Typed", title)
}
