//go:build integration

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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
	"github.com/coralcms/coral/content"
	"github.com/coralcms/coral/content/mapping"
	"github.com/coralcms/coral/testhelpers"
	"github.com/coralcms/coral/typeregistry"
)

func setupPages(t *testing.T) (*Pages, *cmsdb.Store, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	store := testhelpers.SetupTestCMSDB(t)
	c := cache.New(nil, cache.DefaultConfig())
	t.Cleanup(c.Close)

	types := typeregistry.New(store)
	def := &content.ContentTypeDefinition{
		ID: "StandardPage",
		Regions: []content.RegionDefinition{
			{ID: "Body", Fields: []content.FieldDefinition{{ID: "Default", Type: "fields.Html"}}},
		},
	}
	require.NoError(t, types.Save(ctx, def))

	site := cmsdb.SiteRow{ID: uuid.New(), InternalID: "default", Title: "Default", IsDefault: true}
	require.NoError(t, store.UpsertSite(ctx, site))

	return NewPages(store, types, mapping.NewDefault(), c), store, site.ID
}

func newTestPage(siteID uuid.UUID, title string, sortOrder int32) *Page {
	id := uuid.New()
	model := content.NewDynamicModel(id, "StandardPage")
	model.SetRegion("Body", "<p>"+title+"</p>")
	return &Page{
		Meta: cmsdb.PageRow{
			ID:         id,
			SiteID:     siteID,
			SortOrder:  sortOrder,
			PageTypeID: "StandardPage",
			Title:      title,
			Slug:       Slugify(title),
		},
		Content: model,
	}
}

func TestPages_SaveLoadRoundTrip(t *testing.T) {
	pages, _, siteID := setupPages(t)
	ctx := context.Background()

	p := newTestPage(siteID, "Home", 0)
	_, err := pages.Save(ctx, p)
	require.NoError(t, err)

	got, err := pages.GetByID(ctx, p.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Meta.Title)
	body, ok := got.Content.Region("Body")
	require.True(t, ok)
	assert.Equal(t, "<p>Home</p>", body)

	bySlug, err := pages.GetBySlug(ctx, siteID, "home")
	require.NoError(t, err)
	assert.Equal(t, p.Meta.ID, bySlug.Meta.ID)

	start, err := pages.GetStartpage(ctx, siteID)
	require.NoError(t, err)
	assert.Equal(t, p.Meta.ID, start.Meta.ID)
}

func TestPages_SortOrderStaysDense(t *testing.T) {
	pages, store, siteID := setupPages(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i, title := range []string{"A", "B", "C", "D"} {
		p := newTestPage(siteID, title, int32(i))
		_, err := pages.Save(ctx, p)
		require.NoError(t, err)
		ids = append(ids, p.Meta.ID)
	}

	// Move D to the front, then delete B. Orders must stay {0..n-1}.
	affected, err := pages.Move(ctx, ids[3], nil, 0)
	require.NoError(t, err)
	assert.Len(t, affected, 3)

	affected, err = pages.Delete(ctx, ids[1])
	require.NoError(t, err)
	assert.NotEmpty(t, affected)

	rows, err := store.ListSiblings(ctx, siteID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, int32(i), row.SortOrder)
	}
}

func TestPages_MoveToOwnPositionIsNoop(t *testing.T) {
	pages, _, siteID := setupPages(t)
	ctx := context.Background()

	p := newTestPage(siteID, "Only", 0)
	_, err := pages.Save(ctx, p)
	require.NoError(t, err)

	affected, err := pages.Move(ctx, p.Meta.ID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func TestPages_DeletePreconditions(t *testing.T) {
	pages, _, siteID := setupPages(t)
	ctx := context.Background()

	parent := newTestPage(siteID, "Parent", 0)
	_, err := pages.Save(ctx, parent)
	require.NoError(t, err)

	child := newTestPage(siteID, "Child", 0)
	child.Meta.ParentID = &parent.Meta.ID
	_, err = pages.Save(ctx, child)
	require.NoError(t, err)

	_, err = pages.Delete(ctx, parent.Meta.ID)
	require.ErrorIs(t, err, ErrHasChildren)

	copyPage := newTestPage(siteID, "Copy of child", 1)
	copyPage.Meta.ParentID = &parent.Meta.ID
	copyPage.Meta.OriginalID = &child.Meta.ID
	_, err = pages.Save(ctx, copyPage)
	require.NoError(t, err)

	_, err = pages.Delete(ctx, child.Meta.ID)
	require.ErrorIs(t, err, ErrHasCopies)

	_, err = pages.Delete(ctx, copyPage.Meta.ID)
	require.NoError(t, err)
	_, err = pages.Delete(ctx, child.Meta.ID)
	require.NoError(t, err)
	_, err = pages.Delete(ctx, parent.Meta.ID)
	require.NoError(t, err)
}

func TestPages_CopyRules(t *testing.T) {
	pages, _, siteID := setupPages(t)
	ctx := context.Background()

	original := newTestPage(siteID, "Original", 0)
	_, err := pages.Save(ctx, original)
	require.NoError(t, err)

	first := newTestPage(siteID, "First copy", 1)
	first.Meta.OriginalID = &original.Meta.ID
	_, err = pages.Save(ctx, first)
	require.NoError(t, err)

	second := newTestPage(siteID, "Copy of copy", 2)
	second.Meta.OriginalID = &first.Meta.ID
	_, err = pages.Save(ctx, second)
	require.ErrorIs(t, err, ErrCopyOfCopy)
}
