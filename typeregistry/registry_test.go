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

package typeregistry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coralcms/coral/cmsdb"
	"github.com/coralcms/coral/content"
)

// MockTypeStore implements Store for testing.
type MockTypeStore struct {
	mock.Mock
}

func (m *MockTypeStore) ListContentTypes(ctx context.Context) ([]cmsdb.ContentTypeRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]cmsdb.ContentTypeRow), args.Error(1)
}

func (m *MockTypeStore) UpsertContentType(ctx context.Context, arg cmsdb.UpsertContentTypeParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockTypeStore) DeleteContentType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func typeRow(t *testing.T, id string) cmsdb.ContentTypeRow {
	t.Helper()
	body, err := content.MarshalDefinition(&content.ContentTypeDefinition{
		ID: id,
		Regions: []content.RegionDefinition{
			{ID: "Body", Fields: []content.FieldDefinition{{ID: "Default", Type: "3"}}},
		},
	})
	require.NoError(t, err)
	return cmsdb.ContentTypeRow{ID: id, Body: body}
}

func TestRegistry_LoadsOnceForConcurrentReaders(t *testing.T) {
	db := &MockTypeStore{}
	db.On("ListContentTypes", mock.Anything).
		Return([]cmsdb.ContentTypeRow{typeRow(t, "StandardPage")}, nil).Once()

	r := New(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			def, err := r.GetByID(ctx, "StandardPage")
			assert.NoError(t, err)
			assert.NotNil(t, def)
		}()
	}
	wg.Wait()

	db.AssertExpectations(t)
}

func TestRegistry_GetByID_UnknownIsNil(t *testing.T) {
	db := &MockTypeStore{}
	db.On("ListContentTypes", mock.Anything).Return([]cmsdb.ContentTypeRow{}, nil)

	r := New(db)
	def, err := r.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestRegistry_SaveReloadsBeforeReturning(t *testing.T) {
	db := &MockTypeStore{}
	db.On("UpsertContentType", mock.Anything, mock.MatchedBy(func(arg cmsdb.UpsertContentTypeParams) bool {
		return arg.ID == "BlogPost"
	})).Return(nil)
	db.On("ListContentTypes", mock.Anything).
		Return([]cmsdb.ContentTypeRow{typeRow(t, "BlogPost")}, nil)

	r := New(db)
	ctx := context.Background()

	def := &content.ContentTypeDefinition{
		ID: "BlogPost",
		Regions: []content.RegionDefinition{
			{ID: "Title", Fields: []content.FieldDefinition{{ID: "Default", Type: "1"}}},
		},
	}
	require.NoError(t, r.Save(ctx, def))

	// No further ListContentTypes should be needed to observe the save.
	got, err := r.GetByID(ctx, "BlogPost")
	require.NoError(t, err)
	require.NotNil(t, got)

	db.AssertExpectations(t)
}

func TestRegistry_SaveRejectsInvalidDefinition(t *testing.T) {
	db := &MockTypeStore{}
	r := New(db)

	err := r.Save(context.Background(), &content.ContentTypeDefinition{ID: ""})
	assert.Error(t, err)
	db.AssertNotCalled(t, "UpsertContentType", mock.Anything, mock.Anything)
}

func TestRegistry_DeleteReloads(t *testing.T) {
	db := &MockTypeStore{}
	db.On("DeleteContentType", mock.Anything, "BlogPost").Return(nil)
	db.On("ListContentTypes", mock.Anything).Return([]cmsdb.ContentTypeRow{}, nil)

	r := New(db)
	require.NoError(t, r.Delete(context.Background(), "BlogPost"))

	got, err := r.GetByID(context.Background(), "BlogPost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_GetAllOrdered(t *testing.T) {
	db := &MockTypeStore{}
	db.On("ListContentTypes", mock.Anything).
		Return([]cmsdb.ContentTypeRow{typeRow(t, "A"), typeRow(t, "B")}, nil)

	r := New(db)
	all, err := r.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].ID)
	assert.Equal(t, "B", all[1].ID)
}
