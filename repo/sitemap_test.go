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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralcms/coral/cmsdb"
)

func page(id uuid.UUID, parent *uuid.UUID, sortOrder int32, title, slug string) cmsdb.PageRow {
	return cmsdb.PageRow{
		ID:        id,
		ParentID:  parent,
		SortOrder: sortOrder,
		Title:     title,
		Slug:      slug,
	}
}

func TestBuildSitemap_TreeShapeAndOrder(t *testing.T) {
	home := uuid.New()
	about := uuid.New()
	team := uuid.New()
	history := uuid.New()

	// Rows arrive in arbitrary order; the tree must come out sorted.
	pages := []cmsdb.PageRow{
		page(history, &about, 1, "History", "history"),
		page(about, nil, 1, "About", "about"),
		page(home, nil, 0, "Home", "home"),
		page(team, &about, 0, "Team", "team"),
	}

	tree := buildSitemap(pages)

	require.Len(t, tree, 2)
	assert.Equal(t, home, tree[0].ID)
	assert.Equal(t, about, tree[1].ID)

	require.Len(t, tree[1].Items, 2)
	assert.Equal(t, team, tree[1].Items[0].ID)
	assert.Equal(t, history, tree[1].Items[1].ID)
}

func TestBuildSitemap_Permalinks(t *testing.T) {
	about := uuid.New()
	team := uuid.New()

	tree := buildSitemap([]cmsdb.PageRow{
		page(about, nil, 0, "About", "about"),
		page(team, &about, 0, "Team", "team"),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, "/about", tree[0].Permalink)
	require.Len(t, tree[0].Items, 1)
	assert.Equal(t, "/about/team", tree[0].Items[0].Permalink)
}

func TestBuildSitemap_MenuTitleFallsBackToTitle(t *testing.T) {
	withNav := page(uuid.New(), nil, 0, "About Us", "about")
	withNav.NavigationTitle = "About"
	without := page(uuid.New(), nil, 1, "Contact", "contact")

	tree := buildSitemap([]cmsdb.PageRow{withNav, without})

	require.Len(t, tree, 2)
	assert.Equal(t, "About", tree[0].MenuTitle)
	assert.Equal(t, "Contact", tree[1].MenuTitle)
}

func TestFilterPublished_DropsUnpublishedSubtrees(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	root := uuid.New()
	draftChild := uuid.New()
	liveChild := uuid.New()
	grandchild := uuid.New()

	rows := []cmsdb.PageRow{
		page(root, nil, 0, "Root", "root"),
		page(draftChild, &root, 0, "Draft", "draft"),
		page(liveChild, &root, 1, "Live", "live"),
		page(grandchild, &draftChild, 0, "Hidden with parent", "sub"),
	}
	rows[0].Published = &past
	rows[2].Published = &past
	rows[3].Published = &past // published, but under an unpublished parent

	filtered := filterPublished(buildSitemap(rows), now)

	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Items, 1)
	assert.Equal(t, liveChild, filtered[0].Items[0].ID)

	// Future publish dates count as unpublished.
	rows[2].Published = &future
	filtered = filterPublished(buildSitemap(rows), now)
	require.Len(t, filtered, 1)
	assert.Empty(t, filtered[0].Items)
}

func TestFilterPublished_DoesNotMutateCachedTree(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	root := uuid.New()
	child := uuid.New()
	rows := []cmsdb.PageRow{
		page(root, nil, 0, "Root", "root"),
		page(child, &root, 0, "Draft child", "draft"),
	}
	rows[0].Published = &past

	tree := buildSitemap(rows)
	_ = filterPublished(tree, now)

	// The unfiltered tree still holds the draft child.
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Items, 1)
}
