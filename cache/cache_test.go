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

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, mr *miniredis.Miniredis) *TwoLevel {
	t.Helper()

	var client redis.UniversalClient
	if mr != nil {
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
	}
	c := New(client, Config{LocalTTL: time.Minute, RemoteTTL: time.Hour})
	t.Cleanup(c.Close)
	return c
}

func TestSetGet_LocalOnly(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v1"))

	var got string
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "v1", got)

	c.Remove(ctx, "k")
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestSet_OwnWritesServedWithoutRemoteRead(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v1"))
	require.NoError(t, c.Set(ctx, "k", "v2"))

	// Corrupt the remote copy: a local hit must not notice.
	require.NoError(t, mr.Set("k", "garbage"))

	var got string
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "v2", got)
}

func TestGet_FallsThroughToRemote(t *testing.T) {
	mr := miniredis.RunT(t)
	writer := newTestCache(t, mr)
	reader := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, writer.Set(ctx, "k", "v1"))

	var got string
	require.True(t, reader.Get(ctx, "k", &got))
	assert.Equal(t, "v1", got)
}

func TestCrossInstance_StaleUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestCache(t, mr)
	b := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "k", "v1"))

	var got string
	require.True(t, b.Get(ctx, "k", &got))
	require.Equal(t, "v1", got)

	// A rewrites; B's first level still holds v1 until invalidated.
	require.NoError(t, a.Set(ctx, "k", "v2"))

	require.True(t, b.Get(ctx, "k", &got))
	assert.Equal(t, "v1", got)

	b.InvalidateFirstLevel()
	require.True(t, b.Get(ctx, "k", &got))
	assert.Equal(t, "v2", got)
}

func TestRemove_PropagatesThroughRemote(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestCache(t, mr)
	b := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "k", "v1"))
	a.Remove(ctx, "k")

	var got string
	assert.False(t, b.Get(ctx, "k", &got))
}

func TestRemoteOutage_DegradesToMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v1"))
	mr.Close()

	// Local hit still works.
	var got string
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "v1", got)

	// Writes and removals must not fail with Redis down.
	require.NoError(t, c.Set(ctx, "k2", "v2"))
	c.Remove(ctx, "k2")

	// A cold key is just a miss.
	c.InvalidateFirstLevel()
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestGet_CorruptEntryDropped(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "not json"))

	var got struct{ A int }
	assert.False(t, c.Get(ctx, "k", &got))
	// The bad entry was removed from the remote as well.
	_, err := mr.Get("k")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "ParamKey_theme", ParamKey("theme"))
	assert.Equal(t, "SiteId_default", SiteInternalIDKey("default"))
}
