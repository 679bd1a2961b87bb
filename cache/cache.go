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

// Package cache implements the two-level model cache: a process-local
// ttlcache tier in front of a shared Redis tier. Writes go through to
// Redis so other processes eventually observe them; reads served from
// the local tier cost no network round-trip. A process's local tier
// may serve entries another process has since rewritten until the
// entry's TTL expires or InvalidateFirstLevel is called; that window
// is the accepted trade for read-heavy content serving. Redis being
// down only degrades to cache misses, it never fails an operation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/coralcms/coral/internal/logctx"
)

var (
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	cacheErrors metric.Int64Counter

	localTier  = attribute.String("tier", "local")
	remoteTier = attribute.String("tier", "remote")
)

func init() {
	meter := otel.Meter("github.com/coralcms/coral/cache")

	var err error

	cacheHits, err = meter.Int64Counter(
		"coral.cache.hits",
		metric.WithDescription("Number of model cache hits"),
	)
	if err != nil {
		log.Fatalf("failed to create cache.hits counter: %v", err)
	}

	cacheMisses, err = meter.Int64Counter(
		"coral.cache.misses",
		metric.WithDescription("Number of model cache misses"),
	)
	if err != nil {
		log.Fatalf("failed to create cache.misses counter: %v", err)
	}

	cacheErrors, err = meter.Int64Counter(
		"coral.cache.errors",
		metric.WithDescription("Number of swallowed second-level cache errors"),
	)
	if err != nil {
		log.Fatalf("failed to create cache.errors counter: %v", err)
	}
}

// Config controls the tier TTLs. LocalTTL bounds the cross-process
// staleness window; RemoteTTL bounds total entry lifetime in Redis.
type Config struct {
	LocalTTL  time.Duration `mapstructure:"local_ttl"`
	RemoteTTL time.Duration `mapstructure:"remote_ttl"`
}

func DefaultConfig() Config {
	return Config{
		LocalTTL:  5 * time.Minute,
		RemoteTTL: time.Hour,
	}
}

// TwoLevel is one process's view of the cache. Values are stored as
// JSON bytes in both tiers so the two stay byte-compatible.
type TwoLevel struct {
	local     *ttlcache.Cache[string, []byte]
	remote    redis.UniversalClient
	remoteTTL time.Duration
}

// New creates a cache over the given Redis client. A nil client gives
// a purely local cache, which single-process deployments and tests
// use.
func New(remote redis.UniversalClient, cfg Config) *TwoLevel {
	local := ttlcache.New(
		ttlcache.WithTTL[string, []byte](cfg.LocalTTL),
	)
	go local.Start()

	return &TwoLevel{
		local:     local,
		remote:    remote,
		remoteTTL: cfg.RemoteTTL,
	}
}

// Close stops the local tier's expiry loop.
func (c *TwoLevel) Close() {
	c.local.Stop()
}

// GetBytes returns the raw entry. The local tier is consulted first; a
// local hit never touches Redis.
func (c *TwoLevel) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	if item := c.local.Get(key); item != nil {
		cacheHits.Add(ctx, 1, metric.WithAttributes(localTier))
		return item.Value(), true
	}
	cacheMisses.Add(ctx, 1, metric.WithAttributes(localTier))

	if c.remote == nil {
		return nil, false
	}

	data, err := c.remote.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			cacheErrors.Add(ctx, 1)
			logctx.FromContext(ctx).Warn("second-level cache read failed", "key", key, "error", err.Error())
		}
		cacheMisses.Add(ctx, 1, metric.WithAttributes(remoteTier))
		return nil, false
	}
	cacheHits.Add(ctx, 1, metric.WithAttributes(remoteTier))

	c.local.Set(key, data, ttlcache.DefaultTTL)
	return data, true
}

// Get unmarshals the entry at key into dest and reports whether a
// usable entry was found.
func (c *TwoLevel) Get(ctx context.Context, key string, dest any) bool {
	data, ok := c.GetBytes(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logctx.FromContext(ctx).Warn("cache entry failed to decode, dropping", "key", key, "error", err.Error())
		c.Remove(ctx, key)
		return false
	}
	return true
}

// Set stores the value in both tiers. The local tier is updated even
// when the Redis write fails, so the writing process always reads its
// own writes.
func (c *TwoLevel) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}

	c.local.Set(key, data, ttlcache.DefaultTTL)

	if c.remote != nil {
		if err := c.remote.Set(ctx, key, data, c.remoteTTL).Err(); err != nil {
			cacheErrors.Add(ctx, 1)
			logctx.FromContext(ctx).Warn("second-level cache write failed", "key", key, "error", err.Error())
		}
	}
	return nil
}

// Remove drops the entry from both tiers. Invalidation is removal, not
// update: the next reader repopulates from storage.
func (c *TwoLevel) Remove(ctx context.Context, key string) {
	c.local.Delete(key)

	if c.remote != nil {
		if err := c.remote.Del(ctx, key).Err(); err != nil {
			cacheErrors.Add(ctx, 1)
			logctx.FromContext(ctx).Warn("second-level cache delete failed", "key", key, "error", err.Error())
		}
	}
}

// InvalidateFirstLevel drops every local entry, forcing reads back
// through Redis.
func (c *TwoLevel) InvalidateFirstLevel() {
	c.local.DeleteAll()
}
