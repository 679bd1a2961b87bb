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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.Cache.LocalTTL)
	require.Equal(t, time.Hour, cfg.Cache.RemoteTTL)
	require.Empty(t, cfg.Redis.Addr)
	require.Zero(t, cfg.Sweep.Interval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CORAL_REDIS_ADDR", "redis-1:6379")
	t.Setenv("CORAL_REDIS_PASSWORD", "sekret")
	t.Setenv("CORAL_REDIS_DB", "3")
	t.Setenv("CORAL_CACHE_LOCAL_TTL", "90s")
	t.Setenv("CORAL_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "redis-1:6379", cfg.Redis.Addr)
	require.Equal(t, "sekret", cfg.Redis.Password)
	require.Equal(t, 3, cfg.Redis.DB)
	require.Equal(t, 90*time.Second, cfg.Cache.LocalTTL)
	require.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
}
