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

package cmsdb

import (
	"testing"

	"github.com/pgx-contrib/pgxotel"
	"github.com/stretchr/testify/require"
)

func TestPoolConfigAttachesQueryTracer(t *testing.T) {
	cfg, err := poolConfig("postgresql://user@localhost:5432/cmsdb")
	require.NoError(t, err)

	tracer, ok := cfg.ConnConfig.Tracer.(*pgxotel.QueryTracer)
	require.True(t, ok, "expected a pgxotel query tracer on the pool config")
	require.Equal(t, "cmsdb", tracer.Name)
}

func TestPoolConfigRejectsBadConnectionString(t *testing.T) {
	_, err := poolConfig("not a connection string")
	require.Error(t, err)
}
