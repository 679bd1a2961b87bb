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
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxotel"

	cmsdbmigrations "github.com/coralcms/coral/cmsdb/migrations"
	"github.com/coralcms/coral/internal/dbopen"
	"github.com/coralcms/coral/migrations"
)

// ConnectToCMSDB opens a pool against the database described by the
// CMSDB_* environment variables and verifies the schema version.
func ConnectToCMSDB(ctx context.Context, options ...migrations.CheckOption) (*pgxpool.Pool, error) {
	connectionString, err := dbopen.GetDatabaseURLFromEnv("CMSDB")
	if err != nil {
		return nil, errors.Join(dbopen.ErrDatabaseNotConfigured, fmt.Errorf("failed to get CMSDB connection string: %w", err))
	}

	pool, err := newConnectionPool(ctx, connectionString)
	if err != nil {
		return nil, err
	}

	if err := cmsdbmigrations.CheckVersion(ctx, pool, options...); err != nil {
		pool.Close()
		return nil, fmt.Errorf("CMSDB migration version check failed: %w", err)
	}

	return pool, nil
}

// CMSDBStore connects and wraps the pool in a Store.
func CMSDBStore(ctx context.Context, options ...migrations.CheckOption) (*Store, error) {
	pool, err := ConnectToCMSDB(ctx, options...)
	if err != nil {
		return nil, err
	}
	return NewStore(pool), nil
}

// poolConfig parses the connection string and attaches the OTel query
// tracer so every statement shows up in traces.
func poolConfig(connectionString string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CMSDB connection string: %w", err)
	}

	cfg.ConnConfig.Tracer = &pgxotel.QueryTracer{
		Name: "cmsdb",
	}
	return cfg, nil
}

func newConnectionPool(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(connectionString)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create CMSDB connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping CMSDB: %w", err)
	}
	return pool, nil
}
