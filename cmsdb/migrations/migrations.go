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

// Package migrations embeds and applies the cmsdb schema migrations.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/coralcms/coral/migrations"
)

//go:embed *.sql
var migrationFiles embed.FS

const migrationsTable = "gomigrate_cmsdb"

// RunMigrationsUp applies all up migrations using embedded migration files.
func RunMigrationsUp(ctx context.Context, pool *pgxpool.Pool) error {
	sourceDriver, err := iofs.New(migrationFiles, ".")
	if err != nil {
		return fmt.Errorf("failed to create iofs driver: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() {
		_ = sqlDB.Close()
	}()

	dbDriver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to create pgx driver: %w", err)
	}
	defer func() {
		_ = dbDriver.Close()
	}()

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	_, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return errors.New("migration is dirty, please fix it before proceeding")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// CheckVersion verifies that cmsdb is at the latest embedded migration
// version and, in wait mode, blocks until another process brings it
// there or the timeout passes.
func CheckVersion(ctx context.Context, pool *pgxpool.Pool, options ...migrations.CheckOption) error {
	opts := migrations.DefaultCheckOptions()
	for _, option := range options {
		option(&opts)
	}
	if opts.Mode == migrations.CheckModeSkip {
		slog.Debug("Migration version checking skipped for cmsdb")
		return nil
	}

	expected, err := latestVersion()
	if err != nil {
		return err
	}

	deadline := time.Now().Add(opts.Timeout)
	for {
		current, dirty, err := currentVersion(ctx, pool)
		switch {
		case err != nil:
			slog.Warn("cmsdb migration version query failed", slog.Any("error", err))
		case dirty && !opts.AllowDirty:
			slog.Warn("cmsdb migration state is dirty")
		case current == expected:
			return nil
		default:
			slog.Info("cmsdb migration version mismatch",
				slog.Uint64("current", uint64(current)),
				slog.Uint64("expected", uint64(expected)))
		}

		if opts.Mode == migrations.CheckModeWarn {
			slog.Warn("continuing despite cmsdb migration version mismatch")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("cmsdb migrations did not reach version %d within %s", expected, opts.Timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}
}

// latestVersion finds the highest version number among the embedded
// migration files (names are <version>_<name>.<up|down>.sql).
func latestVersion() (uint, error) {
	entries, err := fs.ReadDir(migrationFiles, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	var versions []uint
	for _, entry := range entries {
		name := entry.Name()
		idx := strings.Index(name, "_")
		if idx <= 0 {
			continue
		}
		v, err := strconv.ParseUint(name[:idx], 10, 32)
		if err != nil {
			continue
		}
		versions = append(versions, uint(v))
	}
	if len(versions) == 0 {
		return 0, errors.New("no embedded migration files found")
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions[len(versions)-1], nil
}

func currentVersion(ctx context.Context, pool *pgxpool.Pool) (uint, bool, error) {
	var version int64
	var dirty bool
	err := pool.QueryRow(ctx,
		`SELECT version, dirty FROM `+migrationsTable+` ORDER BY version DESC LIMIT 1`).
		Scan(&version, &dirty)
	if err != nil {
		return 0, false, err
	}
	return uint(version), dirty, nil
}
