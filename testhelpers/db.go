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

package testhelpers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coralcms/coral/cmsdb"
	cmsdbmigrations "github.com/coralcms/coral/cmsdb/migrations"
)

// SetupTestCMSDB creates a clean throwaway content database with
// migrations applied. Returns a Store and registers cleanup with
// t.Cleanup.
func SetupTestCMSDB(t *testing.T) *cmsdb.Store {
	t.Helper()

	ctx := context.Background()
	dbName := fmt.Sprintf("test_cmsdb_%d_%d", time.Now().Unix(), rand.Intn(10000))

	// Get connection details from environment
	host := getEnvOrDefault("CMSDB_HOST", "localhost")
	port := getEnvOrDefault("CMSDB_PORT", "5432")
	user := getEnvOrDefault("CMSDB_USER", os.Getenv("USER"))
	baseDB := getEnvOrDefault("CMSDB_DBNAME", "testing_cmsdb")

	password := os.Getenv("CMSDB_PASSWORD")
	basePool, err := pgxpool.New(ctx, connString(user, password, host, port, baseDB))
	if err != nil {
		t.Fatalf("Failed to connect to base database: %v", err)
	}

	_, err = basePool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	testPool, err := pgxpool.New(ctx, connString(user, password, host, port, dbName))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := cmsdbmigrations.RunMigrationsUp(ctx, testPool); err != nil {
		testPool.Close()
		t.Fatalf("Failed to run cmsdb migrations: %v", err)
	}

	t.Cleanup(func() {
		testPool.Close()

		_, err := basePool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
		if err != nil {
			slog.Error("Failed to drop test database", slog.String("dbName", dbName), slog.Any("error", err))
		}
		basePool.Close()
	})

	return cmsdb.NewStore(testPool)
}

func connString(user, password, host, port, db string) string {
	if password != "" {
		return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, db)
	}
	return fmt.Sprintf("postgresql://%s@%s:%s/%s", user, host, port, db)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
