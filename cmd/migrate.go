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

package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/coralcms/coral/cmsdb"
	cmsdbmigrations "github.com/coralcms/coral/cmsdb/migrations"
	"github.com/coralcms/coral/migrations"
)

func init() {
	rootCmd.AddCommand(MigrateCmd)
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Apply pending content database migrations and exit",
	RunE:  migrate,
}

func migrate(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(5*time.Minute))
	defer cancel()

	// Skip the version check: this command is what brings the schema up
	// to date in the first place.
	pool, err := cmsdb.ConnectToCMSDB(ctx, migrations.WithCheckMode(migrations.CheckModeSkip))
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("Running cmsdb migrations")
	if err := cmsdbmigrations.RunMigrationsUp(context.Background(), pool); err != nil {
		return err
	}
	slog.Info("cmsdb migrations completed successfully")
	return nil
}
