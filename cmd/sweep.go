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
	"github.com/coralcms/coral/config"
)

var sweepInterval time.Duration

func init() {
	SweepCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Run continuously at this interval (0 runs once)")
	rootCmd.AddCommand(SweepCmd)
}

var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove unreferenced taxonomy rows",
	Long:  "Delete categories and tags that no post references anymore",
	RunE:  sweep,
}

func sweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The flag wins when set, otherwise the configured interval applies.
	if !cmd.Flags().Changed("interval") {
		sweepInterval = cfg.Sweep.Interval
	}

	servicename := "coral-sweep"
	doneCtx, doneFx, err := setupTelemetry(servicename, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := doneFx(); err != nil {
			slog.Error("Error shutting down telemetry", "error", err.Error())
		}
	}()

	store, err := cmsdb.CMSDBStore(doneCtx)
	if err != nil {
		return err
	}
	defer store.Close()

	for {
		if err := sweepOnce(doneCtx, store); err != nil {
			return err
		}
		if sweepInterval <= 0 {
			return nil
		}
		select {
		case <-doneCtx.Done():
			slog.Info("Sweeper shutting down")
			return nil
		case <-time.After(sweepInterval):
		}
	}
}

func sweepOnce(ctx context.Context, store *cmsdb.Store) error {
	categories, err := store.DeleteOrphanCategories(ctx)
	if err != nil {
		return err
	}
	tags, err := store.DeleteOrphanTags(ctx)
	if err != nil {
		return err
	}
	slog.Info("Sweep completed", "categoriesRemoved", categories, "tagsRemoved", tags)
	return nil
}
