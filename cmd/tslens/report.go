package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/git"
	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/report"
	"github.com/rohankatakam/tslens/internal/storage"
)

var record bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show TypeScript percentage and churn ranking together",
	Long: `Run the census and the churn ranking concurrently and print both.
A failure in one analyzer is reported without hiding the other.

Examples:
  # Print and save a snapshot to the configured history store
  tslens report --record`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&record, "record", false, "save the snapshot to the history store")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	snap, err := newAggregator(root).Snapshot(ctx)
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), snap, output.SectionAll); err != nil {
		return err
	}

	if record {
		store, err := storage.Open(cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		return saveSnapshot(ctx, store, snap)
	}
	return nil
}

// saveSnapshot records snap unless its census failed.
func saveSnapshot(ctx context.Context, store storage.Store, snap *report.Snapshot) error {
	if snap.CensusErr != nil {
		logger.WithError(snap.CensusErr).Warn("Census failed, snapshot not recorded")
		return nil
	}

	commit, err := git.HeadCommit(ctx, snap.Root)
	if err != nil {
		logger.WithError(err).Debug("No HEAD commit for snapshot")
		commit = ""
	}

	rec := storage.NewRecord(snap, commit)
	if err := store.Save(ctx, rec); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"id":     rec.ID,
		"root":   rec.Root,
		"commit": rec.Commit,
	}).Info("Snapshot recorded")
	return nil
}
