package main

import (

	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded snapshots for this project",
	Long: `List snapshots saved with 'tslens report --record', newest first.
Requires storage.type to be bolt or sqlite.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, root, cfg.Output.Limit)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(cfg.Output.Format, out)
	if err != nil {
		return err
	}
	return formatter.FormatHistory(records, out)
}
