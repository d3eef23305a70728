package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/report"
)

var churnCmd = &cobra.Command{
	Use:   "churn",
	Short: "Rank JavaScript files by how often they changed",
	Long: `Count the commits touching each .js/.jsx file in git history and list
the files that still exist, most changed first.

Examples:
  # Top ten conversion candidates
  tslens churn --limit 10`,
	Args: cobra.NoArgs,
	RunE: runChurn,
}

func runChurn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	started := time.Now()
	records, err := newRanker().ComputeChurn(ctx, root)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), &report.Snapshot{
		Root:        root,
		Churn:       records,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}, output.SectionChurn)
}
