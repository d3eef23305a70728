package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/report"
)

var percentageCmd = &cobra.Command{
	Use:   "percentage",
	Short: "Show the share of TypeScript files under src/",
	Long: `Count .ts/.tsx and .js/.jsx files under src/, ignoring node_modules and
dist, and print the TypeScript percentage.`,
	Args: cobra.NoArgs,
	RunE: runPercentage,
}

func runPercentage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	started := time.Now()
	count, err := newCensus().Scan(ctx, root)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), &report.Snapshot{
		Root:            root,
		Census:          count,
		TypedPercentage: count.Percentage(),
		StartedAt:       started,
		CompletedAt:     time.Now(),
	}, output.SectionCensus)
}
