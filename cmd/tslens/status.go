package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/git"
	"github.com/rohankatakam/tslens/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tslens configuration and repository information",
	Long:  `Display the resolved workspace, effective settings, git state and history store.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "tslens Status\n")
	fmt.Fprintf(out, "%s\n", strings.Repeat("=", 50))

	root, err := resolveRoot()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWorkspace: %s\n", root)

	// Configuration info
	fmt.Fprintf(out, "\nConfiguration:\n")
	fmt.Fprintf(out, "  Output: %s\n", cfg.Output.Format)
	fmt.Fprintf(out, "  Cache TTL: %s\n", cfg.Cache.TTL)
	fmt.Fprintf(out, "  Watch debounce: %s\n", cfg.Watch.Debounce)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)

	// Repository info
	fmt.Fprintf(out, "\nRepository:\n")
	top, err := git.TopLevel(ctx, root)
	if err != nil {
		fmt.Fprintf(out, "  Status: not a git repository (churn unavailable)\n")
	} else {
		fmt.Fprintf(out, "  Top level: %s\n", top)
		if branch, err := git.CurrentBranch(ctx, root); err == nil {
			fmt.Fprintf(out, "  Branch: %s\n", branch)
		}
		if commit, err := git.HeadCommit(ctx, root); err == nil {
			fmt.Fprintf(out, "  HEAD: %s\n", commit[:min(8, len(commit))])
		} else {
			fmt.Fprintf(out, "  HEAD: no commits yet\n")
		}
	}

	// History store
	fmt.Fprintf(out, "\nHistory:\n")
	fmt.Fprintf(out, "  Storage: %s\n", cfg.Storage.Type)
	if cfg.Storage.Type == "" || cfg.Storage.Type == "none" {
		return nil
	}
	fmt.Fprintf(out, "  Path: %s\n", cfg.Storage.Path)

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		fmt.Fprintf(out, "  Status: unavailable (%v)\n", err)
		return nil
	}
	defer store.Close()

	records, err := store.List(ctx, root, 1)
	if err != nil || len(records) == 0 {
		fmt.Fprintf(out, "  Last snapshot: none\n")
		return nil
	}
	last := records[0]
	fmt.Fprintf(out, "  Last snapshot: %s (%.2f%% TypeScript)\n", last.RecordedAt.Local().Format("2006-01-02 15:04:05"), last.TypedPercentage)
	return nil
}
