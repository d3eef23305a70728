package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/storage"
	"github.com/rohankatakam/tslens/internal/watch"
)

var watchRecord bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the report whenever source files change",
	Long: `Watch the project for .ts/.tsx/.js/.jsx changes and print a fresh report
after each burst of changes. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "save every snapshot to the history store")
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(cfg.Output.Format, out)
	if err != nil {
		return err
	}

	var store storage.Store = storage.NopStore{}
	if watchRecord {
		store, err = storage.Open(cfg.Storage, logger)
		if err != nil {
			return err
		}
	}
	defer store.Close()

	agg := newAggregator(root)
	watcher, err := watch.New(root, agg, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	updates, unsubscribe := agg.Subscribe()
	defer unsubscribe()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return agg.Run(ctx) })
	g.Go(func() error { return watcher.Run(ctx) })
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap := <-updates:
				if cfg.Output.Format == output.FormatText || cfg.Output.Format == "" {
					fmt.Fprintf(out, "\n[%s] %s\n", snap.CompletedAt.Format("15:04:05"), snap.Root)
				}
				if err := formatter.Format(output.NewReport(snap, output.SectionAll, cfg.Output.Limit), out); err != nil {
					return err
				}
				if watchRecord {
					if err := saveSnapshot(ctx, store, snap); err != nil {
						logger.WithError(err).Warn("Failed to record snapshot")
					}
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !isCancel(err) {
		return err
	}
	return nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
