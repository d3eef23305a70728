package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rohankatakam/tslens/internal/census"
	"github.com/rohankatakam/tslens/internal/churn"
	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/git"
	"github.com/rohankatakam/tslens/internal/output"
	"github.com/rohankatakam/tslens/internal/report"
	"github.com/rohankatakam/tslens/internal/workspace"
)

// resolveRoot returns the project root for this invocation.
func resolveRoot() (string, error) {
	root, err := workspace.Resolve(cfg.Workspace)
	if err != nil {
		return "", err
	}
	logger.WithField("root", root).Debug("Resolved workspace")
	return root, nil
}

func newCensus() *census.Census {
	return census.New(logger)
}

func newRanker() *churn.Ranker {
	return churn.NewRanker(git.NewHistory(logger), logger)
}

func newAggregator(root string) *report.Aggregator {
	return report.NewAggregator(root, newCensus(), newRanker(), report.Options{
		CacheTTL: cfg.Cache.TTL,
		Debounce: cfg.Watch.Debounce,
	}, logger)
}

// render writes snap to w in the configured format.
func render(w io.Writer, snap *report.Snapshot, sections output.Section) error {
	formatter, err := output.NewFormatter(cfg.Output.Format, w)
	if err != nil {
		return err
	}
	return formatter.Format(output.NewReport(snap, sections, cfg.Output.Limit), w)
}

// describeError adds a hint for the failure categories users can act on.
// With detailed set, structured errors include their cause, context and
// stack trace.
func describeError(err error, detailed bool) string {
	msg := err.Error()
	var structured *tserrors.Error
	if detailed && errors.As(err, &structured) {
		msg = structured.DetailedString()
	}

	switch tserrors.GetType(err) {
	case tserrors.ErrorTypeWorkspace:
		return fmt.Sprintf("%s\nRun tslens inside a project (package.json, tsconfig.json or .git) or pass --workspace", msg)
	case tserrors.ErrorTypeHistory:
		return fmt.Sprintf("%s\nChurn ranking needs git and at least one commit", msg)
	case tserrors.ErrorTypeScan:
		return fmt.Sprintf("%s\nCheck that the project directory is readable", msg)
	case tserrors.ErrorTypeConfig, tserrors.ErrorTypeValidation:
		return fmt.Sprintf("%s\nRun 'tslens config show' to inspect the effective configuration", msg)
	default:
		return msg
	}
}

// exitCode is 2 for fatal errors (no workspace, unreadable configuration) and 1
// otherwise.
func exitCode(err error) int {
	if tserrors.IsFatal(err) {
		return 2
	}
	return 1
}
