package churn

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/logging"
)

// TargetExtensions are the suffixes ranked as refactor candidates.
var TargetExtensions = []string{".js", ".jsx"}

// ChangeRecord is the number of commits that touched one file.
type ChangeRecord struct {
	Path    string `json:"path" yaml:"path"`
	Changes int    `json:"changes" yaml:"changes"`
}

// HistoryProvider returns per-file commit-touch counts for files under root
// whose path ends in one of extensions. Records come back in the order the
// underlying history emits them; paths are relative to root.
type HistoryProvider interface {
	TouchCounts(ctx context.Context, root string, extensions []string) ([]ChangeRecord, error)
}

// Ranker orders JavaScript files by how often they changed.
type Ranker struct {
	history HistoryProvider
	logger  *logrus.Logger
}

// NewRanker creates a Ranker backed by the given history provider.
func NewRanker(history HistoryProvider, logger *logrus.Logger) *Ranker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ranker{history: history, logger: logger}
}

// ComputeChurn returns the ranked change list for root.
//
// A provider failure is returned as HistoryUnavailable with a nil list. When
// the history has no matching files the result is an empty, non-nil list.
func (r *Ranker) ComputeChurn(ctx context.Context, root string) ([]ChangeRecord, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, tserrors.HistoryUnavailablef(err, "resolve repository root %s", root)
	}

	records, err := r.history.TouchCounts(ctx, absRoot, TargetExtensions)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, tserrors.ErrHistoryUnavailable) {
			return nil, err
		}
		return nil, tserrors.HistoryUnavailablef(err, "read history for %s", absRoot)
	}

	ranked := Rank(records)

	existing := make([]ChangeRecord, 0, len(ranked))
	dropped := 0
	for _, rec := range ranked {
		ok, err := exists(filepath.Join(absRoot, filepath.FromSlash(rec.Path)))
		if err != nil {
			r.logger.WithError(err).WithField("path", rec.Path).Debug("Cannot stat history path, skipping")
		}
		if !ok {
			dropped++
			continue
		}
		existing = append(existing, rec)
	}

	r.logger.WithFields(logrus.Fields{
		"root":    absRoot,
		"files":   len(existing),
		"deleted": dropped,
	}).Debug("Churn ranking completed")

	return existing, nil
}

// Rank returns a copy of records sorted by Changes descending. Equal counts
// keep their input order.
func Rank(records []ChangeRecord) []ChangeRecord {
	ranked := make([]ChangeRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Changes > ranked[j].Changes
	})
	return ranked
}

// exists reports whether path is present on disk. Only a definite "not
// exist" is reported as false without an error.
func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
