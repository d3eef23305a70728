package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/tslens/internal/churn"
	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/logging"
)

// History implements churn.HistoryProvider using the local git binary.
type History struct {
	gitPath string
	logger  *logrus.Logger
}

var _ churn.HistoryProvider = (*History)(nil)

// NewHistory creates a History that runs "git" from PATH.
func NewHistory(logger *logrus.Logger) *History {
	return NewHistoryWithBinary("git", logger)
}

// NewHistoryWithBinary creates a History that runs the given git executable.
func NewHistoryWithBinary(gitPath string, logger *logrus.Logger) *History {
	if logger == nil {
		logger = logging.Discard()
	}
	return &History{gitPath: gitPath, logger: logger}
}

// TouchCounts returns, for every path under root ending in one of extensions,
// the number of commits whose name-only listing includes it. Paths are
// relative to root and ordered by first appearance in git log, newest commit
// first.
func (h *History) TouchCounts(ctx context.Context, root string, extensions []string) ([]churn.ChangeRecord, error) {
	start := time.Now()

	if _, err := exec.LookPath(h.gitPath); err != nil {
		return nil, tserrors.HistoryUnavailablef(err, "git executable %q not found", h.gitPath)
	}
	if err := h.isRepository(ctx, root); err != nil {
		return nil, err
	}

	// --pretty=format: suppresses commit metadata, leaving blank-line
	// separated blocks of touched paths. --relative scopes the listing to
	// root and makes the paths relative to it.
	cmd := exec.CommandContext(ctx, h.gitPath,
		"-c", "core.quotepath=off",
		"log", "--relative", "--pretty=format:", "--name-only")
	cmd.Dir = root

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, tserrors.HistoryUnavailablef(err, "git log failed (stderr: %s)",
				strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, tserrors.HistoryUnavailablef(err, "git log failed")
	}

	records, err := countTouches(bytes.NewReader(output), extensions)
	if err != nil {
		return nil, tserrors.HistoryUnavailablef(err, "parse git log output")
	}

	h.logger.WithFields(logrus.Fields{
		"root":     root,
		"files":    len(records),
		"duration": time.Since(start),
	}).Debug("Collected touch counts from git log")

	return records, nil
}

// isRepository verifies root is inside a git working tree.
func (h *History) isRepository(ctx context.Context, root string) error {
	cmd := exec.CommandContext(ctx, h.gitPath, "rev-parse", "--is-inside-work-tree")
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return tserrors.HistoryUnavailablef(err, "%s is not a git repository", root)
	}
	if strings.TrimSpace(string(output)) != "true" {
		return tserrors.HistoryUnavailablef(nil, "%s is not inside a git work tree", root)
	}
	return nil
}

// countTouches aggregates name-only git log output. Every non-empty line is
// one path touched by one commit.
func countTouches(r io.Reader, extensions []string) ([]churn.ChangeRecord, error) {
	index := make(map[string]int)
	var records []churn.ChangeRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		path := unquotePath(line)
		if !hasExtension(path, extensions) {
			continue
		}
		if i, ok := index[path]; ok {
			records[i].Changes++
			continue
		}
		index[path] = len(records)
		records = append(records, churn.ChangeRecord{Path: path, Changes: 1})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}

	if records == nil {
		records = []churn.ChangeRecord{}
	}
	return records, nil
}

// unquotePath undoes git's C-style quoting of paths with unusual characters.
func unquotePath(line string) string {
	if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
		if unquoted, err := strconv.Unquote(line); err == nil {
			return unquoted
		}
	}
	return line
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
