package census

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/logging"
)

// Census counts typed and dynamic source files under a project root.
type Census struct {
	logger *logrus.Logger
}

// New creates a Census. A nil logger discards output.
func New(logger *logrus.Logger) *Census {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Census{logger: logger}
}

// Scan walks root and counts the files matching the typed and dynamic
// patterns. Only the top-level src directory is descended into.
//
// A missing src directory yields an empty count. A root that does not exist,
// is not a directory, or cannot be read yields a ScanFailure.
func (c *Census) Scan(ctx context.Context, root string) (FileCount, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return FileCount{}, tserrors.ScanFailuref(err, "resolve scan root %s", root)
	}

	// WalkDir does not descend into a symlinked root
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return FileCount{}, tserrors.ScanFailuref(err, "scan root %s", root).WithContext("root", root)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return FileCount{}, tserrors.ScanFailuref(err, "scan root %s", absRoot).WithContext("root", absRoot)
	}
	if !info.IsDir() {
		return FileCount{}, tserrors.ScanFailuref(fmt.Errorf("not a directory"), "scan root %s", absRoot).WithContext("root", absRoot)
	}

	var count FileCount
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if shouldSkipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		switch Classify(rel) {
		case FamilyTyped:
			count.Typed++
		case FamilyDynamic:
			count.Dynamic++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return FileCount{}, err
		}
		return FileCount{}, tserrors.ScanFailuref(err, "scan %s", absRoot).WithContext("root", absRoot)
	}

	c.logger.WithFields(logrus.Fields{
		"root":     absRoot,
		"typed":    count.Typed,
		"dynamic":  count.Dynamic,
		"duration": time.Since(start),
	}).Debug("Census scan completed")

	return count, nil
}

// ComputeCensus scans root and returns the typed percentage.
func (c *Census) ComputeCensus(ctx context.Context, root string) (float64, error) {
	count, err := c.Scan(ctx, root)
	if err != nil {
		return 0, err
	}
	return count.Percentage(), nil
}

// Classify reports which family a root-relative, slash-separated path belongs
// to under the census patterns.
func Classify(rel string) Family {
	if isExcluded(rel) {
		return FamilyNone
	}
	for _, pattern := range TypedPatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return FamilyTyped
		}
	}
	for _, pattern := range DynamicPatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return FamilyDynamic
		}
	}
	return FamilyNone
}

// shouldSkipDir prunes everything outside src, excluded directories and
// hidden directories.
func shouldSkipDir(rel, name string) bool {
	if !strings.Contains(rel, "/") && rel != SourceDir {
		return true
	}
	return isHidden(name) || isExcludedDir(name)
}

// isExcluded reports whether any segment of rel is hidden or excluded.
func isExcluded(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if isHidden(segment) || isExcludedDir(segment) {
			return true
		}
	}
	return false
}

func isExcludedDir(name string) bool {
	for _, excluded := range ExcludedDirs {
		if name == excluded {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
