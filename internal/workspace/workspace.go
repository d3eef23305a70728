package workspace

import (
	"os"
	"path/filepath"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
)

// Markers identify a project root. The nearest ancestor holding any of them wins.
var Markers = []string{"package.json", "tsconfig.json", ".git"}

// Resolve returns the absolute project root. An explicit path is used as-is
// when it is a directory; otherwise the search starts at the working
// directory and walks up until a marker is found.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", tserrors.NoWorkspacef("invalid workspace %q: %v", explicit, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", tserrors.NoWorkspacef("workspace %s is not a directory", abs)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", tserrors.NoWorkspacef("cannot determine working directory: %v", err)
	}
	return FindRoot(cwd)
}

// FindRoot walks from start towards the filesystem root and returns the
// first directory containing a marker.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", tserrors.NoWorkspacef("invalid path %q: %v", start, err)
	}

	for {
		if hasMarker(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", tserrors.NoWorkspacef("no project found at or above %s", start)
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	for _, marker := range Markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
