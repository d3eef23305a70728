package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newRepo initialises an empty repository in a temp dir, skipping the test
// when git is not installed.
func newRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{
		"-c", "user.name=Test User",
		"-c", "user.email=test@example.com",
		"-c", "commit.gpgsign=false",
	}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// commitFiles writes each file with new content and commits them together.
func commitFiles(t *testing.T, dir, message string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = fh.WriteString(message + "\n")
		require.NoError(t, err)
		require.NoError(t, fh.Close())
	}
	gitCmd(t, dir, append([]string{"add", "--"}, files...)...)
	gitCmd(t, dir, "commit", "-q", "-m", message)
}
