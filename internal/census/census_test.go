package census

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
)

// writeTree creates empty files at the given root-relative paths.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("// fixture\n"), 0644))
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		typed   int
		dynamic int
	}{
		{
			name:    "mixed sources",
			files:   []string{"src/a.ts", "src/b.tsx", "src/c.js"},
			typed:   2,
			dynamic: 1,
		},
		{
			name:    "nested directories",
			files:   []string{"src/app/components/Button.tsx", "src/app/legacy/util.js", "src/app/legacy/view.jsx"},
			typed:   1,
			dynamic: 2,
		},
		{
			name:  "files outside src are ignored",
			files: []string{"index.ts", "scripts/build.js", "lib/src/a.ts", "src/real.ts"},
			typed: 1,
		},
		{
			name: "node_modules and dist excluded at any depth",
			files: []string{
				"src/node_modules/pkg/index.js",
				"src/feature/node_modules/pkg/types.ts",
				"src/dist/bundle.js",
				"src/feature/dist/out.ts",
				"node_modules/src/a.ts",
				"dist/src/b.js",
				"src/kept.js",
			},
			dynamic: 1,
		},
		{
			name:  "suffix match is case-sensitive",
			files: []string{"src/Upper.TS", "src/Upper.JS", "src/lower.ts"},
			typed: 1,
		},
		{
			name:  "other extensions ignored",
			files: []string{"src/styles.css", "src/data.json", "src/a.mjs", "src/b.mts", "src/c.d.ts"},
			typed: 1,
		},
		{
			name:  "hidden entries are not matched",
			files: []string{"src/.cache/a.ts", "src/.eslintrc.js", "src/visible.ts"},
			typed: 1,
		},
		{
			name: "no matching files",
			files: []string{"README.md", "src/readme.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files...)

			count, err := New(nil).Scan(context.Background(), root)
			require.NoError(t, err)
			assert.Equal(t, tt.typed, count.Typed, "typed")
			assert.Equal(t, tt.dynamic, count.Dynamic, "dynamic")
		})
	}
}

func TestComputeCensus(t *testing.T) {
	t.Run("two typed one dynamic", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "src/a.ts", "src/b.tsx", "src/c.js")

		pct, err := New(nil).ComputeCensus(context.Background(), root)
		require.NoError(t, err)
		assert.InDelta(t, 66.67, pct, 0.005)
	})

	t.Run("no src directory is zero, not a failure", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "index.js")

		pct, err := New(nil).ComputeCensus(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, 0.0, pct)
	})

	t.Run("all typed", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "src/a.ts", "src/b/c.ts")

		pct, err := New(nil).ComputeCensus(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, 100.0, pct)
	})

	t.Run("idempotent", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "src/a.ts", "src/b.js", "src/c.jsx")
		c := New(nil)

		first, err := c.ComputeCensus(context.Background(), root)
		require.NoError(t, err)
		second, err := c.ComputeCensus(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestScanFailures(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(nil).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.ErrorIs(t, err, tserrors.ErrScanFailure)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("root is a file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "file.ts")

		_, err := New(nil).ComputeCensus(context.Background(), filepath.Join(root, "file.ts"))
		assert.ErrorIs(t, err, tserrors.ErrScanFailure)
	})

	t.Run("unreadable src subtree", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		root := t.TempDir()
		writeTree(t, root, "src/locked/a.ts")
		locked := filepath.Join(root, "src", "locked")
		require.NoError(t, os.Chmod(locked, 0))
		t.Cleanup(func() { os.Chmod(locked, 0755) })

		_, err := New(nil).Scan(context.Background(), root)
		assert.ErrorIs(t, err, tserrors.ErrScanFailure)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "src/a.ts")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(nil).Scan(ctx, root)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, tserrors.ErrScanFailure)
	})
}

func TestScan_SymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	writeTree(t, target, "src/a.ts", "src/b.js")
	link := filepath.Join(dir, "project")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	want, err := New(nil).Scan(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, FileCount{Typed: 1, Dynamic: 1}, want)

	got, err := New(nil).Scan(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	pct, err := New(nil).ComputeCensus(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, 50.0, pct)
}

func TestScanFailures_CarryRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := New(nil).Scan(context.Background(), missing)

	var structured *tserrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, missing, structured.Context["root"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		rel  string
		want Family
	}{
		{"src/a.ts", FamilyTyped},
		{"src/x/y/z.tsx", FamilyTyped},
		{"src/a.js", FamilyDynamic},
		{"src/a/b.jsx", FamilyDynamic},
		{"a.ts", FamilyNone},
		{"lib/a.js", FamilyNone},
		{"src/node_modules/a.js", FamilyNone},
		{"src/a/dist/b.ts", FamilyNone},
		{"src/a.tsx.bak", FamilyNone},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rel))
		})
	}
}

func TestPatternsAreValid(t *testing.T) {
	for _, p := range append(append([]string{}, TypedPatterns...), DynamicPatterns...) {
		assert.True(t, doublestar.ValidatePattern(p), p)
	}
}

func TestFileCountPercentage(t *testing.T) {
	assert.Equal(t, 0.0, FileCount{}.Percentage())
	assert.Equal(t, 50.0, FileCount{Typed: 1, Dynamic: 1}.Percentage())
	assert.Equal(t, 25.0, FileCount{Typed: 1, Dynamic: 3}.Percentage())
	assert.Equal(t, 0.0, FileCount{Dynamic: 4}.Percentage())
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyTyped, FamilyOf("Button.tsx"))
	assert.Equal(t, FamilyTyped, FamilyOf("index.ts"))
	assert.Equal(t, FamilyDynamic, FamilyOf("util.js"))
	assert.Equal(t, FamilyDynamic, FamilyOf("View.jsx"))
	assert.Equal(t, FamilyNone, FamilyOf("README.md"))
	assert.Equal(t, FamilyNone, FamilyOf("a.JS"))
}
