package churn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
)

type fakeHistory struct {
	records []ChangeRecord
	err     error

	calls         int
	gotRoot       string
	gotExtensions []string
}

func (f *fakeHistory) TouchCounts(_ context.Context, root string, extensions []string) ([]ChangeRecord, error) {
	f.calls++
	f.gotRoot = root
	f.gotExtensions = extensions
	return f.records, f.err
}

func touch(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

func TestComputeChurn_DropsDeletedFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "util.js")

	history := &fakeHistory{records: []ChangeRecord{
		{Path: "old.js", Changes: 3},
		{Path: "util.js", Changes: 5},
	}}

	got, err := NewRanker(history, nil).ComputeChurn(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []ChangeRecord{{Path: "util.js", Changes: 5}}, got)
	assert.Equal(t, TargetExtensions, history.gotExtensions)
	assert.True(t, filepath.IsAbs(history.gotRoot))
}

func TestComputeChurn_SortedDescending(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.js", "src/b.jsx", "src/c.js", "d.js")

	history := &fakeHistory{records: []ChangeRecord{
		{Path: "a.js", Changes: 1},
		{Path: "src/b.jsx", Changes: 7},
		{Path: "src/c.js", Changes: 3},
		{Path: "d.js", Changes: 3},
	}}

	got, err := NewRanker(history, nil).ComputeChurn(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i := 0; i+1 < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Changes, got[i+1].Changes)
	}
	// equal counts keep provider order
	assert.Equal(t, "src/c.js", got[1].Path)
	assert.Equal(t, "d.js", got[2].Path)
}

func TestComputeChurn_EmptyHistoryIsSuccess(t *testing.T) {
	got, err := NewRanker(&fakeHistory{}, nil).ComputeChurn(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeChurn_ProviderFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed history error", tserrors.HistoryUnavailablef(nil, "not a git repository")},
		{"plain error", errors.New("exit status 128")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRanker(&fakeHistory{err: tt.err}, nil).ComputeChurn(context.Background(), t.TempDir())
			require.Error(t, err)
			assert.ErrorIs(t, err, tserrors.ErrHistoryUnavailable)
			assert.Nil(t, got)
		})
	}
}

func TestComputeChurn_ContextErrorPassesThrough(t *testing.T) {
	_, err := NewRanker(&fakeHistory{err: context.Canceled}, nil).ComputeChurn(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, tserrors.ErrHistoryUnavailable)
}

func TestComputeChurn_Idempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.js", "b.js")
	history := &fakeHistory{records: []ChangeRecord{{Path: "b.js", Changes: 2}, {Path: "a.js", Changes: 4}}}
	r := NewRanker(history, nil)

	first, err := r.ComputeChurn(context.Background(), root)
	require.NoError(t, err)
	second, err := r.ComputeChurn(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, history.calls)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []ChangeRecord{{Path: "a.js", Changes: 1}, {Path: "b.js", Changes: 2}}
	out := Rank(in)

	assert.Equal(t, "a.js", in[0].Path)
	assert.Equal(t, "b.js", out[0].Path)
}
