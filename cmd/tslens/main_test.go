package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/tslens/internal/census"
	"github.com/rohankatakam/tslens/internal/config"
	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/logging"
	"github.com/rohankatakam/tslens/internal/report"
	"github.com/rohankatakam/tslens/internal/storage"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"no workspace", tserrors.NoWorkspacef("no project found"), "--workspace"},
		{"history", tserrors.HistoryUnavailablef(nil, "not a git repository"), "at least one commit"},
		{"scan", tserrors.ScanFailuref(nil, "permission denied"), "readable"},
		{"config", tserrors.ConfigErrorf(nil, "bad format"), "config show"},
		{"validation", tserrors.ValidationErrorf("output.limit must not be negative"), "config show"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := describeError(tt.err, false)
			assert.Contains(t, msg, tt.err.Error())
			assert.Contains(t, msg, tt.hint)
		})
	}

	assert.Equal(t, assert.AnError.Error(), describeError(assert.AnError, false))
}

func TestDescribeError_Detailed(t *testing.T) {
	err := tserrors.ScanFailuref(assert.AnError, "scan /work").WithContext("root", "/work")

	msg := describeError(err, true)
	assert.Contains(t, msg, "[HIGH] [SCAN] scan /work")
	assert.Contains(t, msg, "Caused by: "+assert.AnError.Error())
	assert.Contains(t, msg, "root: /work")
	assert.Contains(t, msg, "readable")

	assert.NotContains(t, describeError(err, false), "Caused by")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(tserrors.NoWorkspacef("no project")))
	assert.Equal(t, 2, exitCode(tserrors.ConfigErrorf(nil, "unreadable")))
	assert.Equal(t, 1, exitCode(tserrors.HistoryUnavailablef(nil, "no commits")))
	assert.Equal(t, 1, exitCode(assert.AnError))
}

func TestSaveSnapshot(t *testing.T) {
	logger = logging.Discard()
	store, err := storage.Open(config.StorageConfig{Type: "bolt", Path: filepath.Join(t.TempDir(), "h.bolt")}, logger)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	root := t.TempDir()
	snap := &report.Snapshot{
		Root:            root,
		Census:          census.FileCount{Typed: 1, Dynamic: 1},
		TypedPercentage: 50,
		CompletedAt:     time.Now(),
	}
	require.NoError(t, saveSnapshot(ctx, store, snap))

	failed := &report.Snapshot{Root: root, CensusErr: tserrors.ScanFailuref(nil, "boom"), CompletedAt: time.Now()}
	require.NoError(t, saveSnapshot(ctx, store, failed))

	records, err := store.List(ctx, root, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 50.0, records[0].TypedPercentage)
	assert.Empty(t, records[0].Commit)
}
