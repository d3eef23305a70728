package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/tslens/internal/config"
	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/report"
)

// Common errors
var (
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Record is one stored snapshot summary.
type Record struct {
	ID              string    `json:"id" yaml:"id" db:"id"`
	Root            string    `json:"root" yaml:"root" db:"root"`
	Commit          string    `json:"commit,omitempty" yaml:"commit,omitempty" db:"commit_sha"`
	TypedPercentage float64   `json:"typed_percentage" yaml:"typed_percentage" db:"typed_percentage"`
	Typed           int       `json:"typed" yaml:"typed" db:"typed"`
	Dynamic         int       `json:"dynamic" yaml:"dynamic" db:"dynamic"`
	ChurnFiles      int       `json:"churn_files" yaml:"churn_files" db:"churn_files"`
	TopFile         string    `json:"top_file,omitempty" yaml:"top_file,omitempty" db:"top_file"`
	TopChanges      int       `json:"top_changes,omitempty" yaml:"top_changes,omitempty" db:"top_changes"`
	RecordedAt      time.Time `json:"recorded_at" yaml:"recorded_at" db:"recorded_at"`
}

// NewRecord summarises a snapshot whose census succeeded. commit may be
// empty when the root has no git history.
func NewRecord(snap *report.Snapshot, commit string) *Record {
	rec := &Record{
		ID:              uuid.NewString(),
		Root:            snap.Root,
		Commit:          commit,
		TypedPercentage: snap.TypedPercentage,
		Typed:           snap.Census.Typed,
		Dynamic:         snap.Census.Dynamic,
		ChurnFiles:      len(snap.Churn),
		RecordedAt:      snap.CompletedAt.UTC(),
	}
	if len(snap.Churn) > 0 {
		rec.TopFile = snap.Churn[0].Path
		rec.TopChanges = snap.Churn[0].Changes
	}
	return rec
}

// Store persists snapshot summaries per root.
type Store interface {
	// Save stores rec. An empty ID is filled in.
	Save(ctx context.Context, rec *Record) error
	// List returns the newest records for root first. limit <= 0 returns all.
	List(ctx context.Context, root string, limit int) ([]*Record, error)
	// Close connection
	Close() error
}

// Open returns the store selected by cfg.Type.
func Open(cfg config.StorageConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Type {
	case "", "none":
		return NopStore{}, nil
	case "bolt":
		store, err := NewBoltStore(cfg.Path, logger)
		if err != nil {
			return nil, tserrors.StorageErrorf(err, "open bolt store %s", cfg.Path)
		}
		return store, nil
	case "sqlite":
		store, err := NewSQLiteStore(cfg.Path, logger)
		if err != nil {
			return nil, tserrors.StorageErrorf(err, "open sqlite store %s", cfg.Path)
		}
		return store, nil
	default:
		return nil, tserrors.StorageErrorf(ErrUnknownBackend, "storage type %q", cfg.Type)
	}
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Save(context.Context, *Record) error { return nil }

func (NopStore) List(context.Context, string, int) ([]*Record, error) { return nil, nil }

func (NopStore) Close() error { return nil }

func ensureID(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
}
