package report

import (
	"errors"
	"time"

	"github.com/rohankatakam/tslens/internal/census"
	"github.com/rohankatakam/tslens/internal/churn"
)

// Snapshot bundles one census and one churn result for a root. A stored
// snapshot is shared between readers and must not be modified.
type Snapshot struct {
	Root            string
	Census          census.FileCount
	TypedPercentage float64
	Churn           []churn.ChangeRecord

	// CensusErr and ChurnErr hold each analyzer's failure. When set, the
	// corresponding result fields are zero.
	CensusErr error
	ChurnErr  error

	// Generation increases by one for every stored snapshot.
	Generation  uint64
	StartedAt   time.Time
	CompletedAt time.Time
}

// Err joins both analyzer failures, or returns nil when both succeeded.
func (s *Snapshot) Err() error {
	return errors.Join(s.CensusErr, s.ChurnErr)
}

// HasChurn reports whether the churn ranking succeeded with at least one file.
func (s *Snapshot) HasChurn() bool {
	return s.ChurnErr == nil && len(s.Churn) > 0
}
