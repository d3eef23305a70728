package output

import (
	"time"

	"github.com/rohankatakam/tslens/internal/churn"
	"github.com/rohankatakam/tslens/internal/report"
)

// Section selects which analyzer results a Report carries.
type Section int

const (
	SectionCensus Section = 1 << iota
	SectionChurn

	SectionAll = SectionCensus | SectionChurn
)

// Report is the rendered view of a snapshot. Fields of an unselected or
// failed analyzer are nil so structured formats omit them.
type Report struct {
	Root       string    `json:"root" yaml:"root"`
	Generation uint64    `json:"generation" yaml:"generation"`
	Completed  time.Time `json:"completed_at" yaml:"completed_at"`

	TypedPercentage *float64 `json:"typed_percentage,omitempty" yaml:"typed_percentage,omitempty"`
	Typed           *int     `json:"typed,omitempty" yaml:"typed,omitempty"`
	Dynamic         *int     `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	CensusError     string   `json:"census_error,omitempty" yaml:"census_error,omitempty"`

	Churn      *[]churn.ChangeRecord `json:"churn,omitempty" yaml:"churn,omitempty"`
	ChurnError string                `json:"churn_error,omitempty" yaml:"churn_error,omitempty"`

	sections Section
}

// NewReport builds a Report from snap. limit > 0 keeps only the top rows of
// the churn ranking.
func NewReport(snap *report.Snapshot, sections Section, limit int) *Report {
	r := &Report{
		Root:       snap.Root,
		Generation: snap.Generation,
		Completed:  snap.CompletedAt,
		sections:   sections,
	}

	if sections&SectionCensus != 0 {
		if snap.CensusErr != nil {
			r.CensusError = snap.CensusErr.Error()
		} else {
			pct := snap.TypedPercentage
			typed, dynamic := snap.Census.Typed, snap.Census.Dynamic
			r.TypedPercentage = &pct
			r.Typed = &typed
			r.Dynamic = &dynamic
		}
	}

	if sections&SectionChurn != 0 {
		if snap.ChurnErr != nil {
			r.ChurnError = snap.ChurnErr.Error()
		} else {
			rows := snap.Churn
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			files := make([]churn.ChangeRecord, len(rows))
			copy(files, rows)
			r.Churn = &files
		}
	}

	return r
}

// Has reports whether s was requested.
func (r *Report) Has(s Section) bool {
	return r.sections&s != 0
}
