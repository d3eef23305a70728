package output

import (
	"fmt"
	"io"

	"github.com/rohankatakam/tslens/internal/storage"
)

const (
	bold  = "\033[1m"
	reset = "\033[0m"
)

// TextFormatter renders the plain listing shown in a terminal.
type TextFormatter struct {
	// Decorate enables ANSI emphasis on headings
	Decorate bool
}

func (f *TextFormatter) Format(r *Report, w io.Writer) error {
	if r.Has(SectionCensus) {
		if r.TypedPercentage == nil {
			fmt.Fprintf(w, "error: %s\n", errorText(r.CensusError))
		} else {
			fmt.Fprintf(w, "%s\n", f.heading(fmt.Sprintf("TypeScript Percentage: %.2f%%", *r.TypedPercentage)))
		}
	}

	if r.Has(SectionChurn) {
		switch {
		case r.Churn == nil:
			fmt.Fprintf(w, "error: %s\n", errorText(r.ChurnError))
		case len(*r.Churn) == 0:
			fmt.Fprintf(w, "No JavaScript files to refactor.\n")
		default:
			fmt.Fprintf(w, "%s\n", f.heading("Most Changed Files:"))
			for _, rec := range *r.Churn {
				fmt.Fprintf(w, "  %s (%d changes)\n", rec.Path, rec.Changes)
			}
		}
	}

	return nil
}

func (f *TextFormatter) FormatHistory(records []*storage.Record, w io.Writer) error {
	if len(records) == 0 {
		fmt.Fprintf(w, "No snapshots recorded.\n")
		return nil
	}

	fmt.Fprintf(w, "%s\n", f.heading(fmt.Sprintf("%-20s  %-8s  %7s  %5s  %5s  %s", "RECORDED", "COMMIT", "TYPED%", "TS", "JS", "TOP FILE")))
	for _, rec := range records {
		commit := rec.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		if commit == "" {
			commit = "-"
		}
		top := "-"
		if rec.TopFile != "" {
			top = fmt.Sprintf("%s (%d changes)", rec.TopFile, rec.TopChanges)
		}
		fmt.Fprintf(w, "%-20s  %-8s  %6.2f%%  %5d  %5d  %s\n",
			rec.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			commit,
			rec.TypedPercentage,
			rec.Typed,
			rec.Dynamic,
			top,
		)
	}
	return nil
}

func errorText(msg string) string {
	if msg == "" {
		return "unknown failure"
	}
	return msg
}

func (f *TextFormatter) heading(s string) string {
	if !f.Decorate {
		return s
	}
	return bold + s + reset
}
