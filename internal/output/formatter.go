package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/rohankatakam/tslens/internal/storage"
)

// Formatter defines output formatting interface
type Formatter interface {
	Format(r *Report, w io.Writer) error
	FormatHistory(records []*storage.Record, w io.Writer) error
}

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NewFormatter creates the formatter for format. Text output is decorated
// only when w is a terminal.
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{Decorate: IsTerminal(w)}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
