package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/tslens/internal/storage"
)

// JSONFormatter writes one indented JSON document per call.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(r *Report, w io.Writer) error {
	return writeJSON(w, r)
}

func (f *JSONFormatter) FormatHistory(records []*storage.Record, w io.Writer) error {
	if records == nil {
		records = []*storage.Record{}
	}
	return writeJSON(w, records)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAMLFormatter writes one YAML document per call.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(r *Report, w io.Writer) error {
	return writeYAML(w, r)
}

func (f *YAMLFormatter) FormatHistory(records []*storage.Record, w io.Writer) error {
	if records == nil {
		records = []*storage.Record{}
	}
	return writeYAML(w, records)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
