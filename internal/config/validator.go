package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	validFormats      = []string{"text", "json", "yaml"}
	validStorageTypes = []string{"none", "bolt", "sqlite"}
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	return sb.String()
}

// Validate checks every section of the configuration
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if !contains(validFormats, c.Output.Format) {
		result.AddError("output.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Output.Format)
	}
	if c.Output.Limit < 0 {
		result.AddError("output.limit must not be negative, got %d", c.Output.Limit)
	}
	if c.Cache.TTL < 0 {
		result.AddError("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Watch.Debounce < 0 {
		result.AddError("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	if !contains(validStorageTypes, c.Storage.Type) {
		result.AddError("storage.type must be one of %s, got %q", strings.Join(validStorageTypes, ", "), c.Storage.Type)
	} else if c.Storage.Type != "none" && c.Storage.Path == "" {
		result.AddError("storage.path is required for storage type %q", c.Storage.Type)
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		result.AddError("logging.level: %v", err)
	}
	if c.Storage.Type == "none" && c.Storage.Path != "" && c.Storage.Path != Default().Storage.Path {
		result.AddWarning("storage.path %q is ignored while storage.type is \"none\"", c.Storage.Path)
	}

	return result
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
