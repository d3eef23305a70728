package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Configuration errors - missing or invalid configuration
	ErrorTypeConfig ErrorType = iota
	// Validation errors - invalid input data
	ErrorTypeValidation
	// Scan errors - the project root could not be enumerated
	ErrorTypeScan
	// History errors - no usable version-control history
	ErrorTypeHistory
	// Workspace errors - no project root could be determined
	ErrorTypeWorkspace
	// Storage errors - snapshot history store failures
	ErrorTypeStorage
	// Internal errors - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - can continue with degraded functionality
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal
	SeverityMedium
	// SeverityHigh - significant issue, may impact functionality
	SeverityHigh
	// SeverityCritical - must be addressed, stops execution
	SeverityCritical
)

// Category markers for errors.Is. Matching is by ErrorType only.
var (
	ErrScanFailure        = &Error{Type: ErrorTypeScan}
	ErrHistoryUnavailable = &Error{Type: ErrorTypeHistory}
	ErrNoWorkspace        = &Error{Type: ErrorTypeWorkspace}
	ErrConfig             = &Error{Type: ErrorTypeConfig}
	ErrStorage            = &Error{Type: ErrorTypeStorage}
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop execution
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		typeString(e.Type),
		e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeScan:
		return "SCAN"
	case ErrorTypeHistory:
		return "HISTORY"
	case ErrorTypeWorkspace:
		return "WORKSPACE"
	case ErrorTypeStorage:
		return "STORAGE"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(3),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(3),
	}
}

// ScanFailuref wraps a filesystem error raised while enumerating a project root
func ScanFailuref(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(ErrorTypeScan, SeverityHigh, fmt.Sprintf(format, args...))
	}
	return Wrap(err, ErrorTypeScan, SeverityHigh, fmt.Sprintf(format, args...))
}

// HistoryUnavailablef wraps a version-control failure
func HistoryUnavailablef(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(ErrorTypeHistory, SeverityMedium, fmt.Sprintf(format, args...))
	}
	return Wrap(err, ErrorTypeHistory, SeverityMedium, fmt.Sprintf(format, args...))
}

// NoWorkspacef creates a workspace resolution error
func NoWorkspacef(format string, args ...interface{}) *Error {
	return New(ErrorTypeWorkspace, SeverityCritical, fmt.Sprintf(format, args...))
}

// ConfigErrorf wraps a configuration error with formatting
func ConfigErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
	}
	return Wrap(err, ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// StorageErrorf wraps a snapshot store error with formatting
func StorageErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(ErrorTypeStorage, SeverityHigh, fmt.Sprintf(format, args...))
	}
	return Wrap(err, ErrorTypeStorage, SeverityHigh, fmt.Sprintf(format, args...))
}

// ValidationErrorf creates a validation error with formatting
func ValidationErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
}

// IsFatal checks if an error is fatal (should stop execution)
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.IsFatal()
	}
	return false
}

// GetType returns the type of an error
func GetType(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}
