package errors

import (
	"fmt"
	"sort"
	"strings"
)

// AppError is the unified dft error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// ExitCode returns the CLI exit code for this error.
func (e *AppError) ExitCode() int { return ExitCodeFor(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// CodeOf returns the error code of err if it is (or wraps) an AppError.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// --- Taxonomy constructors ---

// Project creates an error for a missing or unparseable project file.
func Project(reason string) *AppError {
	return &AppError{Code: ErrCodeProject, Message: reason}
}

// PipelineParse creates an error for a schema violation in a pipeline file.
func PipelineParse(file, detail string) *AppError {
	return &AppError{
		Code: ErrCodePipelineParse, Message: fmt.Sprintf("%s: %s", file, detail),
		Details: map[string]any{"file": file},
	}
}

// DuplicatePipeline creates an error for two declarations sharing a name.
func DuplicatePipeline(name string, files ...string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicatePipeline, Message: fmt.Sprintf("pipeline %q declared more than once (%s)", name, strings.Join(files, ", ")),
		Details: map[string]any{"pipeline": name, "files": files},
	}
}

// Dependency creates an error for an unresolved reference: a missing
// depends_on target, an unknown connection, or similar.
func Dependency(reason string) *AppError {
	return &AppError{Code: ErrCodeDependency, Message: reason}
}

// UnknownComponent creates an error for a component_type with no registered
// implementation.
func UnknownComponent(kind, componentType string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownComponent, Message: fmt.Sprintf("unknown %s type %q", kind, componentType),
		Details: map[string]any{"kind": kind, "component_type": componentType},
	}
}

// Cycle creates an error naming the nodes participating in a dependency
// cycle. Participants are reported sorted.
func Cycle(participants []string) *AppError {
	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)
	return &AppError{
		Code: ErrCodeCycle, Message: fmt.Sprintf("dependency cycle involving: %s", strings.Join(sorted, ", ")),
		Details: map[string]any{"participants": sorted},
	}
}

// Selector creates an error for a malformed selector expression or an
// unknown pipeline name or tag.
func Selector(reason string) *AppError {
	return &AppError{Code: ErrCodeSelector, Message: reason}
}

// Template creates an error for a failed template expression. The offending
// expression and the variable keys that were searched are carried as details.
func Template(expr, reason string, searched []string) *AppError {
	e := &AppError{
		Code: ErrCodeTemplate, Message: fmt.Sprintf("template %q: %s", expr, reason),
		Details: map[string]any{"expression": expr},
	}
	if len(searched) > 0 {
		e.Details["searched_keys"] = searched
	}
	return e
}

// MicrobatchConfig creates an error for an invalid microbatch declaration.
func MicrobatchConfig(pipeline, reason string) *AppError {
	return &AppError{
		Code: ErrCodeMicrobatchConfig, Message: fmt.Sprintf("pipeline %q: %s", pipeline, reason),
		Details: map[string]any{"pipeline": pipeline},
	}
}

// State creates an error for an I/O failure on a state file.
func State(pipeline, reason string) *AppError {
	return &AppError{
		Code: ErrCodeState, Message: fmt.Sprintf("state for pipeline %q: %s", pipeline, reason),
		Details: map[string]any{"pipeline": pipeline},
	}
}

// Component wraps a failure raised by a component, carrying pipeline and
// step context.
func Component(pipeline, stepID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeComponent, Message: fmt.Sprintf("%s.%s failed", pipeline, stepID),
		Details: map[string]any{"pipeline": pipeline, "step": stepID},
		Cause:   cause,
	}
}
