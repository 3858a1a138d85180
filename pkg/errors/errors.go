// Package errors provides custom error types for the tablesync system.
// These errors let callers check failure classes programmatically
// (errors.Is / errors.As) instead of matching on message text.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As forward to the standard library so callers need a single import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the tablesync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates that a source could not be reached
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNoArtifact indicates that a source currently has nothing to ingest
	ErrNoArtifact = errors.New("no artifact")

	// ErrSchemaDrift indicates that a mapped header is missing from an artifact
	ErrSchemaDrift = errors.New("schema drift")

	// ErrMalformedIdentifier indicates an identifier without a trailing numeral
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// ErrNoInput indicates that extraction was given empty text
	ErrNoInput = errors.New("no input")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrUnsupportedFormat indicates an artifact format that cannot be read
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AlreadyExistsError represents an attempt to record something twice
type AlreadyExistsError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SourceUnavailableError is returned when fetching from a source fails
// at the transport level.
type SourceUnavailableError struct {
	Source     string
	Location   string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %s unavailable at %s (status %d)", e.Source, e.Location, e.StatusCode)
	}
	return fmt.Sprintf("source %s unavailable at %s: %v", e.Source, e.Location, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceUnavailableError creates a new SourceUnavailableError
func NewSourceUnavailableError(source, location string, statusCode int, err error) *SourceUnavailableError {
	return &SourceUnavailableError{
		Source:     source,
		Location:   location,
		StatusCode: statusCode,
		Err:        err,
	}
}

// SchemaDriftError lists canonical fields whose mapped header was not
// present in an artifact. It is a warning, never a row failure.
type SchemaDriftError struct {
	Source  string
	Missing []string
}

// Error implements the error interface
func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("schema drift in source %s: missing headers %v", e.Source, e.Missing)
}

// Is implements errors.Is support
func (e *SchemaDriftError) Is(target error) bool {
	return target == ErrSchemaDrift
}

// MalformedIdentifierError reports an identifier with no trailing numeral.
type MalformedIdentifierError struct {
	Identifier string
}

// Error implements the error interface
func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q has no trailing numeral", e.Identifier)
}

// Is implements errors.Is support
func (e *MalformedIdentifierError) Is(target error) bool {
	return target == ErrMalformedIdentifier
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// IngestError represents a failure while ingesting one source
type IngestError struct {
	Source   string
	Artifact string
	Stage    string // "fetch", "read", "store", "history", "mark"
	Err      error
}

// Error implements the error interface
func (e *IngestError) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("ingest %s failed for source %s (artifact %s): %v", e.Stage, e.Source, e.Artifact, e.Err)
	}
	return fmt.Sprintf("ingest %s failed for source %s: %v", e.Stage, e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IngestError) Unwrap() error {
	return e.Err
}

// NewIngestError creates a new IngestError
func NewIngestError(source, artifact, stage string, err error) *IngestError {
	return &IngestError{
		Source:   source,
		Artifact: artifact,
		Stage:    stage,
		Err:      err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSourceUnavailable checks if an error indicates an unreachable source
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsNoArtifact checks if an error indicates an empty source
func IsNoArtifact(err error) bool {
	return errors.Is(err, ErrNoArtifact)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "xlsx", "csv"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch"
	Resource  string // "ledger", "history", "records"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
