package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Analysis Errors.

	// ErrValidation indicates a raw record was malformed and has been dropped.
	// Validation failures are recovered locally and never abort a run.
	ErrValidation = errors.New("validation failed")

	// ErrOrphaned indicates a record references a query that is not tracked.
	ErrOrphaned = errors.New("orphaned record")

	// ErrInsufficientData indicates a query or cluster lacks the evidence
	// needed to produce a measurement.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConfiguration indicates the run configuration is unusable.
	// Configuration failures are fatal: the run aborts before producing output.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoRuns indicates no analysis run has been stored yet.
	ErrNoRuns = errors.New("no analysis runs")
)

// ValidationError describes a raw record dropped by the normaliser.
type ValidationError struct {
	// Index is the position of the record in its batch.
	Index int `json:"index"`

	// Field names the offending field.
	Field string `json:"field"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`

	// QueryID and URL identify the record when present.
	QueryID string `json:"query_id,omitempty"`
	URL     string `json:"url,omitempty"`

	// Orphaned is set when the record references an untracked query.
	Orphaned bool `json:"orphaned,omitempty"`
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Unwrap allows errors.Is against ErrValidation and ErrOrphaned.
func (e *ValidationError) Unwrap() []error {
	if e.Orphaned {
		return []error{ErrValidation, ErrOrphaned}
	}
	return []error{ErrValidation}
}

// InsufficientDataError marks a subject that could not be measured.
// It is surfaced as an explicit exclusion, never as a zero value.
type InsufficientDataError struct {
	// Subject is the query ID or feature signature key.
	Subject string `json:"subject"`

	// Reason explains what evidence was missing.
	Reason string `json:"reason"`
}

// Error implements error.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInsufficientData, e.Subject, e.Reason)
}

// Unwrap allows errors.Is against ErrInsufficientData.
func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// ConfigurationError describes an invalid run configuration.
type ConfigurationError struct {
	// Field is the configuration key at fault.
	Field string

	// Reason explains the problem.
	Reason string
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

// Unwrap allows errors.Is against ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
