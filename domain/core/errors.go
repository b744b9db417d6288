package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data-unavailability errors. The evaluator recovers all of these
	// locally as INCONCLUSIVE; none may propagate past it.
	ErrSeriesMissing  = errors.New("time series missing")
	ErrSeriesEmpty    = errors.New("time series empty")
	ErrMetricNotFound = errors.New("metric not found in dataset")

	// Validation errors
	ErrInvalidTask       = errors.New("invalid task")
	ErrInvalidHypothesis = errors.New("invalid hypothesis")
	ErrInsufficientData  = errors.New("insufficient data for analysis")
)

// NewValidationError creates an error for a failed field validation
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// IsDataUnavailable reports whether err is one of the recoverable
// data-unavailability conditions.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrSeriesMissing) ||
		errors.Is(err, ErrSeriesEmpty) ||
		errors.Is(err, ErrMetricNotFound)
}
