package helpers

import (
	"errors"
	"fmt"
	"time"

	"gold-cycles/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type GoldCyclesError struct {
	Message string
	Cause   error
}

func (e *GoldCyclesError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GoldCyclesError) Unwrap() error {
	return e.Cause
}

// Distinct error types for the failure taxonomy. Insufficient data is not an
// error anywhere in the analysis layer: it yields empty results instead.
type ConfigurationError struct{ GoldCyclesError }
type MalformedInputError struct{ GoldCyclesError }
type DataSourceError struct{ GoldCyclesError }
type DatabaseError struct{ GoldCyclesError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

// NewConfigurationError reports an invalid configuration value rejected before
// any computation runs.
func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{GoldCyclesError{Message: fmt.Sprintf(format, args...)}}
}

// NewMalformedInputError reports input rows the analysis layer must not
// silently coerce (missing fields, non-finite prices, unordered timestamps).
func NewMalformedInputError(format string, args ...interface{}) error {
	return &MalformedInputError{GoldCyclesError{Message: fmt.Sprintf(format, args...)}}
}

// NewDataSourceError wraps a retrieval failure from a bar source.
func NewDataSourceError(cause error, format string, args ...interface{}) error {
	return &DataSourceError{GoldCyclesError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

// NewDatabaseError wraps a failure from a database-backed bar source.
func NewDatabaseError(cause error, format string, args ...interface{}) error {
	return &DatabaseError{GoldCyclesError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

// -----------------------------------------------------------------------------
// Type predicates (for HTTP status mapping and tests)
// -----------------------------------------------------------------------------

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsMalformedInputError(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

// -----------------------------------------------------------------------------
// Retry Logic (loader I/O only; the analysis layer is pure and never retries)
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, lastErr, delay)
		time.Sleep(delay)
	}

	return lastErr
}
