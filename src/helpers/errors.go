package helpers

import (
	"errors"
	"fmt"
	"time"

	"dkit-partners/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for the API error taxonomy
type UnauthenticatedError struct{ DashboardError }
type ProjectNotFoundError struct{ DashboardError }
type DatabaseError struct{ DashboardError }
type ValidationError struct{ DashboardError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewUnauthenticatedError(message string) error {
	return &UnauthenticatedError{DashboardError{Message: message}}
}

func NewProjectNotFoundError(message string) error {
	return &ProjectNotFoundError{DashboardError{Message: message}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{DashboardError{Message: message, Cause: cause}}
}

func NewValidationError(message string) error {
	return &ValidationError{DashboardError{Message: message}}
}

// -----------------------------------------------------------------------------
// Classification helpers for mapping errors to HTTP statuses
// -----------------------------------------------------------------------------

func IsUnauthenticated(err error) bool {
	var e *UnauthenticatedError
	return errors.As(err, &e)
}

func IsProjectNotFound(err error) bool {
	var e *ProjectNotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times
// with exponential backoff. Used for storage bring-up; request-path failures
// are never retried here.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return &DashboardError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}
