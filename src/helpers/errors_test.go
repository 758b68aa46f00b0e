package helpers

import (
	"errors"
	"testing"
	"time"

	"dkit-partners/src/logger"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsUnauthenticated(NewUnauthenticatedError("no session")))
	assert.True(t, IsProjectNotFound(NewProjectNotFoundError("gone")))
	assert.True(t, IsValidation(NewValidationError("bad input")))

	// Types do not bleed into one another
	assert.False(t, IsUnauthenticated(NewValidationError("bad input")))
	assert.False(t, IsValidation(NewDatabaseError("query failed", errors.New("io"))))
	assert.False(t, IsProjectNotFound(nil))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to read session", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to read session")
	assert.Contains(t, err.Error(), "connection refused")
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoffSucceedsEventually(t *testing.T) {
	log := logger.NewLogger("ERROR", "test")

	calls := 0
	err := RetryWithBackoff(log, "flaky op", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	log := logger.NewLogger("ERROR", "test")

	calls := 0
	boom := errors.New("boom")
	err := RetryWithBackoff(log, "doomed op", 3, time.Millisecond, func() error {
		calls++
		return boom
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}
