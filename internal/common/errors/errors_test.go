// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorRetryability(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"transport errors are retryable", NewTransportError(errors.New("dial tcp: connection refused")), ErrCodeTransportError, true},
		{"service errors are terminal", NewServiceError(500, "Internal Server Error"), ErrCodeServiceError, false},
		{"malformed responses are terminal", NewMalformedResponseError("missing confidence_probability"), ErrCodeMalformedResponse, false},
		{"validation errors are terminal", NewValidationFailedError("3 invalid fields"), ErrCodeValidationFailed, false},
		{"double submit is terminal", NewSubmissionInFlightError("abc"), ErrCodeSubmissionInFlight, false},
		{"history write failures are retryable", NewHistoryWriteFailedError(errors.New("pq: timeout")), ErrCodeHistoryWriteFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestAsStandard(t *testing.T) {
	t.Run("unwraps through fmt.Errorf chains", func(t *testing.T) {
		inner := NewServiceError(502, "Bad Gateway")
		wrapped := fmt.Errorf("submit: %w", inner)

		got := AsStandard(wrapped)
		assert.Same(t, inner, got)
		assert.Equal(t, ErrCodeServiceError, CodeOf(wrapped))
	})

	t.Run("normalizes plain errors to INTERNAL_ERROR", func(t *testing.T) {
		got := AsStandard(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.False(t, got.Retryable)
		assert.Equal(t, "boom", got.Details)
	})
}

func TestServiceErrorCarriesStatus(t *testing.T) {
	err := NewServiceError(503, "Service Unavailable")
	assert.Contains(t, err.Details, "503")
	assert.Equal(t, 503, err.Metadata["statusCode"])
}
