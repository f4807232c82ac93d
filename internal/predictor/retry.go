// internal/predictor/retry.go
package predictor

import (
	"context"
	"time"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"
)

// RetryingClient decorates a Predictor with exponential backoff on transport
// errors. Service errors and malformed responses pass through untouched; the
// wrapped contract keeps its shape.
type RetryingClient struct {
	next         Predictor
	maxRetries   int
	initialDelay time.Duration
	logger       logger.Logger
}

func NewRetryingClient(next Predictor, maxRetries int, initialDelay time.Duration, log logger.Logger) *RetryingClient {
	return &RetryingClient{
		next:         next,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		logger:       log.WithFields(map[string]interface{}{"component": "predictor-retry"}),
	}
}

func (c *RetryingClient) Predict(ctx context.Context, app *models.LoanApplication) (*models.PredictionResult, error) {
	delay := c.initialDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.PredictionRetriesTotal.Inc()
			c.logger.Warn("retrying prediction request", map[string]interface{}{
				"attempt":     attempt,
				"maxRetries":  c.maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, apperrors.NewTransportError(ctx.Err())
			}
			delay *= 2
		}

		result, err := c.next.Predict(ctx, app)
		if err == nil {
			return result, nil
		}
		if !apperrors.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
