// internal/predictor/client.go
// Package predictor talks to the remote loan prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loan-intake/internal/common/config"
	apperrors "loan-intake/internal/common/errors"
	commonhttp "loan-intake/internal/common/http"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Predictor is the contract consumed by the submission flow. Implemented by
// Client and by RetryingClient.
type Predictor interface {
	Predict(ctx context.Context, app *models.LoanApplication) (*models.PredictionResult, error)
}

// resultSchema is the required shape of a 2xx /predict body. Anything a 2xx
// response fails to satisfy here is a MALFORMED_RESPONSE, not a service error.
const resultSchema = `{
	"type": "object",
	"required": ["prediction", "status", "confidence_probability"],
	"properties": {
		"prediction": {"type": "integer"},
		"status": {"type": "string", "enum": ["Approved", "Not Approved"]},
		"confidence_probability": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?%$"}
	}
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// Client issues exactly one POST /predict per Predict call. No retry, no
// backoff, no idempotency key; wrap with RetryingClient for resilience.
type Client struct {
	baseURL    string
	httpClient *commonhttp.Client
	logger     logger.Logger
}

func NewClient(cfg config.PredictorConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "predictor"}),
	}
}

// Predict serializes app to the wire contract, POSTs it to {base_url}/predict
// and parses the response. Errors are StandardError values with codes
// TRANSPORT_ERROR, SERVICE_ERROR or MALFORMED_RESPONSE.
func (c *Client) Predict(ctx context.Context, app *models.LoanApplication) (*models.PredictionResult, error) {
	payload, err := json.Marshal(app)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal application: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PredictionRequestDuration.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
		c.logger.Error("prediction request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PredictionRequestDuration.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
		return nil, apperrors.NewTransportError(fmt.Errorf("read response body: %w", err))
	}

	// Success is any 2xx status.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PredictionRequestDuration.WithLabelValues("service_error").Observe(time.Since(start).Seconds())
		c.logger.Error("prediction service error", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, apperrors.NewServiceError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	result, err := parseResult(body)
	if err != nil {
		metrics.PredictionRequestDuration.WithLabelValues("malformed_response").Observe(time.Since(start).Seconds())
		c.logger.Error("malformed prediction response", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.PredictionRequestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	c.logger.Info("prediction received", map[string]interface{}{
		"status":     result.Status,
		"confidence": result.ConfidenceProbability,
	})
	return result, nil
}

func parseResult(body []byte) (*models.PredictionResult, error) {
	check, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(fmt.Sprintf("body is not valid JSON: %v", err))
	}
	if !check.Valid() {
		details := make([]string, 0, len(check.Errors()))
		for _, desc := range check.Errors() {
			details = append(details, desc.String())
		}
		return nil, apperrors.NewMalformedResponseError(strings.Join(details, "; "))
	}

	var result models.PredictionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.NewMalformedResponseError(err.Error())
	}

	// The schema pattern admits out-of-range values like "120%".
	if _, err := result.Confidence(); err != nil {
		return nil, apperrors.NewMalformedResponseError(err.Error())
	}
	return &result, nil
}
