// internal/submission/service.go
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/models"
	"loan-intake/internal/predictor"
	"loan-intake/internal/schema"
	"loan-intake/internal/store"
)

// ResultCache is the optional prediction cache. Satisfied by cache.ResultCache.
type ResultCache interface {
	Get(ctx context.Context, app *models.LoanApplication) (*models.PredictionResult, bool)
	Put(ctx context.Context, app *models.LoanApplication, result *models.PredictionResult)
}

// ValidationFailed carries the full, ordered field error list of a rejected
// submission. It wraps the ErrCodeValidationFailed StandardError so callers
// can branch either on the code or on the concrete type.
type ValidationFailed struct {
	Fields []schema.FieldError
	std    *apperrors.StandardError
}

func (e *ValidationFailed) Error() string {
	return e.std.Error()
}

func (e *ValidationFailed) Unwrap() error {
	return e.std
}

func newValidationFailed(fields []schema.FieldError) *ValidationFailed {
	return &ValidationFailed{
		Fields: fields,
		std:    apperrors.NewValidationFailedError(fmt.Sprintf("%d invalid fields", len(fields))),
	}
}

// Receipt is the successful outcome of one submission attempt.
type Receipt struct {
	SubmissionID string                   `json:"submissionId"`
	Result       *models.PredictionResult `json:"result"`
	FromCache    bool                     `json:"fromCache"`
}

// Service runs the validate-then-predict flow for one submission at a time.
type Service struct {
	predictor predictor.Predictor
	cache     ResultCache // may be nil
	history   store.Store
	tracker   *Tracker
	obs       *observability.Observability // may be nil
	logger    logger.Logger
}

func NewService(p predictor.Predictor, c ResultCache, history store.Store, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		predictor: p,
		cache:     c,
		history:   history,
		tracker:   NewTracker(),
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "submission"}),
	}
}

// Tracker exposes the state machine for read-only snapshots.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Submit runs one complete attempt: validate the raw field values, consult the
// cache, call the prediction service, and record the outcome. A second Submit
// while one is in flight is rejected with SUBMISSION_IN_FLIGHT. Every error is
// terminal for this attempt only; the caller may always submit again.
func (s *Service) Submit(ctx context.Context, raw map[string]string) (*Receipt, error) {
	start := time.Now()
	submissionID := uuid.NewString()
	if err := s.tracker.Begin(submissionID); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected_in_flight").Inc()
		s.observe(ctx, start, "rejected_in_flight")
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{"submissionId": submissionID})
	log.Info("processing submission", map[string]interface{}{"fieldCount": len(raw)})

	app, fieldErrors := schema.Validate(raw)
	if len(fieldErrors) > 0 {
		for _, fe := range fieldErrors {
			metrics.ValidationFailuresTotal.WithLabelValues(fe.Field, fe.Code).Inc()
		}
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		s.observe(ctx, start, "validation_failed")
		s.tracker.FailValidation(submissionID, fieldErrors)
		s.record(ctx, log, &store.Record{
			ID:         submissionID,
			ReceivedAt: time.Now().UTC(),
			Outcome:    store.OutcomeValidationFailed,
			ErrorCode:  string(apperrors.ErrCodeValidationFailed),
		})
		log.Info("submission rejected by validator", map[string]interface{}{
			"errorCount": len(fieldErrors),
		})
		return nil, newValidationFailed(fieldErrors)
	}

	if s.cache != nil {
		if result, ok := s.cache.Get(ctx, app); ok {
			metrics.SubmissionsTotal.WithLabelValues("succeeded").Inc()
			s.observe(ctx, start, "succeeded")
			s.tracker.Succeed(submissionID, result)
			s.record(ctx, log, successRecord(submissionID, app, result, true))
			log.Info("submission served from cache", map[string]interface{}{"status": result.Status})
			return &Receipt{SubmissionID: submissionID, Result: result, FromCache: true}, nil
		}
	}

	result, err := s.predictor.Predict(ctx, app)
	if err != nil {
		stdErr := apperrors.AsStandard(err)
		metrics.SubmissionsTotal.WithLabelValues("prediction_failed").Inc()
		s.observe(ctx, start, "prediction_failed")
		s.tracker.Fail(submissionID, stdErr)
		s.record(ctx, log, &store.Record{
			ID:          submissionID,
			ReceivedAt:  time.Now().UTC(),
			Application: app,
			Outcome:     store.OutcomeFailed,
			ErrorCode:   string(stdErr.Code),
		})
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, app, result)
	}

	metrics.SubmissionsTotal.WithLabelValues("succeeded").Inc()
	s.observe(ctx, start, "succeeded")
	s.tracker.Succeed(submissionID, result)
	s.record(ctx, log, successRecord(submissionID, app, result, false))
	log.Info("submission completed", map[string]interface{}{
		"status":     result.Status,
		"confidence": result.ConfidenceProbability,
	})
	return &Receipt{SubmissionID: submissionID, Result: result}, nil
}

func successRecord(id string, app *models.LoanApplication, result *models.PredictionResult, fromCache bool) *store.Record {
	return &store.Record{
		ID:          id,
		ReceivedAt:  time.Now().UTC(),
		Application: app,
		Outcome:     store.OutcomeSucceeded,
		Status:      result.Status,
		Confidence:  result.ConfidenceProbability,
		FromCache:   fromCache,
	}
}

func (s *Service) observe(ctx context.Context, start time.Time, outcome string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordSubmission(ctx, outcome)
	s.obs.RecordSubmissionDuration(ctx, time.Since(start), outcome)
}

// record persists the attempt; history failures never fail the submission.
func (s *Service) record(ctx context.Context, log logger.Logger, rec *store.Record) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, rec); err != nil {
		log.Warn("failed to persist submission record", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
