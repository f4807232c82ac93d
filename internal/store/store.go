// internal/store/store.go
// Package store keeps a history of submission attempts. The history is
// observational only; the submission flow writes to it and never reads back.
package store

import (
	"context"
	"time"

	"loan-intake/internal/models"
)

// Outcome labels recorded per submission attempt.
const (
	OutcomeSucceeded        = "succeeded"
	OutcomeValidationFailed = "validation_failed"
	OutcomeFailed           = "failed"
)

// Record is one submission attempt. Application is nil when validation failed
// before a normalized record existed.
type Record struct {
	ID          string                  `json:"id"`
	ReceivedAt  time.Time               `json:"receivedAt"`
	Application *models.LoanApplication `json:"application,omitempty"`
	Outcome     string                  `json:"outcome"`
	Status      string                  `json:"status,omitempty"`     // decision label on success
	Confidence  string                  `json:"confidence,omitempty"` // raw percentage string on success
	ErrorCode   string                  `json:"errorCode,omitempty"`  // failure code otherwise
	FromCache   bool                    `json:"fromCache,omitempty"`
}

// Store persists submission records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}
