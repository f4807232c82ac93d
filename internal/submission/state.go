// internal/submission/state.go
// Package submission coordinates one validate-then-predict attempt and tracks
// its lifecycle through an explicit state machine instead of ad hoc loading
// and result flags that can desynchronize.
package submission

import (
	"sync"
	"time"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
	"loan-intake/internal/schema"
)

// State is the lifecycle phase of the most recent submission attempt.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Snapshot is a point-in-time view of the tracker. Exactly one of Result,
// FieldErrors or Failure is set in the terminal states.
type Snapshot struct {
	State        State                    `json:"state"`
	SubmissionID string                   `json:"submissionId,omitempty"`
	Result       *models.PredictionResult `json:"result,omitempty"`
	FieldErrors  []schema.FieldError      `json:"fieldErrors,omitempty"`
	Failure      *apperrors.StandardError `json:"failure,omitempty"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// Tracker holds the last-result slot. Writes are last-write-wins; there is no
// merging of concurrent outcomes because Begin admits one attempt at a time.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{State: StateIdle, UpdatedAt: time.Now().UTC()}}
}

// Begin moves the tracker to Submitting. It fails with SUBMISSION_IN_FLIGHT
// if another attempt is still running; terminal states are always replaceable.
func (t *Tracker) Begin(submissionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State == StateSubmitting {
		return apperrors.NewSubmissionInFlightError(t.snap.SubmissionID)
	}

	t.snap = Snapshot{
		State:        StateSubmitting,
		SubmissionID: submissionID,
		UpdatedAt:    time.Now().UTC(),
	}
	return nil
}

// Succeed records a prediction result for the current attempt.
func (t *Tracker) Succeed(submissionID string, result *models.PredictionResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{
		State:        StateSucceeded,
		SubmissionID: submissionID,
		Result:       result,
		UpdatedAt:    time.Now().UTC(),
	}
}

// FailValidation records field-level validation errors for the current attempt.
func (t *Tracker) FailValidation(submissionID string, fieldErrors []schema.FieldError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{
		State:        StateFailed,
		SubmissionID: submissionID,
		FieldErrors:  fieldErrors,
		UpdatedAt:    time.Now().UTC(),
	}
}

// Fail records a prediction failure for the current attempt.
func (t *Tracker) Fail(submissionID string, failure *apperrors.StandardError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{
		State:        StateFailed,
		SubmissionID: submissionID,
		Failure:      failure,
		UpdatedAt:    time.Now().UTC(),
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
