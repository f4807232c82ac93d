// internal/store/store_test.go
package store

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/models"
)

func sampleRecord(id string) *Record {
	return &Record{
		ID:         id,
		ReceivedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Application: &models.LoanApplication{
			Gender:            models.GenderMale,
			Married:           models.MarriedYes,
			Dependents:        1,
			Education:         models.EducationGraduate,
			SelfEmployed:      models.SelfEmployedNo,
			ApplicantIncome:   5400,
			CoapplicantIncome: 0,
			LoanAmount:        128,
			LoanAmountTerm:    360,
			CreditHistory:     1,
			PropertyArea:      models.PropertyAreaUrban,
		},
		Outcome:    OutcomeSucceeded,
		Status:     models.StatusApproved,
		Confidence: "82.5%",
	}
}

func TestMemoryStore_SaveAndList(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRecord("a")))
	require.NoError(t, s.Save(ctx, sampleRecord("b")))
	require.NoError(t, s.Save(ctx, sampleRecord("c")))

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID, "newest first")
	assert.Equal(t, "b", got[1].ID)
}

func TestMemoryStore_BoundedRing(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRecord("a")))
	require.NoError(t, s.Save(ctx, sampleRecord("b")))
	require.NoError(t, s.Save(ctx, sampleRecord("c")))

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestPostgresStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord("sub-1")

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(rec.ID, rec.ReceivedAt, sqlmock.AnyArg(), rec.Outcome, rec.Status, rec.Confidence, nil, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db)
	require.NoError(t, s.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveValidationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := &Record{
		ID:         "sub-2",
		ReceivedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Outcome:    OutcomeValidationFailed,
		ErrorCode:  "VALIDATION_FAILED",
	}

	// No application blob and no status for a locally rejected attempt.
	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(rec.ID, rec.ReceivedAt, nil, rec.Outcome, nil, nil, rec.ErrorCode, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db)
	require.NoError(t, s.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnError(assert.AnError)

	s := NewPostgresStore(db)
	err = s.Save(context.Background(), sampleRecord("sub-3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HISTORY_WRITE_FAILED")
}

func TestPostgresStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	appJSON := `{"Gender":"Male","Married":"Yes","Dependents":1,"Education":"Graduate","Self_Employed":"No","ApplicantIncome":5400,"CoapplicantIncome":0,"LoanAmount":128,"Loan_Amount_Term":360,"Credit_History":1,"Property_Area":"Urban"}`

	rows := sqlmock.NewRows([]string{"id", "received_at", "application", "outcome", "status", "confidence", "error_code", "from_cache"}).
		AddRow("sub-1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), []byte(appJSON), OutcomeSucceeded, "Approved", "82.5%", nil, false).
		AddRow("sub-2", time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), nil, OutcomeValidationFailed, nil, nil, "VALIDATION_FAILED", false)

	mock.ExpectQuery("SELECT id, received_at, application, outcome").
		WithArgs(25).
		WillReturnRows(rows)

	s := NewPostgresStore(db)
	got, err := s.List(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "sub-1", got[0].ID)
	require.NotNil(t, got[0].Application)
	assert.Equal(t, models.GenderMale, got[0].Application.Gender)
	assert.Equal(t, "82.5%", got[0].Confidence)

	assert.Nil(t, got[1].Application)
	assert.Equal(t, "VALIDATION_FAILED", got[1].ErrorCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
