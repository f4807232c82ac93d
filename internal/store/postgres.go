// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
)

const (
	insertRecordQuery = `
		INSERT INTO submissions (id, received_at, application, outcome, status, confidence, error_code, from_cache)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listRecordsQuery = `
		SELECT id, received_at, application, outcome, status, confidence, error_code, from_cache
		FROM submissions
		ORDER BY received_at DESC
		LIMIT $1`
)

// PostgresStore persists submission records in a submissions table. The
// application is stored as a JSON blob since it is written once and only read
// back for display.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	var appJSON []byte
	if rec.Application != nil {
		var err error
		appJSON, err = json.Marshal(rec.Application)
		if err != nil {
			return apperrors.NewHistoryWriteFailedError(fmt.Errorf("marshal application: %w", err))
		}
	}

	_, err := s.db.ExecContext(ctx, insertRecordQuery,
		rec.ID,
		rec.ReceivedAt,
		nullableBytes(appJSON),
		rec.Outcome,
		nullableString(rec.Status),
		nullableString(rec.Confidence),
		nullableString(rec.ErrorCode),
		rec.FromCache,
	)
	if err != nil {
		return apperrors.NewHistoryWriteFailedError(err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, listRecordsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			appJSON    []byte
			status     sql.NullString
			confidence sql.NullString
			errorCode  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ReceivedAt, &appJSON, &rec.Outcome, &status, &confidence, &errorCode, &rec.FromCache); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if len(appJSON) > 0 {
			var app models.LoanApplication
			if err := json.Unmarshal(appJSON, &app); err != nil {
				return nil, fmt.Errorf("unmarshal stored application: %w", err)
			}
			rec.Application = &app
		}
		rec.Status = status.String
		rec.Confidence = confidence.String
		rec.ErrorCode = errorCode.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return out, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
