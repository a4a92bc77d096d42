// Package store persists evaluation records in a SQLite file. Records are
// keyed for de-duplication by an external request_id: repeated stores for
// the same id converge to one row reflecting the latest call.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clausegrade/clausegrade/internal/models"
)

// ErrNotFound is returned by Get when no record matches the identifier.
// Lower-level read faults are logged and reported the same way rather
// than leaking storage internals to request handlers.
var ErrNotFound = errors.New("evaluation not found")

const (
	createEvaluations = "CREATE TABLE IF NOT EXISTS evaluations (" +
		"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"request_id TEXT NOT NULL, " +
		"request TEXT NOT NULL, " +
		"response TEXT NOT NULL, " +
		"compliance_score REAL NOT NULL, " +
		"minimal_edits_score REAL NOT NULL, " +
		"example_usage_score REAL NOT NULL, " +
		"overall_score REAL NOT NULL, " +
		"created_at TIMESTAMP NOT NULL" +
		")"

	selectIDByRequestID = "SELECT id FROM evaluations WHERE request_id = ?"

	insertEvaluation = "INSERT INTO evaluations (" +
		"request_id, request, response, compliance_score, minimal_edits_score, " +
		"example_usage_score, overall_score, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"

	updateEvaluation = "UPDATE evaluations SET " +
		"request = ?, response = ?, compliance_score = ?, minimal_edits_score = ?, " +
		"example_usage_score = ?, overall_score = ?, created_at = ? WHERE request_id = ?"

	selectByID = "SELECT id, request_id, request, response, compliance_score, " +
		"minimal_edits_score, example_usage_score, overall_score, created_at " +
		"FROM evaluations WHERE id = ?"

	selectAll = "SELECT id, request_id, request, response, compliance_score, " +
		"minimal_edits_score, example_usage_score, overall_score, created_at " +
		"FROM evaluations ORDER BY id DESC"
)

// EvaluationStore is a SQLite-backed record store. The upsert's
// check-then-write sequence is serialized by a store-level mutex so
// concurrent batch workers cannot race two inserts for one request_id.
type EvaluationStore struct {
	db     *sql.DB
	logger *slog.Logger

	mu sync.Mutex
}

// Open creates or opens the SQLite file at path, creating any missing
// parent directory and the schema if absent. Initialization is idempotent.
func Open(path string, logger *slog.Logger) (*EvaluationStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	if _, err := db.Exec(createEvaluations); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating evaluations table: %w", err)
	}

	return &EvaluationStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *EvaluationStore) Close() error {
	return s.db.Close()
}

// Store upserts one evaluation keyed by requestID and returns the row
// identifier. A storage failure is logged and reported as ok=false; the
// caller must treat the write as not durably recorded. Store never
// propagates storage errors.
func (s *EvaluationStore) Store(ctx context.Context, requestID string, req models.SuggestionRequest, resp models.SuggestionResponse, scores models.EvaluationResult) (int64, bool) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		s.logger.Error("could not serialize request", "request_id", requestID, "error", err)
		return 0, false
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("could not serialize response", "request_id", requestID, "error", err)
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.upsert(ctx, requestID, reqJSON, respJSON, scores)
	if err != nil {
		s.logger.Error("evaluation write abandoned", "request_id", requestID, "error", err)
		return 0, false
	}
	return id, true
}

func (s *EvaluationStore) upsert(ctx context.Context, requestID string, reqJSON, respJSON []byte, scores models.EvaluationResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	var existingID int64
	err = tx.QueryRowContext(ctx, selectIDByRequestID, requestID).Scan(&existingID)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, updateEvaluation,
			string(reqJSON), string(respJSON),
			scores.ComplianceScore, scores.MinimalEditsScore,
			scores.ExampleUsageScore, scores.OverallScore,
			now, requestID)
		if err != nil {
			return 0, fmt.Errorf("update: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit: %w", err)
		}
		s.logger.Debug("updated existing evaluation", "request_id", requestID, "id", existingID)
		return existingID, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, insertEvaluation,
			requestID, string(reqJSON), string(respJSON),
			scores.ComplianceScore, scores.MinimalEditsScore,
			scores.ExampleUsageScore, scores.OverallScore,
			now)
		if err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert id: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit: %w", err)
		}
		s.logger.Debug("created new evaluation", "request_id", requestID, "id", id)
		return id, nil

	default:
		return 0, fmt.Errorf("lookup: %w", err)
	}
}

// Get returns the record for a storage-assigned identifier, with the
// embedded request and response deserialized.
func (s *EvaluationStore) Get(ctx context.Context, id int64) (*models.EvaluationRecord, error) {
	row := s.db.QueryRowContext(ctx, selectByID, id)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("evaluation read failed", "id", id, "error", err)
		}
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListAll returns every record, newest first by identifier.
func (s *EvaluationStore) ListAll(ctx context.Context) ([]models.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []models.EvaluationRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("listing evaluations: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	return records, nil
}

// scanRecord reads one row and deserializes the embedded documents. A
// corrupt document is logged and left zero-valued rather than failing the
// whole read.
func scanRecord(scan func(dest ...any) error) (*models.EvaluationRecord, error) {
	var (
		rec      models.EvaluationRecord
		reqJSON  string
		respJSON string
	)
	err := scan(&rec.ID, &rec.RequestID, &reqJSON, &respJSON,
		&rec.Scores.ComplianceScore, &rec.Scores.MinimalEditsScore,
		&rec.Scores.ExampleUsageScore, &rec.Scores.OverallScore,
		&rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
		slog.Warn("stored request document is corrupt", "id", rec.ID, "error", err)
	}
	if err := json.Unmarshal([]byte(respJSON), &rec.Response); err != nil {
		slog.Warn("stored response document is corrupt", "id", rec.ID, "error", err)
	}
	return &rec, nil
}
