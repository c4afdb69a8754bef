// File: internal/store/journal.go
//
// Package store keeps a local journal of submitted reimbursements. The
// portal assigns the authoritative record; the journal exists so an operator
// can answer "did the run on Tuesday actually go through, and under what
// number" without logging into the portal.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one recorded submission.
type Entry struct {
	ID          string `json:"id"`
	RFPNumber   string `json:"rfp_number"`
	PayeeName   string `json:"payee_name"`
	RequestName string `json:"request_name"`
	TotalCents  int64  `json:"total_cents"`
	// LineItems is an opaque JSON snapshot of what was submitted, kept for
	// auditing rather than querying.
	LineItems   string    `json:"line_items"`
	Receipts    int       `json:"receipts"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Journal is a SQLite-backed append-only log of submissions.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

const schema = `
	CREATE TABLE IF NOT EXISTS submissions (
		id           TEXT PRIMARY KEY,
		rfp_number   TEXT NOT NULL,
		payee_name   TEXT NOT NULL,
		request_name TEXT NOT NULL,
		total_cents  INTEGER NOT NULL,
		line_items   TEXT NOT NULL,
		receipts     INTEGER NOT NULL,
		submitted_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_rfp_number ON submissions(rfp_number);
`

// Open creates or opens the journal database at path, creating parent
// directories as needed.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}
	return &Journal{db: db, logger: logger.Named("journal")}, nil
}

// Record appends one submission. LineItems may be any JSON-serializable
// snapshot of the submitted rows.
func (j *Journal) Record(ctx context.Context, rfpNumber, payeeName, requestName string, totalCents int64, lineItems any, receipts int) (*Entry, error) {
	snapshot, err := json.MarshalToString(lineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize line items: %w", err)
	}
	e := &Entry{
		ID:          uuid.New().String(),
		RFPNumber:   rfpNumber,
		PayeeName:   payeeName,
		RequestName: requestName,
		TotalCents:  totalCents,
		LineItems:   snapshot,
		Receipts:    receipts,
		SubmittedAt: time.Now().UTC(),
	}

	const query = `
		INSERT INTO submissions (
			id, rfp_number, payee_name, request_name, total_cents,
			line_items, receipts, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := j.db.ExecContext(ctx, query,
		e.ID, e.RFPNumber, e.PayeeName, e.RequestName, e.TotalCents,
		e.LineItems, e.Receipts, e.SubmittedAt,
	); err != nil {
		j.logger.Error("failed to record submission", zap.Error(err))
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}
	j.logger.Info("submission recorded",
		zap.String("id", e.ID),
		zap.String("rfp_number", e.RFPNumber))
	return e, nil
}

// ByRFPNumber returns the recorded submissions carrying the given portal
// number, oldest first.
func (j *Journal) ByRFPNumber(ctx context.Context, rfpNumber string) ([]*Entry, error) {
	const query = `
		SELECT id, rfp_number, payee_name, request_name, total_cents,
			line_items, receipts, submitted_at
		FROM submissions
		WHERE rfp_number = ?
		ORDER BY submitted_at ASC
	`
	return j.query(ctx, query, rfpNumber)
}

// Recent returns the latest n submissions, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]*Entry, error) {
	const query = `
		SELECT id, rfp_number, payee_name, request_name, total_cents,
			line_items, receipts, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT ?
	`
	return j.query(ctx, query, n)
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.RFPNumber, &e.PayeeName, &e.RequestName, &e.TotalCents,
			&e.LineItems, &e.Receipts, &e.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
