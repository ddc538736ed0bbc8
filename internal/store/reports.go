// Package store persists validation reports in PostgreSQL.
//
// Reports are kept as a JSONB body next to a few summary columns so that
// listings never need to decode the full cell list. The package works on a
// *sql.DB; the CLI opens one from a pgx pool with stdlib.OpenDBFromPool.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// MaxListLimit caps ListRecent.
const MaxListLimit = 200

// StatusError marks a report whose file could not be read.
const StatusError = "error"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS validation_reports (
	id            UUID PRIMARY KEY,
	filename      TEXT NOT NULL,
	status        TEXT NOT NULL,
	total_rows    INTEGER NOT NULL,
	total_columns INTEGER NOT NULL,
	invalid_count INTEGER NOT NULL,
	report        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS validation_reports_created_at_idx
	ON validation_reports (created_at DESC);`

const insertSQL = `
INSERT INTO validation_reports (id, filename, status, total_rows, total_columns, invalid_count, report)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectSQL = `
SELECT id, filename, status, total_rows, total_columns, invalid_count, report, created_at
FROM validation_reports
WHERE id = $1`

const listSQL = `
SELECT id, filename, status, total_rows, total_columns, invalid_count, created_at
FROM validation_reports
ORDER BY created_at DESC
LIMIT $1`

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	TotalRows    int       `json:"total_rows"`
	TotalColumns int       `json:"total_columns"`
	InvalidCount int       `json:"invalid_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredReport is a summary plus the report exactly as it was encoded.
type StoredReport struct {
	ReportSummary
	Report json.RawMessage `json:"report"`
}

// Reports reads and writes validation reports.
type Reports struct {
	db *sql.DB
}

// NewReports wraps an open database handle.
func NewReports(db *sql.DB) *Reports {
	return &Reports{db: db}
}

// EnsureSchema creates the reports table when it does not exist.
func (r *Reports) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save stores report under id.
func (r *Reports) Save(ctx context.Context, id uuid.UUID, filename string, report *core.ValidationReport) error {
	if report == nil {
		return errors.New("save report: nil report")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertSQL,
		id.String(),
		filename,
		reportStatus(report),
		report.TotalRows,
		report.TotalColumns,
		report.InvalidCount,
		body,
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get returns the report stored under id. Unknown and malformed IDs both
// yield ErrNotFound.
func (r *Reports) Get(ctx context.Context, id string) (*StoredReport, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	var (
		out  StoredReport
		body []byte
	)
	err = r.db.QueryRowContext(ctx, selectSQL, uid.String()).Scan(
		&out.ID,
		&out.Filename,
		&out.Status,
		&out.TotalRows,
		&out.TotalColumns,
		&out.InvalidCount,
		&body,
		&out.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	out.Report = json.RawMessage(body)
	return &out, nil
}

// ListRecent returns up to limit summaries, newest first.
func (r *Reports) ListRecent(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, listSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	summaries := make([]ReportSummary, 0, limit)
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.ID, &s.Filename, &s.Status, &s.TotalRows, &s.TotalColumns, &s.InvalidCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return summaries, nil
}

func reportStatus(report *core.ValidationReport) string {
	if report.Error != "" || report.Summary == nil {
		return StatusError
	}
	return report.Summary.Status
}
