package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned by store lookups for unknown job IDs.
var ErrJobNotFound = errors.New("batch job not found")

// JobRecord is the persisted state of one batch job, enough to resume
// polling or decoding after a restart.
type JobRecord struct {
	ID           string
	Document     string
	ManifestPath string
	BatchID      string
	InputFileID  string
	OutputFileID string
	OutputPath   string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists batch jobs in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create records a new job for a document's manifest and returns it with a
// fresh ID and validating status.
func (s *Store) Create(ctx context.Context, document, manifestPath string) (JobRecord, error) {
	now := time.Now().UTC()
	rec := JobRecord{
		ID:           uuid.NewString(),
		Document:     document,
		ManifestPath: manifestPath,
		Status:       StatusValidating,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	const q = `INSERT INTO batch_jobs (id, document, manifest_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, rec.ID, rec.Document, rec.ManifestPath, rec.Status, rec.CreatedAt, rec.UpdatedAt); err != nil {
		return JobRecord{}, fmt.Errorf("insert batch job: %w", err)
	}
	return rec, nil
}

// UpdateSubmission stores the remote identifiers assigned when the job was
// submitted.
func (s *Store) UpdateSubmission(ctx context.Context, id string, job Job) error {
	const q = `UPDATE batch_jobs
		SET batch_id = ?, input_file_id = ?, status = ?, updated_at = ?
		WHERE id = ?`
	return s.exec(ctx, q, job.BatchID, job.InputFileID, job.Status, time.Now().UTC(), id)
}

// UpdateStatus records a status change observed while polling, together with
// the output file ID once one exists.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, outputFileID string) error {
	const q = `UPDATE batch_jobs
		SET status = ?, output_file_id = ?, updated_at = ?
		WHERE id = ?`
	return s.exec(ctx, q, status, outputFileID, time.Now().UTC(), id)
}

// UpdateOutputPath records where the decoded output was written.
func (s *Store) UpdateOutputPath(ctx context.Context, id, outputPath string) error {
	const q = `UPDATE batch_jobs SET output_path = ?, updated_at = ? WHERE id = ?`
	return s.exec(ctx, q, outputPath, time.Now().UTC(), id)
}

// Get fetches one job by ID.
func (s *Store) Get(ctx context.Context, id string) (JobRecord, error) {
	const q = selectJobs + ` WHERE id = ?`
	rec, err := scanJob(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return JobRecord{}, ErrJobNotFound
	}
	return rec, err
}

// GetByBatchID fetches one job by its remote batch ID.
func (s *Store) GetByBatchID(ctx context.Context, batchID string) (JobRecord, error) {
	const q = selectJobs + ` WHERE batch_id = ?`
	rec, err := scanJob(s.db.QueryRowContext(ctx, q, batchID))
	if errors.Is(err, sql.ErrNoRows) {
		return JobRecord{}, ErrJobNotFound
	}
	return rec, err
}

// ListPending returns every job that has not yet reached a terminal state,
// oldest first, so a restarted process can resume polling all of them.
func (s *Store) ListPending(ctx context.Context) ([]JobRecord, error) {
	const q = selectJobs + ` WHERE status NOT IN (?, ?, ?, ?) ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q, StatusCompleted, StatusFailed, StatusExpired, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	defer rows.Close()

	var recs []JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

const selectJobs = `SELECT id, document, manifest_path, batch_id, input_file_id,
	output_file_id, output_path, status, created_at, updated_at
	FROM batch_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (JobRecord, error) {
	var rec JobRecord
	err := row.Scan(&rec.ID, &rec.Document, &rec.ManifestPath, &rec.BatchID,
		&rec.InputFileID, &rec.OutputFileID, &rec.OutputPath, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return JobRecord{}, err
	}
	return rec, nil
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update batch job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobNotFound
	}
	return nil
}
