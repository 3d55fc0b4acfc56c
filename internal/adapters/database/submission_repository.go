package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/consignment"
)

// PostgresSubmissionRepository implements consignment.Repository using pgx.
// The analysis payload is stored as JSONB.
type PostgresSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubmissionRepository creates a new PostgreSQL submission repository
func NewPostgresSubmissionRepository(pool *pgxpool.Pool) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{pool: pool}
}

const submissionColumns = `id, client_id, title, description, photos, status, analysis, created_at, updated_at`

// CreateSubmission creates a new submission row
func (r *PostgresSubmissionRepository) CreateSubmission(ctx context.Context, submission *consignment.Submission) error {
	query := `
		INSERT INTO client_submissions (id, client_id, title, description, photos, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		submission.ID,
		submission.ClientID,
		submission.Title,
		submission.Description,
		submission.Photos,
		submission.Status,
		submission.CreatedAt,
		submission.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// GetSubmissionByID retrieves a submission by its ID
func (r *PostgresSubmissionRepository) GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*consignment.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM client_submissions WHERE id = $1`
	return scanSubmission(r.pool.QueryRow(ctx, query, submissionID))
}

// ListByClientID retrieves a client's submissions, newest first
func (r *PostgresSubmissionRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*consignment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM client_submissions
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	return collectSubmissions(rows)
}

// ListByStatus retrieves submissions in a given status, oldest first so the
// review queue is worked in arrival order.
func (r *PostgresSubmissionRepository) ListByStatus(ctx context.Context, status consignment.SubmissionStatus, limit, offset int) ([]*consignment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM client_submissions
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	return collectSubmissions(rows)
}

// UpdateStatus updates a submission's review status
func (r *PostgresSubmissionRepository) UpdateStatus(ctx context.Context, submissionID uuid.UUID, status consignment.SubmissionStatus) error {
	query := `UPDATE client_submissions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, status, submissionID)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AttachAnalysis stores the analysis payload as JSONB
func (r *PostgresSubmissionRepository) AttachAnalysis(ctx context.Context, submissionID uuid.UUID, analysis *consignment.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	query := `UPDATE client_submissions SET analysis = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.pool.Exec(ctx, query, payload, submissionID)
	if err != nil {
		return fmt.Errorf("failed to attach analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSubmission(row pgx.Row) (*consignment.Submission, error) {
	var s consignment.Submission
	var analysisRaw []byte
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.Title,
		&s.Description,
		&s.Photos,
		&s.Status,
		&analysisRaw,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}
	if len(analysisRaw) > 0 {
		var analysis consignment.Analysis
		if err := json.Unmarshal(analysisRaw, &analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
		s.Analysis = &analysis
	}
	return &s, nil
}

func collectSubmissions(rows pgx.Rows) ([]*consignment.Submission, error) {
	defer rows.Close()

	var result []*consignment.Submission
	for rows.Next() {
		var s consignment.Submission
		var analysisRaw []byte
		if err := rows.Scan(
			&s.ID,
			&s.ClientID,
			&s.Title,
			&s.Description,
			&s.Photos,
			&s.Status,
			&analysisRaw,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if len(analysisRaw) > 0 {
			var analysis consignment.Analysis
			if err := json.Unmarshal(analysisRaw, &analysis); err != nil {
				return nil, fmt.Errorf("failed to decode analysis: %w", err)
			}
			s.Analysis = &analysis
		}
		result = append(result, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return result, nil
}
