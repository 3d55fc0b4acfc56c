package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/consignment"
)

// PostgresSourceRepository implements consignment.SourceRepository using pgx.
// Selectors are stored as JSONB and scanned directly into the map.
type PostgresSourceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSourceRepository creates a new PostgreSQL source repository
func NewPostgresSourceRepository(pool *pgxpool.Pool) *PostgresSourceRepository {
	return &PostgresSourceRepository{pool: pool}
}

const sourceColumns = `id, client_id, source_type, url, schedule, selectors, enabled, created_at, updated_at`

// CreateSource creates a new scrape-target row
func (r *PostgresSourceRepository) CreateSource(ctx context.Context, source *consignment.Source) error {
	query := `
		INSERT INTO client_sources (id, client_id, source_type, url, schedule, selectors, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		source.ID,
		source.ClientID,
		source.SourceType,
		source.URL,
		source.Schedule,
		source.Selectors,
		source.Enabled,
		source.CreatedAt,
		source.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}
	return nil
}

// GetSourceByID retrieves a scrape target by its ID
func (r *PostgresSourceRepository) GetSourceByID(ctx context.Context, sourceID uuid.UUID) (*consignment.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM client_sources WHERE id = $1`
	return scanSource(r.pool.QueryRow(ctx, query, sourceID))
}

// ListEnabledSources retrieves all enabled scrape targets for the worker
func (r *PostgresSourceRepository) ListEnabledSources(ctx context.Context) ([]*consignment.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM client_sources WHERE enabled ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	return collectSources(rows)
}

// ListByClientID retrieves a client's scrape targets
func (r *PostgresSourceRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*consignment.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM client_sources WHERE client_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	return collectSources(rows)
}

// UpdateSource updates a scrape target's configuration
func (r *PostgresSourceRepository) UpdateSource(ctx context.Context, source *consignment.Source) error {
	query := `
		UPDATE client_sources
		SET source_type = $1, url = $2, schedule = $3, selectors = $4, enabled = $5, updated_at = NOW()
		WHERE id = $6
	`
	result, err := r.pool.Exec(ctx, query,
		source.SourceType,
		source.URL,
		source.Schedule,
		source.Selectors,
		source.Enabled,
		source.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteSource removes a scrape target
func (r *PostgresSourceRepository) DeleteSource(ctx context.Context, sourceID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM client_sources WHERE id = $1`, sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSource(row pgx.Row) (*consignment.Source, error) {
	var s consignment.Source
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.SourceType,
		&s.URL,
		&s.Schedule,
		&s.Selectors,
		&s.Enabled,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	return &s, nil
}

func collectSources(rows pgx.Rows) ([]*consignment.Source, error) {
	defer rows.Close()

	var result []*consignment.Source
	for rows.Next() {
		var s consignment.Source
		if err := rows.Scan(
			&s.ID,
			&s.ClientID,
			&s.SourceType,
			&s.URL,
			&s.Schedule,
			&s.Selectors,
			&s.Enabled,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		result = append(result, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}

	return result, nil
}
