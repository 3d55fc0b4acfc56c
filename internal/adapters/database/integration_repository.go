package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/integrations"
)

// PostgresIntegrationRepository implements integrations.Repository using pgx
type PostgresIntegrationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIntegrationRepository creates a new PostgreSQL integration repository
func NewPostgresIntegrationRepository(pool *pgxpool.Pool) *PostgresIntegrationRepository {
	return &PostgresIntegrationRepository{pool: pool}
}

const integrationColumns = `id, client_id, provider, access_token, refresh_token, expires_at, created_at, updated_at`

// UpsertIntegration inserts or replaces the row for (client, provider)
func (r *PostgresIntegrationRepository) UpsertIntegration(ctx context.Context, integration *integrations.Integration) error {
	query := `
		INSERT INTO marketplace_integrations (id, client_id, provider, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (client_id, provider) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		integration.ID,
		integration.ClientID,
		integration.Provider,
		integration.AccessToken,
		integration.RefreshToken,
		integration.ExpiresAt,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert integration: %w", err)
	}
	return nil
}

// GetByClientAndProvider retrieves a client's integration with a provider
func (r *PostgresIntegrationRepository) GetByClientAndProvider(ctx context.Context, clientID uuid.UUID, provider string) (*integrations.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM marketplace_integrations WHERE client_id = $1 AND provider = $2`

	var i integrations.Integration
	err := r.pool.QueryRow(ctx, query, clientID, provider).Scan(
		&i.ID,
		&i.ClientID,
		&i.Provider,
		&i.AccessToken,
		&i.RefreshToken,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &i, nil
}

// ListByClientID retrieves a client's integrations
func (r *PostgresIntegrationRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*integrations.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM marketplace_integrations WHERE client_id = $1 ORDER BY provider`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query integrations: %w", err)
	}
	defer rows.Close()

	var result []*integrations.Integration
	for rows.Next() {
		var i integrations.Integration
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.Provider,
			&i.AccessToken,
			&i.RefreshToken,
			&i.ExpiresAt,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan integration: %w", err)
		}
		result = append(result, &i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating integrations: %w", err)
	}

	return result, nil
}

// DeleteIntegration removes a client's integration with a provider
func (r *PostgresIntegrationRepository) DeleteIntegration(ctx context.Context, clientID uuid.UUID, provider string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM marketplace_integrations WHERE client_id = $1 AND provider = $2`, clientID, provider)
	if err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
