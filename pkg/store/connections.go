package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// ConnectionRepository provides SQL-backed provider credential persistence
type ConnectionRepository struct {
	DB *sql.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{DB: db}
}

// Get retrieves a user's stored credential for a provider
func (r *ConnectionRepository) Get(ctx context.Context, userID int, provider string) (*domain.Connection, error) {
	var c domain.Connection
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, provider, api_key, connected_at
		FROM provider_connections WHERE user_id = $1 AND provider = $2`,
		userID, provider).
		Scan(&c.UserID, &c.Provider, &c.APIKey, &c.ConnectedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("provider connection")
	}
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	return &c, nil
}

// Save stores or replaces a user's credential for a provider
func (r *ConnectionRepository) Save(ctx context.Context, conn *domain.Connection) error {
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO provider_connections (user_id, provider, api_key, connected_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			connected_at = EXCLUDED.connected_at`,
		conn.UserID, conn.Provider, conn.APIKey, conn.ConnectedAt,
	)
	if err != nil {
		return domain.NewStorageError(err)
	}

	return nil
}
