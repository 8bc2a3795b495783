package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// PostgresKeyValueRepository stores the storage port in a Postgres table, one row per key.
// Namespace separates the storage of different shoppers sharing one database.
type PostgresKeyValueRepository struct {
	db        *sql.DB
	namespace string
	logger    *zap.Logger
}

// NewPostgresKeyValueRepository creates a PostgresKeyValueRepository
func NewPostgresKeyValueRepository(db *sql.DB, namespace string, logger *zap.Logger) *PostgresKeyValueRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresKeyValueRepository{db: db, namespace: namespace, logger: logger}
}

var _ KeyValueRepositoryInterface = (*PostgresKeyValueRepository)(nil)

// EnsureSchema creates the storage table when it does not exist
func (r *PostgresKeyValueRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS storefront_kv (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (namespace, key)
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("failed to create storage table", zap.Error(err))
		return fmt.Errorf("failed to create storage table: %w", err)
	}
	return nil
}

func (r *PostgresKeyValueRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM storefront_kv WHERE namespace = $1 AND key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		r.logger.Error("failed to read storage key", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (r *PostgresKeyValueRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO storefront_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, r.namespace, key, string(value)); err != nil {
		r.logger.Error("failed to write storage key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (r *PostgresKeyValueRepository) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM storefront_kv WHERE namespace = $1 AND key = $2`
	if _, err := r.db.ExecContext(ctx, query, r.namespace, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (r *PostgresKeyValueRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM storefront_kv WHERE namespace = $1`
	if _, err := r.db.ExecContext(ctx, query, r.namespace); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}
