package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-health-tracker/internal/ports/kv"
)

// StateStore guarda cada clave como una fila de la tabla state (payload JSONB).
type StateStore struct {
	db *sql.DB
}

var _ kv.Store = (*StateStore)(nil)

// NewStateStore crea la tabla si no existe.
func NewStateStore(ctx context.Context, db *sql.DB) (*StateStore, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS state (
			bucket TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, nil
}

func (s *StateStore) Save(ctx context.Context, key string, payload []byte) error {
	key = strings.TrimSpace(key)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (bucket, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (bucket) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
