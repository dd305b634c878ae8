package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // driver sqlite en Go puro

	"pet-health-tracker/internal/ports/kv"
)

const defaultPath = "pet-health.db"

// StateStore guarda cada clave como una fila (bucket, payload) en un archivo SQLite.
type StateStore struct {
	db *sql.DB
}

var _ kv.Store = (*StateStore)(nil)

// Open abre (o crea) el archivo y la tabla state.
func Open(ctx context.Context, path string) (*StateStore, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// un solo writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, key).Scan(&payload)
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

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		key, payload,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
