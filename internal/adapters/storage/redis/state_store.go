package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"pet-health-tracker/internal/ports/kv"
)

const defaultPrefix = "pets:state:"

// StateStore guarda cada clave como un string Redis bajo "<prefix><key>", sin TTL.
type StateStore struct {
	client *redis.Client
	prefix string
}

var _ kv.Store = (*StateStore)(nil)

// NewStateStore crea el store. Prefix vacío usa defaultPrefix.
func NewStateStore(client *redis.Client, prefix string) *StateStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StateStore{client: client, prefix: prefix}
}

// Connect abre un cliente y verifica la conexión con PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *StateStore) key(k string) string {
	return s.prefix + strings.TrimSpace(k)
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (s *StateStore) Save(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
