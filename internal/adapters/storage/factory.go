package storage

import (
	"context"
	"fmt"
	"time"

	"pet-health-tracker/internal/adapters/storage/memory"
	"pet-health-tracker/internal/adapters/storage/mongo"
	"pet-health-tracker/internal/adapters/storage/postgres"
	"pet-health-tracker/internal/adapters/storage/redis"
	"pet-health-tracker/internal/adapters/storage/sqlite"
	"pet-health-tracker/internal/config"
	"pet-health-tracker/internal/ports/kv"
)

const mongoConnectTimeout = 10 * time.Second

// CloseFunc libera la conexión del store. Para memory es un no-op.
type CloseFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// NewStateStore elige el adapter según cfg.StoreDriver.
func NewStateStore(ctx context.Context, cfg *config.Config) (kv.Store, CloseFunc, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		return memory.NewStateStore(), noopClose, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		st, err := postgres.NewStateStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, func(context.Context) error { return db.Close() }, nil

	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func(context.Context) error { return st.Close() }, nil

	case config.DriverRedis:
		client, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStateStore(client, cfg.RedisPrefix), func(context.Context) error { return client.Close() }, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI, mongoConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		return mongo.NewStateStore(client.Database(cfg.MongoDatabase)), client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
}
