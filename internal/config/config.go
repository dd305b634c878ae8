// Package config carga la configuración del servicio desde variables de entorno con prefijo PETS_.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "PETS"

// Drivers de estado soportados.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Config se llena desde PETS_<KEY>, p.ej. PETS_PORT, PETS_STORE_DRIVER.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`

	// postgres
	DBDSN string `envconfig:"DB_DSN"`

	// sqlite
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/pet-health.db"`

	// redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"pets:state:"`

	// mongo
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"pet_health"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	AppName   string `envconfig:"APP_NAME" default:"pet-health-tracker"`

	// <= 0 desactiva el limiter
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load lee el .env opcional (si existe) y luego el entorno.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv no pisa variables ya definidas
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normaliza el driver y chequea lo mínimo que necesita cada uno.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))

	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverRedis, DriverMongo:
	case DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("%s_DB_DSN is required when STORE_DRIVER=postgres", Prefix)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%s_PORT is required", Prefix)
	}
	return nil
}

// Addr devuelve la dirección de escucha (":8080").
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
