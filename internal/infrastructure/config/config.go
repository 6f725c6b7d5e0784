package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	DBPath   string `env:"DB_PATH,   default=auth.db"`

	Session SessionConfig
	Hash    HashConfig
	Cache   CacheConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,           default=168h"`
	Backend      string        `env:"SESSION_BACKEND,       default=sqlite"`
	ReapInterval time.Duration `env:"SESSION_REAP_INTERVAL, default=1h"`
}

// HashConfig is the argon2id work factor for new password hashes.
type HashConfig struct {
	MemoryKiB   uint32 `env:"HASH_MEMORY_KIB,  default=19456"`
	Iterations  uint32 `env:"HASH_ITERATIONS,  default=2"`
	Parallelism uint8  `env:"HASH_PARALLELISM, default=1"`
}

type CacheConfig struct {
	// UserTTL of 0 disables the profile cache.
	UserTTL time.Duration `env:"USER_CACHE_TTL, default=10m"`
}

type MongoConfig struct {
	// URI left empty disables the expense routes.
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=expense_tracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l, then validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: DB_PATH must not be empty")
	}
	if c.Hash.Iterations == 0 || c.Hash.Parallelism == 0 || c.Hash.MemoryKiB < 8*uint32(c.Hash.Parallelism) {
		return fmt.Errorf("config: invalid argon2id parameters m=%d t=%d p=%d",
			c.Hash.MemoryKiB, c.Hash.Iterations, c.Hash.Parallelism)
	}
	return nil
}
