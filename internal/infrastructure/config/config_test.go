package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auth.db", cfg.DBPath)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.Session.ReapInterval)
	assert.Equal(t, uint32(19456), cfg.Hash.MemoryKiB)
	assert.Equal(t, uint32(2), cfg.Hash.Iterations)
	assert.Equal(t, uint8(1), cfg.Hash.Parallelism)
	assert.Equal(t, 10*time.Minute, cfg.Cache.UserTTL)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Equal(t, "expense_tracker", cfg.Mongo.Database)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            "9000",
		"ENV":             "Production",
		"SESSION_TTL":     "2h",
		"SESSION_BACKEND": "REDIS",
		"REDIS_ADDR":      "localhost:6379",
		"REDIS_DB":        "3",
		"USER_CACHE_TTL":  "0",
		"MONGO_URI":       "mongodb://localhost:27017",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Zero(t, cfg.Cache.UserTTL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"redis without address": {"SESSION_BACKEND": "redis"},
		"unknown backend":       {"SESSION_BACKEND": "memcached"},
		"zero ttl":              {"SESSION_TTL": "0s"},
		"bad duration":          {"SESSION_TTL": "a week"},
		"zero iterations":       {"HASH_ITERATIONS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
