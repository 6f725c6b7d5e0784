// Package cache holds in-process caches in front of the credential store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"

	"github.com/pennywise/expense-tracker/internal/api/metrics"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

// UserCache is a ports.UserRepository that serves FindUserByID from memory.
// Users are never updated or deleted, so entries only age out.
type UserCache struct {
	ports.UserRepository
	cache *bigcache.BigCache
	log   zerolog.Logger
}

var _ ports.UserRepository = (*UserCache)(nil)

// NewUserCache wraps repo with a profile cache whose entries live for ttl.
func NewUserCache(ctx context.Context, repo ports.UserRepository, ttl time.Duration, log zerolog.Logger) (*UserCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntrySize = 256
	cfg.HardMaxCacheSize = 32 // MB
	cfg.Verbose = false

	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &UserCache{UserRepository: repo, cache: c, log: log}, nil
}

// FindUserByID returns the cached profile for id, loading it on a miss.
// Lookups that fail are not cached.
func (c *UserCache) FindUserByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	key := strconv.FormatInt(id, 10)

	if raw, err := c.cache.Get(key); err == nil {
		var u domain.PublicUser
		if err := json.Unmarshal(raw, &u); err == nil {
			metrics.UserCacheLookupsTotal.WithLabelValues("hit").Inc()
			return &u, nil
		}
		_ = c.cache.Delete(key)
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.log.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
	}
	metrics.UserCacheLookupsTotal.WithLabelValues("miss").Inc()

	u, err := c.UserRepository.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(u); err == nil {
		if err := c.cache.Set(key, raw); err != nil {
			c.log.Warn().Err(err).Int64("user_id", id).Msg("user cache write failed")
		}
	}
	return u, nil
}

// Len reports the number of cached profiles.
func (c *UserCache) Len() int {
	return c.cache.Len()
}

// Close releases the cache's background cleaner.
func (c *UserCache) Close() error {
	return c.cache.Close()
}
