package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/reportdeck/backend/internal/infrastructure/config"
)

// Redis stores entries under "prefs:<user>:<key>". A zero TTL keeps entries
// forever; a positive TTL refreshes on every Set.
type Redis struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedis connects to the configured server and verifies it with a ping.
func NewRedis(cfg config.PrefsConfig) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis prefs: ping: %w", err)
	}

	return &Redis{rdb: rdb, ttl: cfg.RedisTTL}, nil
}

func redisKey(userID, key string) string {
	return fmt.Sprintf("prefs:%s:%s", userID, key)
}

// Get returns the stored value and whether the key was present.
func (r *Redis) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	value, err := r.rdb.Get(ctx, redisKey(userID, key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis prefs: get: %w", err)
	}
	return value, true, nil
}

// Set stores the value, overwriting any previous entry.
func (r *Redis) Set(ctx context.Context, userID, key string, value []byte) error {
	if err := r.rdb.Set(ctx, redisKey(userID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis prefs: set: %w", err)
	}
	return nil
}

// Delete removes the entry if present.
func (r *Redis) Delete(ctx context.Context, userID, key string) error {
	if err := r.rdb.Del(ctx, redisKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("redis prefs: delete: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
