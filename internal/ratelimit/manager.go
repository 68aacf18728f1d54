package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager provides Redis-backed per-key rate limiting.
type Manager struct {
	redis *redis.Client
}

// NewManager connects to Redis and verifies connectivity.
func NewManager(redisURL string) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{redis: client}, nil
}

func (m *Manager) Close() error { return m.redis.Close() }

// CheckRate returns allowed=false if the per-minute bucket for this key is
// exhausted, along with the seconds until the window resets.
func (m *Manager) CheckRate(ctx context.Context, apiKeyID, method, path string, rpm int) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60 // minute window
	rk := fmt.Sprintf("rl:%s:%s:%s:%d", apiKeyID, method, path, window)
	// Use INCR and set TTL if first time
	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}
	count := int(incr.Val())
	if count > rpm {
		secPassed := int(now.Unix() % 60)
		return false, 60 - secPassed, nil
	}
	return true, 0, nil
}
