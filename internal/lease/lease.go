package lease

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/regiq/regiq/internal/logger"
)

// releaseScript deletes the lease key only if it still holds our token,
// so a lease that expired and was re-acquired elsewhere is never released
// by the previous holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Manager hands out short-lived named leases so that concurrent sync
// runs do not process the same feed at the same time.
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

// Acquire attempts to take the named lease for ttl. When acquired, the
// returned release function gives the lease back; releasing a lease that
// has already expired is a no-op.
func (m *Manager) Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error) {
	key := "lease:sync:" + name
	token := uuid.NewString()

	ok, err := m.redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.redis.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release sync lease", "name", name, "error", err)
		}
	}
	return release, true, nil
}

// LocalManager is an in-process lease fallback used when Redis is not
// configured. It only guards against overlap within a single process.
type LocalManager struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewLocalManager creates an in-process lease manager.
func NewLocalManager() *LocalManager {
	return &LocalManager{held: make(map[string]time.Time)}
}

// Acquire takes the in-process named lease if it is free or expired.
func (m *LocalManager) Acquire(_ context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, ok := m.held[name]; ok && time.Now().Before(expiry) {
		return nil, false, nil
	}
	m.held[name] = time.Now().Add(ttl)

	release = func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, name)
	}
	return release, true, nil
}
