package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/redisx"
)

// Locker is a keyed mutual-exclusion lease. Acquire returns false when the
// key is already held; the TTL bounds how long a crashed holder can block
// later deliveries.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// PhaseKey builds the lock key for one phase of one entity.
func PhaseKey(kind, id string) string {
	return fmt.Sprintf(redisx.KeyPhaseLock, kind, id)
}

// RedisLocker is a distributed lease: SET NX PX with a per-acquisition
// token so only the holder's Release deletes the key.
type RedisLocker struct {
	Client *redis.Client

	mu     sync.Mutex
	tokens map[string]string
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client, tokens: make(map[string]string)}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.mu.Lock()
		l.tokens[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return releaseScript.Run(ctx, l.Client, []string{key}, token).Err()
}

// MapLocker is the single-process variant: an in-memory TTL map.
type MapLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMapLocker() *MapLocker {
	return &MapLocker{held: make(map[string]time.Time), now: time.Now}
}

func (l *MapLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[key]; ok && l.now().Before(exp) {
		return false, nil
	}
	l.held[key] = l.now().Add(ttl)
	return true, nil
}

func (l *MapLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
