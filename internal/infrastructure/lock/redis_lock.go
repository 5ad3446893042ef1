package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if it still holds our token, so an
// expired lock reacquired by another run is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRepresentativeLocker implements ledger.RepresentativeLocker with a
// Redis SET NX PX mutex per representative. Suitable for distributed
// deployments where multiple instances run allocation concurrently.
type RedisRepresentativeLocker struct {
	client        *redis.Client
	keyPrefix     string
	waitTimeout   time.Duration
	ttl           time.Duration
	retryInterval time.Duration
}

// RedisLockerOption is a functional option for configuring RedisRepresentativeLocker
type RedisLockerOption func(*RedisRepresentativeLocker)

// WithRetryInterval sets how often a waiter re-attempts acquisition
func WithRetryInterval(interval time.Duration) RedisLockerOption {
	return func(l *RedisRepresentativeLocker) {
		if interval > 0 {
			l.retryInterval = interval
		}
	}
}

// WithKeyPrefix sets the Redis key prefix
func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisRepresentativeLocker) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// NewRedisRepresentativeLocker creates a locker with an existing Redis client.
// waitTimeout bounds how long Acquire blocks; ttl guards against locks leaked
// by crashed holders and must exceed waitTimeout.
func NewRedisRepresentativeLocker(client *redis.Client, waitTimeout, ttl time.Duration, opts ...RedisLockerOption) *RedisRepresentativeLocker {
	l := &RedisRepresentativeLocker{
		client:        client,
		keyPrefix:     "ledger:allocation:lock:",
		waitTimeout:   waitTimeout,
		ttl:           ttl,
		retryInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire obtains the per-representative lock, polling until waitTimeout.
// Returns shared.ErrAllocationInProgress when the lock stays held.
func (l *RedisRepresentativeLocker) Acquire(ctx context.Context, representativeID uuid.UUID) (func(), error) {
	key := l.keyPrefix + representativeID.String()
	token := uuid.NewString()
	deadline := time.Now().Add(l.waitTimeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire representative lock: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				// Best effort: the TTL reclaims the lock if the release fails
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, shared.ErrAllocationInProgress
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

// Ensure RedisRepresentativeLocker implements RepresentativeLocker
var _ ledger.RepresentativeLocker = (*RedisRepresentativeLocker)(nil)
