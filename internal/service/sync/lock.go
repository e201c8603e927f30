package sync

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	lockKey     = "sync:worker:lock"
	lastFullKey = "sync:worker:last-full"
	lockTTL     = 10 * time.Minute
)

// Lock is the redis-backed single-flight guard plus the full-sync stamp.
// Acquire is SET NX with a TTL so a crashed run cannot wedge the system.
type Lock struct {
	client *redis.Client
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client}
}

// Acquire returns ErrSyncInFlight when another run holds the lock.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, lockKey, time.Now().Format(time.RFC3339), lockTTL).Result()
	if err != nil {
		return errors.Wrap(err, "acquiring sync lock")
	}
	if !ok {
		return ErrSyncInFlight
	}
	return nil
}

func (l *Lock) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, lockKey).Err(); err != nil {
		return errors.Wrap(err, "releasing sync lock")
	}
	return nil
}

// StampFullSync stores the completion time without an expiry.
func (l *Lock) StampFullSync(ctx context.Context, at time.Time) error {
	err := l.client.Set(ctx, lastFullKey, at.UTC().Format(time.RFC3339), 0).Err()
	if err != nil {
		return errors.Wrap(err, "stamping last full sync")
	}
	return nil
}

// LastFullSync returns nil when no full pass has completed yet.
func (l *Lock) LastFullSync(ctx context.Context) (*time.Time, error) {
	raw, err := l.client.Get(ctx, lastFullKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading last full sync")
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing last full sync stamp")
	}
	return &at, nil
}
