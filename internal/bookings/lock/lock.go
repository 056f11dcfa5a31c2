package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("booking slot lock not acquired")

// SlotLocker serializes booking creation per trainer over the requested
// interval so two clients racing for overlapping times never both reach the
// overlap check.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, trainerID string, start, end time.Time, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	bucket time.Duration
}

func NewRedisSlotLocker(client *redis.Client, ttl, bucket time.Duration) SlotLocker {
	if bucket <= 0 {
		bucket = time.Hour
	}
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
		bucket: bucket,
	}
}

// WithSlotLock acquires one lock per bucket the interval [start, end) covers
// and runs fn only while holding all of them. Any two overlapping intervals
// share at least one instant, hence at least one bucket, so overlapping
// requests always contend on a common key even when their start times differ.
// Keys are taken in ascending bucket order; a partial acquisition is rolled
// back before reporting contention.
func (l *redisSlotLocker) WithSlotLock(ctx context.Context, trainerID string, start, end time.Time, fn func(ctx context.Context) error) error {
	keys := l.bucketKeys(trainerID, start, end)
	token := uuid.NewString()

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.releaseAll(ctx, acquired, token)
			return fmt.Errorf("acquire booking lock: %w", err)
		}
		if !ok {
			l.releaseAll(ctx, acquired, token)
			return ErrLockNotAcquired
		}
		acquired = append(acquired, key)
	}

	defer l.releaseAll(ctx, acquired, token)

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

// bucketKeys lists the epoch-aligned buckets intersecting [start, end),
// in ascending order.
func (l *redisSlotLocker) bucketKeys(trainerID string, start, end time.Time) []string {
	first := start.UTC().Truncate(l.bucket)
	last := end.UTC()

	var keys []string
	for t := first; t.Before(last); t = t.Add(l.bucket) {
		keys = append(keys, fmt.Sprintf("lock:booking:%s:%d", trainerID, t.Unix()))
	}
	if len(keys) == 0 {
		keys = append(keys, fmt.Sprintf("lock:booking:%s:%d", trainerID, first.Unix()))
	}
	return keys
}

// release deletes a key only when it still holds our token, so a lock that
// expired and was re-acquired by another caller is left alone.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) releaseAll(ctx context.Context, keys []string, token string) {
	for i := len(keys) - 1; i >= 0; i-- {
		// A key that cannot be released now is reclaimed by its TTL.
		_, _ = unlockScript.Run(ctx, l.client, []string{keys[i]}, token).Result()
	}
}
