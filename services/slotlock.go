package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bookline-backend/utils"
)

const (
	slotLockTTL = 30 * time.Second
	// Lock granularity. Every bucket a candidate interval touches must
	// be free, so two overlapping bookings contend even when their
	// start instants differ.
	slotLockBucket = 15 * time.Minute
)

// SlotLock serializes slot acquisition per tenant so at most one booking
// wins a contested interval. The availability check itself stays
// advisory; the lock only covers the window between the conflict
// re-check and the booking commit. With no redis client configured
// Acquire is a no-op and behavior degrades to the advisory read-time
// check.
type SlotLock struct {
	client *redis.Client
	log    *zap.Logger
}

func NewSlotLock(client *redis.Client, log *zap.Logger) *SlotLock {
	return &SlotLock{client: client, log: log}
}

// slotLockKeys covers [start, end) with bucket-aligned keys.
func slotLockKeys(tenantID uuid.UUID, start, end time.Time) []string {
	var keys []string
	for b := start.UTC().Truncate(slotLockBucket); b.Before(end); b = b.Add(slotLockBucket) {
		keys = append(keys, fmt.Sprintf("slotlock:%s:%d", tenantID, b.Unix()))
	}
	return keys
}

// Acquire takes short-lived locks on every bucket the candidate
// interval [start, end) touches. It returns a release func, or
// ErrConflict when another booking holds any part of the interval.
func (l *SlotLock) Acquire(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (func(), error) {
	if l.client == nil {
		return func() {}, nil
	}

	var held []string
	for _, key := range slotLockKeys(tenantID, start, end) {
		ok, err := l.client.SetNX(ctx, key, "1", slotLockTTL).Result()
		if err != nil {
			// Redis being down must not take bookings down with it.
			l.log.Warn("slot lock unavailable, proceeding without serialization", zap.Error(err))
			continue
		}
		if !ok {
			l.release(held)
			return nil, fmt.Errorf("%w: slot is being booked by another request", utils.ErrConflict)
		}
		held = append(held, key)
	}
	return func() { l.release(held) }, nil
}

func (l *SlotLock) release(keys []string) {
	for _, key := range keys {
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			l.log.Warn("failed to release slot lock", zap.String("key", key), zap.Error(err))
		}
	}
}
