package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotAcquired is returned when the per-booking lease could not be taken
// within the caller's deadline.
var ErrNotAcquired = errors.New("booking lock not acquired")

const lockKeyPrefix = "booking_lock:"

// Lock serializes reconcile and override calls per booking. The lease
// carries a TTL so a holder that dies mid-flight cannot leave the booking
// permanently stuck; a retry resolves idempotently once the lease expires.
type Lock struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		Logger: log.Default(),
	}
}

// getLockTTL returns the lease duration from the environment or the default.
func (l *Lock) getLockTTL() time.Duration {
	defaultTTL := 30 * time.Second

	ttlStr := os.Getenv("BOOKING_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		l.Logger.Println("REDIS: Invalid BOOKING_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 30 seconds")
		return defaultTTL
	}

	return time.Duration(ttlSec) * time.Second
}

// Acquire tries to take the lease once. ownerID identifies the holder so
// only the holder can release it.
func (l *Lock) Acquire(ctx context.Context, bookingID, ownerID string) (bool, error) {
	key := lockKeyPrefix + bookingID
	ok, err := l.Client.SetNX(ctx, key, ownerID, l.getLockTTL()).Result()
	return ok, err
}

// AcquireWait retries Acquire until it succeeds or the context deadline
// passes. Contention on one booking is short-lived, so a small poll
// interval is enough.
func (l *Lock) AcquireWait(ctx context.Context, bookingID, ownerID string) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := l.Acquire(ctx, bookingID, ownerID)
		if err != nil {
			return fmt.Errorf("redis lock error: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrNotAcquired
		case <-ticker.C:
		}
	}
}

// Release removes the lease if the caller still owns it. A lease that
// expired and was re-acquired by someone else is left alone.
func (l *Lock) Release(ctx context.Context, bookingID, ownerID string) error {
	key := lockKeyPrefix + bookingID
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == ownerID {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
