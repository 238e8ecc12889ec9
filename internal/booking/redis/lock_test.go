package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Lock, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewLock(client), mr
}

func TestAcquire_OnlyOneHolder(t *testing.T) {
	lock, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "booking-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok, "first acquire should succeed")

	ok, err = lock.Acquire(ctx, "booking-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the lease is held")

	// A different booking is an independent lease.
	ok, err = lock.Acquire(ctx, "booking-2", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease_OnlyOwnerReleases(t *testing.T) {
	lock, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "booking-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	// Wrong owner is a no-op.
	require.NoError(t, lock.Release(ctx, "booking-1", "owner-b"))
	ok, err = lock.Acquire(ctx, "booking-1", "owner-c")
	require.NoError(t, err)
	assert.False(t, ok, "lease must survive a foreign release")

	// Correct owner frees the lease.
	require.NoError(t, lock.Release(ctx, "booking-1", "owner-a"))
	ok, err = lock.Acquire(ctx, "booking-1", "owner-c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease_ExpiredLeaseIsNoop(t *testing.T) {
	lock, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "booking-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	// The holder died; the lease expires on its own.
	mr.FastForward(31 * time.Second)

	require.NoError(t, lock.Release(ctx, "booking-1", "owner-a"))

	ok, err = lock.Acquire(ctx, "booking-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok, "retry must succeed after the lease expired")
}

func TestAcquireWait_WaitsForRelease(t *testing.T) {
	lock, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "booking-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := lock.AcquireWait(waitCtx, "booking-1", "owner-b")
		assert.NoError(t, err, "waiter should get the lease once released")
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, lock.Release(ctx, "booking-1", "owner-a"))
	wg.Wait()
}

func TestAcquireWait_TimesOut(t *testing.T) {
	lock, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "booking-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	err = lock.AcquireWait(waitCtx, "booking-1", "owner-b")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestAcquireWait_Contention(t *testing.T) {
	lock, _ := setupTestRedis(t)
	ctx := context.Background()

	// Many goroutines contend for one booking; each holds the lease
	// briefly. All must eventually get a turn and never overlap.
	const numGoroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	holders := 0
	maxHolders := 0

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			ownerID := "owner-" + string(rune('a'+n))
			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lock.AcquireWait(waitCtx, "booking-1", ownerID); err != nil {
				t.Errorf("AcquireWait failed for %s: %v", ownerID, err)
				return
			}

			mu.Lock()
			holders++
			if holders > maxHolders {
				maxHolders = holders
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()

			if err := lock.Release(context.Background(), "booking-1", ownerID); err != nil {
				t.Errorf("Release failed for %s: %v", ownerID, err)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 1, maxHolders, "lease must never have two holders at once")
}
