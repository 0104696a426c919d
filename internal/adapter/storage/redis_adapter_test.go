package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client, 5*time.Second, zap.NewNop())
	client.Del(ctx, lockKey(900))

	unlock, err := locker.Lock(ctx, 900)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	if n, _ := client.Exists(ctx, lockKey(900)).Result(); n != 1 {
		t.Error("expected lock key to exist")
	}

	unlock()

	if n, _ := client.Exists(ctx, lockKey(900)).Result(); n != 0 {
		t.Error("expected lock key to be removed")
	}
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client, 5*time.Second, zap.NewNop())
	client.Del(ctx, lockKey(901))

	unlock, err := locker.Lock(ctx, 901)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer unlock()

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, 901)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got: %v", err)
	}
}

func TestRedisLocker_ForeignTokenKept(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client, 50*time.Millisecond, zap.NewNop())
	client.Del(ctx, lockKey(902))

	unlock, err := locker.Lock(ctx, 902)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	// Another holder takes the key over.
	client.Set(ctx, lockKey(902), "someone-else", time.Second)

	unlock()

	val, _ := client.Get(ctx, lockKey(902)).Result()
	if val != "someone-else" {
		t.Errorf("expected foreign lock to survive, got %q", val)
	}
	client.Del(ctx, lockKey(902))
}

func TestRedisLocker_ExtendsWhileHeld(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client, 150*time.Millisecond, zap.NewNop())
	client.Del(ctx, lockKey(904))

	unlock, err := locker.Lock(ctx, 904)
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	// Hold the lock well past its TTL.
	time.Sleep(500 * time.Millisecond)

	if n, _ := client.Exists(ctx, lockKey(904)).Result(); n != 1 {
		t.Fatal("expected lock to be extended while held")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(waitCtx, 904); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected second holder to wait, got: %v", err)
	}

	unlock()

	if n, _ := client.Exists(ctx, lockKey(904)).Result(); n != 0 {
		t.Error("expected lock key to be removed after unlock")
	}
}

func TestRedisLocker_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client, 5*time.Second, zap.NewNop())
	client.Del(ctx, lockKey(903))

	var inside, overlaps atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, 903)
			if err != nil {
				t.Errorf("Lock failed: %v", err)
				return
			}
			if inside.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if overlaps.Load() != 0 {
		t.Errorf("expected no overlapping holders, got %d", overlaps.Load())
	}
}
