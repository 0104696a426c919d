package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
	"github.com/rl1809/shareit/internal/port"
)

func main() {
	flagSet := pflag.NewFlagSet("stress_test", pflag.ExitOnError)
	totalRequests := flagSet.IntP("requests", "n", 50, "number of concurrent overlapping booking requests")
	lockDriver := flagSet.String("lock", "memory", "item lock driver: memory or redis")
	redisAddr := flagSet.String("redis-addr", "localhost:6379", "redis address for the redis lock driver")
	flagSet.Parse(os.Args[1:])

	if err := run(*totalRequests, *lockDriver, *redisAddr); err != nil {
		fmt.Fprintf(os.Stderr, "stress test: %v\n", err)
		os.Exit(1)
	}
}

func run(totalRequests int, lockDriver, redisAddr string) error {
	ctx := context.Background()

	var locker port.ItemLocker
	switch lockDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		locker = storage.NewRedisLocker(rdb, 10*time.Second, zap.NewNop())
	case "memory":
		locker = storage.NewMemoryLocker()
	default:
		return fmt.Errorf("unknown lock driver %q", lockDriver)
	}

	// Initialize store with one owner, one item and a renter per request
	store := storage.NewMemoryAdapter()
	owner := domain.User{Name: "owner", Email: "owner@stress.local"}
	if err := store.AddUser(ctx, &owner); err != nil {
		return err
	}
	item := domain.Item{OwnerID: owner.ID, Name: "bike", Available: true}
	if err := store.AddItem(ctx, &item); err != nil {
		return err
	}

	renters := make([]int64, totalRequests)
	for i := range renters {
		u := domain.User{Name: fmt.Sprintf("renter-%d", i), Email: fmt.Sprintf("renter-%d@stress.local", i)}
		if err := store.AddUser(ctx, &u); err != nil {
			return err
		}
		renters[i] = u.ID
	}

	bookingService := service.NewBookingService(store, store, store, locker)

	// Every request overlaps every other one by at least an hour
	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	var created atomic.Int32
	var createFailed atomic.Int32
	ids := make([]int64, totalRequests)

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			offset := time.Duration(i%3) * time.Hour
			b, err := bookingService.AddBooking(ctx, base.Add(offset), base.Add(offset+4*time.Hour), item.ID, renters[i])
			if err != nil {
				createFailed.Add(1)
				return
			}
			ids[i] = b.ID
			created.Add(1)
		}(i)
	}
	wg.Wait()

	// Approve all of them at once
	var approved atomic.Int32
	var overlapped atomic.Int32
	var otherErrors atomic.Int32

	for _, id := range ids {
		if id == 0 {
			continue
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()

			_, err := bookingService.Resolve(ctx, id, true, owner.ID)
			switch {
			case err == nil:
				approved.Add(1)
			case errors.Is(err, domain.ErrTimeOverlap):
				overlapped.Add(1)
			default:
				otherErrors.Add(1)
			}
		}(id)
	}
	wg.Wait()
	elapsed := time.Since(start)

	stored, err := store.ListApprovedByItem(ctx, item.ID)
	if err != nil {
		return err
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Lock Driver:      %s\n", lockDriver)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Created:          %d\n", created.Load())
	fmt.Printf("Create Failed:    %d\n", createFailed.Load())
	fmt.Printf("Approved:         %d\n", approved.Load())
	fmt.Printf("Overlap Rejected: %d\n", overlapped.Load())
	fmt.Printf("Other Errors:     %d\n", otherErrors.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	pass := true
	if created.Load() != int32(totalRequests) {
		fmt.Printf("FAIL: Expected all %d bookings created, got %d\n", totalRequests, created.Load())
		pass = false
	}
	if approved.Load() == 1 && overlapped.Load() == int32(totalRequests-1) {
		fmt.Println("PASS: Exactly 1 approval succeeded, the rest overlapped")
	} else {
		fmt.Printf("FAIL: Expected 1 approval and %d overlaps, got %d/%d\n",
			totalRequests-1, approved.Load(), overlapped.Load())
		pass = false
	}
	if len(stored) == 1 {
		fmt.Println("PASS: Item has a single approved booking")
	} else {
		fmt.Printf("FAIL: Expected 1 approved booking in store, got %d\n", len(stored))
		pass = false
	}

	if !pass {
		return errors.New("invariants violated")
	}
	return nil
}
