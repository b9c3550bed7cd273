package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type cachedBoard struct {
	Scope string
	Users []string
}

func TestGetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewStore(time.Minute))
	var calls atomic.Int32

	load := func(context.Context) (cachedBoard, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return cachedBoard{Scope: "global", Users: []string{"a"}}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := GetOrLoad(context.Background(), loader, "same-key", load)
			if err != nil {
				errCh <- err
				return
			}
			if v.Scope != "global" || len(v.Users) != 1 {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestGetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewStore(time.Minute))
	var calls atomic.Int32
	load := func(context.Context) (cachedBoard, error) {
		calls.Add(1)
		return cachedBoard{Scope: "math"}, nil
	}

	for i := 0; i < 2; i++ {
		v, err := GetOrLoad(context.Background(), loader, "k", load)
		if err != nil {
			t.Fatalf("GetOrLoad #%d error: %v", i, err)
		}
		if v.Scope != "math" {
			t.Fatalf("GetOrLoad #%d scope=%q", i, v.Scope)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestGetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewStore(time.Minute))
	var calls atomic.Int32
	load := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errUnexpectedValue
		}
		return 7, nil
	}

	if _, err := GetOrLoad(context.Background(), loader, "k", load); !errors.Is(err, errUnexpectedValue) {
		t.Fatalf("expected load error, got %v", err)
	}
	v, err := GetOrLoad(context.Background(), loader, "k", load)
	if err != nil || v != 7 {
		t.Fatalf("second load: v=%d err=%v", v, err)
	}
}

func TestStore_ExpiresAndDeletesPrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	store.Set(ctx, "snapshot:global:latest", []byte("1"))
	store.Set(ctx, "snapshot:math:latest", []byte("2"))
	store.Set(ctx, "profile:u1", []byte("3"))

	store.DeletePrefix(ctx, "snapshot:")
	if _, ok := store.Get(ctx, "snapshot:math:latest"); ok {
		t.Fatalf("expected prefix delete")
	}
	if _, ok := store.Get(ctx, "profile:u1"); !ok {
		t.Fatalf("unrelated key removed")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := store.Get(ctx, "profile:u1"); ok {
		t.Fatalf("expected expiry")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
