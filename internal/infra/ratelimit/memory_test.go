package ratelimit

import (
	"context"
	"testing"
	"time"

	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

func newTestLimiter(t *testing.T) (*MemoryLimiter, *store.Store) {
	t.Helper()
	logger := zerolog.Nop()
	st, err := store.New(t.TempDir(), time.Second, &logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return NewMemoryLimiter(st, &logger), st
}

func TestMemoryLimiter_WindowRollover(t *testing.T) {
	lim, _ := newTestLimiter(t)
	now := time.Unix(1700000000, 0)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	key := Key("redeem", "1.2.3.4")
	for i := 1; i <= 3; i++ {
		ok, err := lim.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d denied, want allowed", i)
		}
	}
	if ok, _ := lim.Allow(ctx, key, 3, time.Minute); ok {
		t.Error("4th attempt allowed inside the window")
	}

	// After the window passes, the counter starts fresh.
	now = now.Add(61 * time.Second)
	if ok, _ := lim.Allow(ctx, key, 3, time.Minute); !ok {
		t.Error("attempt after rollover denied")
	}
}

func TestMemoryLimiter_LenientWhenSaturated(t *testing.T) {
	lim, _ := newTestLimiter(t)
	now := time.Unix(1700000000, 0)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	key := Key("admin_login", "1.2.3.4")
	for i := 0; i < 2; i++ {
		if ok, _ := lim.Allow(ctx, key, 2, time.Minute); !ok {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}

	// Denied attempts do not push the counter past the cap.
	for i := 0; i < 10; i++ {
		if ok, _ := lim.Allow(ctx, key, 2, time.Minute); ok {
			t.Fatal("saturated window admitted an attempt")
		}
	}
	if got := lim.counters[key].Count; got != 2 {
		t.Errorf("Count = %d after denials, want 2", got)
	}
}

func TestMemoryLimiter_RetryAfter(t *testing.T) {
	lim, _ := newTestLimiter(t)
	now := time.Unix(1700000000, 0)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	if got := lim.RetryAfter(ctx, "unknown:key"); got != 0 {
		t.Errorf("RetryAfter(unknown) = %v, want 0", got)
	}

	key := Key("redeem", "1.2.3.4")
	if _, err := lim.Allow(ctx, key, 1, time.Minute); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if got := lim.RetryAfter(ctx, key); got != time.Minute {
		t.Errorf("RetryAfter = %v, want %v", got, time.Minute)
	}

	now = now.Add(45 * time.Second)
	if got := lim.RetryAfter(ctx, key); got != 15*time.Second {
		t.Errorf("RetryAfter mid-window = %v, want 15s", got)
	}
}

func TestMemoryLimiter_PersistsAcrossRestart(t *testing.T) {
	logger := zerolog.Nop()
	st, err := store.New(t.TempDir(), time.Second, &logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	ctx := context.Background()

	first := NewMemoryLimiter(st, &logger)
	key := Key("redeem", "1.2.3.4")
	for i := 0; i < 2; i++ {
		if ok, _ := first.Allow(ctx, key, 2, time.Hour); !ok {
			t.Fatalf("attempt %d denied", i+1)
		}
	}

	// A fresh limiter over the same store sees the saturated window.
	second := NewMemoryLimiter(st, &logger)
	if ok, _ := second.Allow(ctx, key, 2, time.Hour); ok {
		t.Error("restarted limiter forgot the saturated window")
	}
}

func TestKey(t *testing.T) {
	if got := Key("redeem", "1.2.3.4"); got != "redeem:1.2.3.4" {
		t.Errorf("Key = %q", got)
	}
}
