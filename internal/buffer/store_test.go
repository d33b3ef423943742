package buffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T, opts Options) (*miniredis.Miniredis, *Store) {
	t.Helper()
	m := miniredis.RunT(t)
	opts.Addr = m.Addr()
	s := New(opts)
	t.Cleanup(func() { s.Close() })
	return m, s
}

func TestAppendReadAllFIFO(t *testing.T) {
	_, s := newTestStore(t, Options{TTL: time.Hour})
	ctx := context.Background()
	for _, line := range []string{"a", "b", "c"} {
		if err := s.Append(ctx, "logs:user_1:1", line); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.ReadAll(ctx, "logs:user_1:1")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected FIFO order, got %v", got)
	}
}

func TestAppendResetsTTL(t *testing.T) {
	m, s := newTestStore(t, Options{TTL: time.Minute})
	ctx := context.Background()
	if err := s.Append(ctx, "logs:user_1:1", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.FastForward(30 * time.Second)
	if err := s.Append(ctx, "logs:user_1:1", "b"); err != nil {
		t.Fatalf("append: %v", err)
	}
	// 40s after the first append but only 10s after the second; the key
	// must still be alive because every append re-arms the TTL.
	m.FastForward(10 * time.Second)
	if !m.Exists("logs:user_1:1") {
		t.Fatalf("key expired despite TTL reset on append")
	}
	m.FastForward(time.Minute)
	if m.Exists("logs:user_1:1") {
		t.Fatalf("key should expire after TTL with no further writes")
	}
}

func TestTTLDisabled(t *testing.T) {
	m, s := newTestStore(t, Options{TTL: time.Minute, DisableTTL: true})
	ctx := context.Background()
	if err := s.Append(ctx, "logs:user_1:1", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.FastForward(24 * time.Hour)
	if !m.Exists("logs:user_1:1") {
		t.Fatalf("disabled TTL must not expire keys")
	}
	if s.TTL() != 0 {
		t.Fatalf("TTL() should report zero when disabled")
	}
}

// A TTL shorter than the drain interval silently discards buffered data
// before a pass runs. Documented behavior, reproduced here.
func TestTTLExpiryBeforeDrain(t *testing.T) {
	m, s := newTestStore(t, Options{TTL: 10 * time.Second})
	ctx := context.Background()
	if err := s.Append(ctx, "logs:user_1:1", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.FastForward(11 * time.Second) // drain interval would be e.g. 60s
	got, err := s.ReadAll(ctx, "logs:user_1:1")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired key to read empty, got %v", got)
	}
}

func TestRemoveFirstLeavesLaterAppends(t *testing.T) {
	_, s := newTestStore(t, Options{TTL: time.Hour})
	ctx := context.Background()
	key := "logs:user_1:1"
	for _, line := range []string{"a", "b"} {
		if err := s.Append(ctx, key, line); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Simulates an append racing the drain window: it lands after the
	// drain's read of two entries but before the removal.
	if err := s.Append(ctx, key, "late"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.RemoveFirst(ctx, key, 2); err != nil {
		t.Fatalf("remove first: %v", err)
	}
	got, err := s.ReadAll(ctx, key)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 1 || got[0] != "late" {
		t.Fatalf("late append must survive, got %v", got)
	}
}

func TestRemoveFirstWholeListDeletesKey(t *testing.T) {
	m, s := newTestStore(t, Options{TTL: time.Hour})
	ctx := context.Background()
	key := "logs:user_1:1"
	if err := s.Append(ctx, key, "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.RemoveFirst(ctx, key, 1); err != nil {
		t.Fatalf("remove first: %v", err)
	}
	if m.Exists(key) {
		t.Fatalf("fully drained key should be gone")
	}
	// Removing from an absent key is a no-op, not an error.
	if err := s.RemoveFirst(ctx, key, 3); err != nil {
		t.Fatalf("remove on absent key: %v", err)
	}
}

func TestEnumerate(t *testing.T) {
	_, s := newTestStore(t, Options{TTL: time.Hour})
	ctx := context.Background()
	for _, key := range []string{"logs:user_1:1", "logs:user_2:1", "other:thing"} {
		if err := s.Append(ctx, key, "x"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	keys, err := s.Enumerate(ctx, "logs:user_*:*")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 matching keys, got %v", keys)
	}
}

func TestLen(t *testing.T) {
	_, s := newTestStore(t, Options{TTL: time.Hour})
	ctx := context.Background()
	if n, err := s.Len(ctx, "missing"); err != nil || n != 0 {
		t.Fatalf("len missing: n=%d err=%v", n, err)
	}
	_ = s.Append(ctx, "k", "a")
	_ = s.Append(ctx, "k", "b")
	if n, err := s.Len(ctx, "k"); err != nil || n != 2 {
		t.Fatalf("len: n=%d err=%v", n, err)
	}
}

func TestUnavailableWrapsErrors(t *testing.T) {
	m, s := newTestStore(t, Options{TTL: time.Hour, OpTimeout: 500 * time.Millisecond})
	ctx := context.Background()
	m.Close()
	if err := s.Append(ctx, "k", "a"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := s.Enumerate(ctx, "*"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
