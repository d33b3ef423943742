package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/rzbill/flume/internal/buffer"
	"github.com/rzbill/flume/internal/partition"
	logpkg "github.com/rzbill/flume/pkg/log"
)

func newTestWatchdog(t *testing.T) (*miniredis.Miniredis, *buffer.Store, *Watchdog) {
	t.Helper()
	m := miniredis.RunT(t)
	store := buffer.New(buffer.Options{Addr: m.Addr(), DisableTTL: true})
	t.Cleanup(func() { store.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "fatal", Format: "text"})
	w := NewWatchdog(WatchdogOptions{
		Store:   store,
		Logger:  logger,
		Pattern: partition.DefaultKeyPattern,
	})
	return m, store, w
}

func TestSweepCountsUndrainedKeys(t *testing.T) {
	m, store, w := newTestWatchdog(t)
	ctx := context.Background()

	if got := w.Sweep(ctx); got != 0 {
		t.Fatalf("empty store should be clean, got %d", got)
	}

	if err := store.Append(ctx, "logs:user_123:19818", `{"user_id":"123","event":"x","timestamp":1}`); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, "logs:user_456:19818", `{"user_id":"456","event":"y","timestamp":2}`); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Set("unrelated", "value")

	if got := w.Sweep(ctx); got != 2 {
		t.Fatalf("expected 2 undrained keys, got %d", got)
	}
}

func TestSweepSurvivesStoreOutage(t *testing.T) {
	m, _, w := newTestWatchdog(t)
	m.Close()
	if got := w.Sweep(context.Background()); got != 0 {
		t.Fatalf("outage sweep should report 0, got %d", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	_, _, w := newTestWatchdog(t)
	w.interval = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("watchdog did not stop after cancel")
	}
}
