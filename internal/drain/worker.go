package drain

import (
	"context"
	"errors"
	"sync"

	"github.com/rzbill/flume/internal/buffer"
	"github.com/rzbill/flume/internal/journal"
	"github.com/rzbill/flume/internal/partition"
	logpkg "github.com/rzbill/flume/pkg/log"
)

// Stats summarizes one drain pass.
type Stats struct {
	Scanned   int // keys returned by enumeration
	Drained   int // keys fully persisted and removed
	Events    int // individual events made durable
	Empty     int // keys that read empty (raced a delete or expiry)
	Malformed int // keys skipped for malformed/unsafe shape
	Failed    int // keys skipped after a store or journal failure

	// FailedKeys lists the keys behind Failed, for the scheduler's
	// retry bookkeeping. Malformed keys are not listed: retrying them
	// cannot succeed.
	FailedKeys []string
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	Store   *buffer.Store
	Journal *journal.Writer
	Codec   partition.Codec
	Logger  logpkg.Logger

	// Pattern selects candidate keys; BaseDir roots the partition files.
	Pattern string
	BaseDir string

	// Concurrency bounds in-flight keys within one pass.
	Concurrency int
}

// Worker drains buffered partition keys into durable files.
type Worker struct {
	store       *buffer.Store
	journal     *journal.Writer
	codec       partition.Codec
	logger      logpkg.Logger
	pattern     string
	baseDir     string
	concurrency int
}

// NewWorker creates a Worker.
func NewWorker(opts WorkerOptions) *Worker {
	c := opts.Concurrency
	if c <= 0 {
		c = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = partition.DefaultKeyPattern
	}
	return &Worker{
		store:       opts.Store,
		journal:     opts.Journal,
		codec:       opts.Codec,
		logger:      logger,
		pattern:     pattern,
		baseDir:     opts.BaseDir,
		concurrency: c,
	}
}

// RunPass executes one full drain pass. Only an enumeration failure aborts
// the pass; per-key failures are counted and left buffered for a later
// attempt. Keys are processed with bounded concurrency and the context is
// honored at key boundaries, never mid-key.
func (w *Worker) RunPass(ctx context.Context) (Stats, error) {
	keys, err := w.store.Enumerate(ctx, w.pattern)
	if err != nil {
		return Stats{}, err
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats = Stats{Scanned: len(keys)}
		sem   = make(chan struct{}, w.concurrency)
	)
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()
			events, err := w.DrainKey(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && events == 0:
				stats.Empty++
			case err == nil:
				stats.Drained++
				stats.Events += events
			case errors.Is(err, partition.ErrMalformedKey), errors.Is(err, partition.ErrUnsafeIdentifier):
				stats.Malformed++
			default:
				stats.Failed++
				stats.FailedKeys = append(stats.FailedKeys, key)
			}
		}(key)
	}
	wg.Wait()
	return stats, nil
}

// DrainKey drains a single key: read everything buffered, append it to the
// key's partition file, then remove exactly the entries read. Returns the
// number of events made durable; zero with a nil error means the key read
// empty. The source entries are never removed unless the journal append
// succeeded.
func (w *Worker) DrainKey(ctx context.Context, key string) (int, error) {
	lines, err := w.store.ReadAll(ctx, key)
	if err != nil {
		w.logger.Warn("read failed; key stays buffered",
			logpkg.Str("key", key), logpkg.Err(err))
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	owner, bucket, err := w.codec.Parse(key)
	if err != nil {
		if errors.Is(err, partition.ErrUnsafeIdentifier) {
			// Security-relevant: something wrote a key with a hostile
			// owner segment into our pattern space.
			w.logger.Warn("unsafe owner identifier in key; skipping",
				logpkg.Str("key", key), logpkg.Err(err))
		} else {
			w.logger.Warn("unparseable key in pattern space; skipping",
				logpkg.Str("key", key), logpkg.Err(err))
		}
		return 0, err
	}
	path, err := w.codec.FilePath(w.baseDir, owner, bucket)
	if err != nil {
		w.logger.Warn("unsafe owner identifier in key; skipping",
			logpkg.Str("key", key), logpkg.Err(err))
		return 0, err
	}

	if err := w.journal.AppendBatch(ctx, path, lines); err != nil {
		w.logger.Warn("journal append failed; key stays buffered",
			logpkg.Str("key", key), logpkg.Str("path", path), logpkg.Err(err))
		return 0, err
	}

	// Remove exactly what was read: entries appended after the snapshot
	// survive for the next pass. A failure here duplicates the batch on
	// the next attempt (at-least-once) but never loses it.
	if err := w.store.RemoveFirst(ctx, key, len(lines)); err != nil {
		w.logger.Warn("remove after durable write failed; batch may duplicate",
			logpkg.Str("key", key), logpkg.Int("events", len(lines)), logpkg.Err(err))
		return 0, err
	}

	w.logger.Debug("key drained",
		logpkg.Str("key", key), logpkg.Str("path", path), logpkg.Int("events", len(lines)))
	return len(lines), nil
}
