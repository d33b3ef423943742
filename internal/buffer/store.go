package buffer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable marks transient store failures (connection refused,
// timeouts). The drain scheduler is the retry mechanism: callers skip the
// current pass and the data stays buffered.
var ErrUnavailable = errors.New("buffered store unavailable")

// DefaultOpTimeout bounds every store operation when none is configured.
const DefaultOpTimeout = 5 * time.Second

// Options configures a Store.
type Options struct {
	Addr      string
	OpTimeout time.Duration
	// TTL is applied (and reset) on every append. Zero or DisableTTL means
	// keys never expire and cleanup relies entirely on the drainer.
	TTL        time.Duration
	DisableTTL bool
}

// Store is the Redis-backed buffered store shared by the ingest and drain
// paths.
type Store struct {
	rdb        *redis.Client
	opTimeout  time.Duration
	ttl        time.Duration
	disableTTL bool
}

// New creates a Store. The connection is established lazily; use Ping to
// verify reachability at startup.
func New(opts Options) *Store {
	t := opts.OpTimeout
	if t <= 0 {
		t = DefaultOpTimeout
	}
	return &Store{
		rdb:        redis.NewClient(&redis.Options{Addr: opts.Addr}),
		opTimeout:  t,
		ttl:        opts.TTL,
		disableTTL: opts.DisableTTL,
	}
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }

// TTL returns the configured key expiry (zero when disabled).
func (s *Store) TTL() time.Duration {
	if s.disableTTL {
		return 0
	}
	return s.ttl
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func wrap(op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return wrap("ping", s.rdb.Ping(ctx).Err())
}

// Append pushes a serialized event onto the tail of the list at key and
// resets the key's TTL, so a key under continuous writes never expires
// mid-burst. Push and expire travel in one pipeline round trip.
func (s *Store) Append(ctx context.Context, key, line string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, key, line)
	if !s.disableTTL && s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return wrap("append", err)
}

// ReadAll returns the full list contents in insertion order without
// mutating the key. A missing key yields an empty slice.
func (s *Store) ReadAll(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	lines, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err := wrap("read_all", err); err != nil {
		return nil, err
	}
	return lines, nil
}

// RemoveFirst removes exactly n entries from the head of the list. The
// drain worker calls this with the count it read, so entries appended
// between the read and the removal survive. Redis deletes the key itself
// once the list is empty.
func (s *Store) RemoveFirst(ctx context.Context, key string, n int) error {
	if n <= 0 {
		return nil
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return wrap("remove_first", s.rdb.LPopCount(ctx, key, n).Err())
}

// Delete removes a key and all its contents. Ops tooling only; the drain
// path uses RemoveFirst to stay race-free against concurrent appends.
func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return wrap("delete", s.rdb.Del(ctx, key).Err())
}

// Enumerate lists all keys matching a glob-style pattern. This is a global
// scan (KEYS) whose cost grows with total key count; acceptable at the
// current scale, and swappable for a SCAN-based cursor behind this method.
func (s *Store) Enumerate(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	keys, err := s.rdb.Keys(ctx, pattern).Result()
	if err := wrap("enumerate", err); err != nil {
		return nil, err
	}
	return keys, nil
}

// Len returns the number of buffered entries at key (0 if absent).
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	n, err := s.rdb.LLen(ctx, key).Result()
	if err := wrap("len", err); err != nil {
		return 0, err
	}
	return n, nil
}
