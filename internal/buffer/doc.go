// Package buffer implements the shared buffered store over the Redis wire
// protocol: list-valued keys holding serialized events awaiting a drain.
//
// Buffered state stays inspectable with plain Redis commands (LRANGE, LLEN,
// KEYS), which operational tooling relies on. Every operation applies a
// bounded timeout; any store failure wraps ErrUnavailable so callers can
// treat it as retryable by waiting for the next drain pass.
package buffer
