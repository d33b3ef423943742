// Package partition maps an event's owner and time to its buffered-store
// key and its durable file path.
//
// Keyspace (Redis, string keys):
//   - logs:user_{owner}:{bucket}
//
// where bucket = occurred_at / bucketSeconds. One key maps to exactly one
// durable file:
//
//	logs:user_{owner}:{bucket}  <->  {baseDir}/{owner}/{bucket}.jsonl
//
// Owner identifiers are restricted to a safe character set before they are
// embedded in a key or a file path, so a hostile identifier can never
// produce a key that fails to round-trip or a path outside baseDir.
package partition
