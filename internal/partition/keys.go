package partition

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	keyPrefix = "logs:user_"
	fileExt   = ".jsonl"

	// DefaultBucketSeconds is one day; every event of an owner within the
	// same day lands in the same buffered key and durable file.
	DefaultBucketSeconds int64 = 86400
)

// DefaultKeyPattern matches every partition key in the buffered store.
const DefaultKeyPattern = "logs:user_*:*"

// Codec failure conditions.
var (
	ErrMalformedKey     = errors.New("malformed partition key")
	ErrUnsafeIdentifier = errors.New("unsafe owner identifier")
)

// Codec derives partition keys and durable file paths.
type Codec struct {
	bucketSeconds int64
}

// NewCodec creates a codec with the given bucket width in seconds.
// Non-positive widths fall back to DefaultBucketSeconds.
func NewCodec(bucketSeconds int64) Codec {
	if bucketSeconds <= 0 {
		bucketSeconds = DefaultBucketSeconds
	}
	return Codec{bucketSeconds: bucketSeconds}
}

// BucketSeconds returns the configured bucket width.
func (c Codec) BucketSeconds() int64 { return c.bucketSeconds }

// Bucket maps a unix-seconds timestamp to its bucket number.
func (c Codec) Bucket(ts int64) int64 { return ts / c.bucketSeconds }

// Key builds the buffered-store key for an owner and event time.
// Fails with ErrUnsafeIdentifier before embedding a hostile owner.
func (c Codec) Key(owner string, ts int64) (string, error) {
	if !SafeOwner(owner) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeIdentifier, owner)
	}
	return keyPrefix + owner + ":" + strconv.FormatInt(c.Bucket(ts), 10), nil
}

// Parse recovers (owner, bucket) from a key produced by Key. Keys that do
// not match the expected shape fail with ErrMalformedKey; keys whose owner
// segment is outside the safe set fail with ErrUnsafeIdentifier. Both are
// expected when enumeration patterns are coarser than the key schema.
func (c Codec) Parse(key string) (owner string, bucket int64, err error) {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	idx := strings.LastIndexByte(rest, ':')
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	owner = rest[:idx]
	bucket, perr := strconv.ParseInt(rest[idx+1:], 10, 64)
	if perr != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	if !SafeOwner(owner) {
		return "", 0, fmt.Errorf("%w: %q", ErrUnsafeIdentifier, owner)
	}
	return owner, bucket, nil
}

// FilePath builds the durable file path for an owner and bucket:
// {baseDir}/{owner}/{bucket}.jsonl. The owner is re-checked here so a path
// outside baseDir is structurally impossible regardless of the caller.
func (c Codec) FilePath(baseDir, owner string, bucket int64) (string, error) {
	if !SafeOwner(owner) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeIdentifier, owner)
	}
	return filepath.Join(baseDir, owner, strconv.FormatInt(bucket, 10)+fileExt), nil
}

// SafeOwner reports whether an owner identifier may be embedded in keys and
// paths: non-empty, alphanumeric plus '.', '_', '-', and not a pure-dot
// name. The set excludes the key delimiter ':' and every path separator.
func SafeOwner(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
