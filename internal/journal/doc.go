// Package journal appends serialized events to per-partition durable files.
//
// Files are line-delimited (one event per line), append-only, and fsynced
// before an append reports success. A failed append surfaces
// ErrPartialWrite and the caller must keep the source entries buffered;
// re-appending the same batch on a later attempt is accepted
// (at-least-once delivery into the file).
package journal
