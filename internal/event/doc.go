// Package event defines the log event record and its jsonl line codec.
//
// Events are serialized once at ingest time; the drain path moves the
// serialized lines verbatim, so a line written to a durable file is
// byte-identical to the line the gateway buffered.
package event
