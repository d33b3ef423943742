// Package runtime wires the buffered store, key codec, and config into a
// single-node Flume instance. It exposes Open/Close and a basic health
// check used by the server and drainer entrypoints.
package runtime
