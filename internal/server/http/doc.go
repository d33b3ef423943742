// Package httpserver exposes the ingest API: event writes into the
// buffered store, a buffered-key inspection endpoint, and a health check.
package httpserver
