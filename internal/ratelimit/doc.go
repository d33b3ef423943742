// Package ratelimit provides the token bucket guarding the ingest
// endpoint.
package ratelimit
