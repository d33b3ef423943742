// Package id generates compact, time-ordered identifiers used to correlate
// log lines belonging to one drain pass.
package id
