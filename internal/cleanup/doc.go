// Package cleanup runs the safety-net sweep used when key expiry is
// disabled, flagging buffered keys the drainer has not cleared.
package cleanup
