// Package drain moves buffered events into durable partition files.
//
// A Worker executes one pass: enumerate candidate keys, read each key's
// buffered events, append them to the matching partition file, then remove
// exactly the entries that were read. A Scheduler runs the Worker on a
// fixed interval, one pass at a time, retrying failed keys with a capped
// per-key retry budget.
//
// A pass is not transactional across keys: keys that fail stay buffered
// and are picked up again on a later pass. A buffered entry is removed
// only after its batch reached stable storage, so the pipeline can
// duplicate events into a file (at-least-once) but never lose them.
package drain
