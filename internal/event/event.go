package event

import (
	"encoding/json"
	"errors"
)

// Event is one ingested log record.
type Event struct {
	UserID    string `json:"user_id"`
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
}

// Validation errors.
var (
	ErrMissingUserID = errors.New("user_id must not be empty")
	ErrMissingEvent  = errors.New("event must not be empty")
	ErrBadTimestamp  = errors.New("timestamp must be a non-negative unix second")
)

// Validate checks field presence constraints. Identifier safety is the
// partition codec's concern, not validated here.
func (e Event) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	if e.Event == "" {
		return ErrMissingEvent
	}
	if e.Timestamp < 0 {
		return ErrBadTimestamp
	}
	return nil
}

// EncodeLine serializes the event as a single jsonl line (no trailing newline).
func (e Event) EncodeLine() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeLine parses a jsonl line back into an Event.
func DecodeLine(line string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
