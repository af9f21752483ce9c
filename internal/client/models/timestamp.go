package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayout matches ISO-8601 with millisecond precision, the format
// browsers emit for Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var acceptedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a time.Time that tolerates the timestamp shapes produced by
// the file service and by documents written elsewhere. Values without a zone
// are read as UTC, numbers as Unix milliseconds. Empty strings and null
// decode to the zero time. Any other value is kept verbatim and written back
// unchanged, so a document never loses a field it could not read.
type Timestamp struct {
	time.Time
	raw string
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsSet reports whether the value carries a time or an unreadable original.
func (t Timestamp) IsSet() bool {
	return !t.IsZero() || t.raw != ""
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() && t.raw != "" {
		return []byte(t.raw), nil
	}
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(timestampLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = Timestamp{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if parsed, err := ParseTimestamp(s); err == nil {
			t.Time = parsed
			return nil
		}
		t.raw = string(b)
		return nil
	}

	var ms json.Number
	if err := json.Unmarshal(b, &ms); err == nil {
		if n, err := ms.Int64(); err == nil {
			t.Time = time.UnixMilli(n).UTC()
			return nil
		}
	}

	if !json.Valid(b) {
		return fmt.Errorf("timestamp: invalid json %q", b)
	}
	t.raw = string(b)
	return nil
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}
