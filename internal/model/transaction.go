package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionEntry records one completed move.
type TransactionEntry struct {
	Timestamp   Timestamp  `json:"timestamp"`
	SessionID   string     `json:"session_id"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Category    CategoryID `json:"category"`
	Undone      bool       `json:"undone"`
}

// NewSessionID returns an id of the form ss-YYYYmmdd-HHMMSS-xxxxxx.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("ss-%s-%s", now.Format("20060102-150405"), suffix)
}

// Timestamp is an ISO-8601 time that also accepts timestamps written
// without a zone offset, which are read as local time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes the time as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON decodes any of the accepted ISO-8601 layouts.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
