package conversation

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a point in time decoded leniently from backend JSON. Strings in
// an unrecognized layout decode to the zero time instead of failing the
// enclosing document.
type Timestamp struct {
	time.Time
}

// Now returns the current time in UTC
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

// ParseTimestamp parses s with the first matching layout
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON accepts strings in any known layout, unix seconds and null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Time, _ = ParseTimestamp(s)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err == nil {
		whole := int64(secs)
		t.Time = time.Unix(whole, int64((secs-float64(whole))*float64(time.Second))).UTC()
	}
	return nil
}
