package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WireFormat is the timestamp layout the service accepts on writes.
const WireFormat = "2006-01-02 15:04"

// readFormats are the layouts the service has been observed returning.
// The wire format comes first; ISO variants cover responses that bypass
// the service's formatter.
var readFormats = []string{
	WireFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateTime is a point in time carried over the task API. It always
// marshals in WireFormat and parses any of the formats the service
// returns, so only one representation ever exists in memory.
type DateTime struct {
	time.Time
}

// NewDateTime creates a DateTime truncated to minute precision,
// matching the wire format's resolution.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t.Truncate(time.Minute)}
}

// ParseDateTime parses a timestamp in any accepted layout.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range readFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid timestamp %q: expected %q", s, WireFormat)
}

// String returns the timestamp in wire format.
func (d DateTime) String() string {
	return d.Format(WireFormat)
}

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
