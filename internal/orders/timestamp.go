package orders

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Backends that never set a creation date report zero-ish epoch values.
// Anything resolving to within 24h of the Unix epoch is treated as "no date"
// rather than a 1970 calendar date.
const noDateCutoffMillis = 24 * 60 * 60 * 1000

// Timestamp is an order creation time that may legitimately be absent.
// The gateway reports timestamps as epoch seconds, epoch milliseconds or an
// ISO-like string; classification happens once, here, instead of at every
// call site.
type Timestamp struct {
	t     time.Time
	valid bool
}

// NewTimestamp wraps a concrete instant.
func NewTimestamp(t time.Time) Timestamp {
	if t.UnixMilli() < noDateCutoffMillis {
		return Timestamp{}
	}
	return Timestamp{t: t, valid: true}
}

// NoDate returns the explicit "no date" marker.
func NoDate() Timestamp {
	return Timestamp{}
}

// HasDate reports whether the timestamp carries a real instant.
func (ts Timestamp) HasDate() bool {
	return ts.valid
}

// Time returns the underlying instant; zero time when no date is set.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Before reports whether ts sorts before other. A missing date sorts before
// any real date, so newest-first ordering pushes undated orders to the end.
func (ts Timestamp) Before(other Timestamp) bool {
	if !ts.valid {
		return other.valid
	}
	if !other.valid {
		return false
	}
	return ts.t.Before(other.t)
}

// parseLayouts are tried in order for string timestamps.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp classifies a raw timestamp value from the gateway.
// Numeric input is interpreted as epoch seconds (epoch milliseconds when the
// magnitude is too large for seconds). Values resolving to within 24h of the
// epoch, unparseable strings and nil all map to the no-date marker.
func ParseTimestamp(v interface{}) Timestamp {
	switch val := v.(type) {
	case nil:
		return NoDate()
	case float64:
		return fromEpoch(val)
	case int64:
		return fromEpoch(float64(val))
	case int:
		return fromEpoch(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return NoDate()
		}
		return fromEpoch(f)
	case string:
		return parseString(val)
	default:
		return NoDate()
	}
}

func fromEpoch(n float64) Timestamp {
	// A raw value under the cutoff is within 24h of the epoch when read as
	// milliseconds, and nothing plausible when read as seconds, so it is a
	// sentinel under either interpretation.
	if n < float64(noDateCutoffMillis) {
		return NoDate()
	}

	millis := int64(n)
	// Epoch seconds until the magnitude only makes sense as milliseconds.
	if n < 1e12 {
		millis = int64(n * 1000)
	}

	return Timestamp{t: time.UnixMilli(millis), valid: true}
}

func parseString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoDate()
	}

	// Numeric strings are epoch values
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n)
	}

	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return NewTimestamp(t)
		}
	}

	return NoDate()
}

// MarshalJSON emits RFC3339 or null for no-date.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.Format(time.RFC3339))
}

// UnmarshalJSON accepts a number, a string or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*ts = ParseTimestamp(raw)
	return nil
}
