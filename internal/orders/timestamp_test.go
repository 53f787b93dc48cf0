package orders

import (
	"testing"
	"time"
)

func TestParseTimestampEpoch(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		hasDate bool
	}{
		{"zero", float64(0), false},
		{"negative", float64(-1), false},
		{"one second after epoch", float64(1), false},
		{"just under a day in seconds", float64(86399), false},
		{"just under a day in millis", float64(86399999), false},
		{"exactly the cutoff", float64(86400000), true},
		{"epoch seconds", float64(1735689600), true},   // 2025-01-01
		{"epoch millis", float64(1735689600000), true}, // 2025-01-01
		{"nil", nil, false},
		{"int seconds", int64(1735689600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.input)
			if got.HasDate() != tt.hasDate {
				t.Errorf("ParseTimestamp(%v).HasDate() = %v, want %v", tt.input, got.HasDate(), tt.hasDate)
			}
		})
	}
}

func TestParseTimestampSecondsVsMillis(t *testing.T) {
	sec := ParseTimestamp(float64(1735689600))
	ms := ParseTimestamp(float64(1735689600000))

	if !sec.Time().Equal(ms.Time()) {
		t.Errorf("seconds and millis forms should resolve to the same instant, got %v vs %v",
			sec.Time(), ms.Time())
	}
}

func TestParseTimestampString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hasDate bool
	}{
		{"rfc3339", "2025-06-02T10:30:00Z", true},
		{"space separated", "2025-06-02 10:30:00", true},
		{"date only", "2025-06-02", true},
		{"numeric string seconds", "1735689600", true},
		{"numeric string zero", "0", false},
		{"empty", "", false},
		{"garbage", "not-a-date", false},
		{"1970 string", "1970-01-01 00:00:01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.input)
			if got.HasDate() != tt.hasDate {
				t.Errorf("ParseTimestamp(%q).HasDate() = %v, want %v", tt.input, got.HasDate(), tt.hasDate)
			}
		})
	}
}

func TestTimestampOrdering(t *testing.T) {
	older := NewTimestamp(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	newer := NewTimestamp(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	none := NoDate()

	if !older.Before(newer) {
		t.Error("older.Before(newer) should be true")
	}
	if newer.Before(older) {
		t.Error("newer.Before(older) should be false")
	}
	if !none.Before(older) {
		t.Error("no-date should sort before any real date")
	}
	if older.Before(none) {
		t.Error("a real date should not sort before no-date")
	}
	if none.Before(NoDate()) {
		t.Error("no-date should not sort before no-date")
	}
}

func TestTimestampJSONRoundTrip(t *testing.T) {
	ts := Timestamp{}
	if err := ts.UnmarshalJSON([]byte("1735689600")); err != nil {
		t.Fatalf("UnmarshalJSON(number) failed: %v", err)
	}
	if !ts.HasDate() {
		t.Fatal("expected a date from epoch seconds")
	}

	out, err := ts.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(out) == "null" {
		t.Error("expected non-null JSON for a dated timestamp")
	}

	var none Timestamp
	if err := none.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatalf("UnmarshalJSON(null) failed: %v", err)
	}
	if none.HasDate() {
		t.Error("null should parse as no-date")
	}

	out, err = none.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("no-date should marshal as null, got %s", out)
	}
}
