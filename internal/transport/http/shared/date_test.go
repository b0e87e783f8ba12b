package shared

import (
	"testing"
	"time"
)

func TestParseDatePlain(t *testing.T) {
	got, err := ParseDate("2025-06-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseDateTruncatesTimestamps(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-02T23:00:00Z", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		// Offsets resolve to the UTC calendar day before truncation.
		{"2025-06-03T01:30:00+02:00", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("02/06/2025"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	got, err := ParseDate("")
	if err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for empty input, got %v, %v", got, err)
	}
}
