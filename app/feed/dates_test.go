package feed

import (
	"testing"
	"time"
)

func TestNormalizePubDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"2024-03-05T14:30:00Z", "2024-03-05 14:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 GMT", "2024-03-05 14:30:00"},
		{"Tue, 05 Mar 2024 23:30:00 -0200", "2024-03-06 01:30:00"},
		{"2023-12-31T23:30:00-01:00", "2024-01-01 00:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 EST", "2024-03-05 19:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 EDT", "2024-03-05 18:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 CST", "2024-03-05 20:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 MDT", "2024-03-05 20:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 PST", "2024-03-05 22:30:00"},
		{"Tue, 05 Mar 2024 20:30:00 PDT", "2024-03-06 03:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 UT", "2024-03-05 14:30:00"},
		{"Tue, 05 Mar 2024 14:30:00 utc", "2024-03-05 14:30:00"},
		{"2024-03-05 14:30:00 (EST)", "2024-03-05 19:30:00"},
		{"  2024-02-29T00:00:00Z  ", "2024-02-29 00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizePubDate(tt.raw)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestNormalizePubDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a date", "Tue, 05 Mar 2024 14:30:00 CET", "Tue, 05 Mar 2024 14:30:00 XYZ"} {
		if _, err := NormalizePubDate(raw); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

func TestParsePubDate(t *testing.T) {
	got, err := ParsePubDate("2024-03-05 14:30:00")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if _, err := ParsePubDate("2024-02-30 00:00:00"); err == nil {
		t.Error("Expected error for impossible calendar date")
	}
	if _, err := ParsePubDate("03/05/2024"); err == nil {
		t.Error("Expected error for wrong layout")
	}
}

func TestFormatPubDate(t *testing.T) {
	local := time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("X", 3*60*60))
	if got := FormatPubDate(local); got != "2023-12-31 22:00:00" {
		t.Errorf("Expected UTC conversion, got '%s'", got)
	}
}
