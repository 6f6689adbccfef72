package utils

import (
	"strings"
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*60*60)
	// 03:30 UTC on the 21st is still the 20th seven hours west
	ts := time.Date(2025, 10, 21, 3, 30, 0, 0, time.UTC)

	if got := DayKey(ts, loc); got != "2025-10-20" {
		t.Errorf("DayKey() = %q, want %q", got, "2025-10-20")
	}
	if got := DayKey(ts, time.UTC); got != "2025-10-21" {
		t.Errorf("DayKey() = %q, want %q", got, "2025-10-21")
	}
}

func TestParseDayKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid", key: "2025-10-20"},
		{name: "leap day", key: "2024-02-29"},
		{name: "not a leap year", key: "2025-02-29", wantErr: true},
		{name: "month out of range", key: "2025-13-01", wantErr: true},
		{name: "unpadded", key: "2025-1-5", wantErr: true},
		{name: "timestamp", key: "2025-10-20T00:00:00Z", wantErr: true},
		{name: "empty", key: "", wantErr: true},
		{name: "garbage", key: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDayKey(tt.key, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDayKey(%q) expected error, got %v", tt.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDayKey(%q) unexpected error: %v", tt.key, err)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("ParseDayKey(%q) = %v, want midnight", tt.key, got)
			}
			if ValidDayKey(tt.key) != true {
				t.Errorf("ValidDayKey(%q) = false, want true", tt.key)
			}
		})
	}
}

func TestLoadLocation(t *testing.T) {
	for _, tz := range []string{"", "Local"} {
		loc, err := LoadLocation(tz)
		if err != nil {
			t.Fatalf("LoadLocation(%q) unexpected error: %v", tz, err)
		}
		if loc != time.Local {
			t.Errorf("LoadLocation(%q) = %v, want time.Local", tz, loc)
		}
	}

	if _, err := LoadLocation("Not/AZone"); err == nil {
		t.Error("LoadLocation() expected error for invalid zone")
	}
	if ValidateTimezone("Not/AZone") {
		t.Error("ValidateTimezone() = true, want false for invalid zone")
	}
	if !ValidateTimezone("UTC") {
		t.Error("ValidateTimezone(UTC) = false, want true")
	}
}

func TestExpandHome(t *testing.T) {
	orig := userHomeDir
	userHomeDir = func() (string, error) { return "/home/tester", nil }
	defer func() { userHomeDir = orig }()

	got, err := ExpandHome("~/.config/dayscore/dayscore.db")
	if err != nil {
		t.Fatalf("ExpandHome() unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "/home/tester/") {
		t.Errorf("ExpandHome() = %q, want prefix /home/tester/", got)
	}

	got, err = ExpandHome("/abs/path.db")
	if err != nil || got != "/abs/path.db" {
		t.Errorf("ExpandHome(abs) = %q, %v; want unchanged", got, err)
	}
}
