package timeparse

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"3:00 PM", 15, 0, true},
		{"3:00PM", 15, 0, true},
		{"12:30 AM", 0, 30, true},
		{"12:00 PM", 12, 0, true},
		{"15:04", 15, 4, true},
		{"09:05", 9, 5, true},
		{"1500", 15, 0, true},
		{"930", 9, 30, true},
		{"9", 9, 0, true},
		{"25:00", 0, 0, false},
		{"12:75", 0, 0, false},
		{"noonish", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		h, m, ok := ParseClock(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseClock(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && (h != tc.hour || m != tc.minute) {
			t.Errorf("ParseClock(%q) = %d:%02d, want %d:%02d", tc.in, h, m, tc.hour, tc.minute)
		}
	}
}

func TestNormalizeRangeHappyPath(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end, warnings := NormalizeRange(day, "3:00 PM", "4:30 PM")
	if start.Hour() != 15 || start.Minute() != 0 {
		t.Errorf("start = %v, want 15:00", start)
	}
	if end.Hour() != 16 || end.Minute() != 30 {
		t.Errorf("end = %v, want 16:30", end)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestNormalizeRangeInvalidStartFallsBackToNoon(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end, warnings := NormalizeRange(day, "whenever", "")
	if start.Hour() != 12 || start.Minute() != 0 {
		t.Errorf("start = %v, want noon fallback", start)
	}
	if got := end.Sub(start); got != time.Hour {
		t.Errorf("duration = %v, want 1h default", got)
	}
	if len(warnings) == 0 {
		t.Error("expected warnings for unparsable start")
	}
}

func TestNormalizeRangeEndBeforeStart(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end, warnings := NormalizeRange(day, "14:00", "13:00")
	if got := end.Sub(start); got != time.Hour {
		t.Errorf("duration = %v, want forced 1h", got)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", warnings)
	}
}

func TestNormalizeRangeEndEqualsStart(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end, _ := NormalizeRange(day, "10:00", "10:00")
	if !end.After(start) {
		t.Errorf("end %v must be after start %v", end, start)
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ParseDate("2026-03-10", time.UTC, fallback)
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 10 {
		t.Errorf("ParseDate = %v", got)
	}
	if got := ParseDate("not-a-date", time.UTC, fallback); !got.Equal(fallback) {
		t.Errorf("malformed date should return fallback, got %v", got)
	}
	if got := ParseDate("", time.UTC, fallback); !got.Equal(fallback) {
		t.Errorf("empty date should return fallback, got %v", got)
	}
}
