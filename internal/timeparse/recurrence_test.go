package timeparse

import (
	"testing"
	"time"
)

func TestBuildRule(t *testing.T) {
	cases := []struct {
		freq     string
		interval int
		days     []string
		want     string
	}{
		{"daily", 0, nil, "FREQ=DAILY;INTERVAL=1"},
		{"daily", 2, nil, "FREQ=DAILY;INTERVAL=2"},
		{"weekly", 1, []string{"Monday", "Wednesday"}, "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE"},
		{"weekly", 2, []string{"mon", "wed", "fri"}, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR"},
		{"weekly", 1, []string{"MO", "TU"}, "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU"},
		{"weekly", 1, []string{"Monday", "monday"}, "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO"},
		{"monthly", 1, []string{"Monday"}, "FREQ=MONTHLY;INTERVAL=1"},
		{"yearly", 1, nil, ""},
		{"", 1, nil, ""},
	}
	for _, tc := range cases {
		if got := BuildRule(tc.freq, tc.interval, tc.days); got != tc.want {
			t.Errorf("BuildRule(%q, %d, %v) = %q, want %q", tc.freq, tc.interval, tc.days, got, tc.want)
		}
	}
}

func TestBuildRuleAlwaysEmitsInterval(t *testing.T) {
	got := BuildRule("WEEKLY", 1, []string{"Monday", "Wednesday"})
	want := "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE"
	if got != want {
		t.Fatalf("BuildRule(WEEKLY, 1, [Monday Wednesday]) = %q, want %q", got, want)
	}

	rule, err := ParseRule(got)
	if err != nil {
		t.Fatalf("ParseRule(%q): %v", got, err)
	}
	names := []string{"Monday", "Wednesday"}
	if len(rule.ByDay) != len(names) {
		t.Fatalf("ByDay = %v, want %v", rule.ByDay, names)
	}
	for i, wd := range rule.ByDay {
		if wd.String() != names[i] {
			t.Errorf("ByDay[%d] = %s, want %s", i, wd, names[i])
		}
	}
}

func TestParseRuleRoundTrip(t *testing.T) {
	for _, s := range []string{
		"FREQ=DAILY;INTERVAL=1",
		"FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=TU",
		"FREQ=MONTHLY;INTERVAL=1",
	} {
		rule, err := ParseRule(s)
		if err != nil {
			t.Fatalf("ParseRule(%q): %v", s, err)
		}
		if got := rule.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestStringNormalizesMissingInterval(t *testing.T) {
	rule, err := ParseRule("FREQ=DAILY")
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	if got := rule.String(); got != "FREQ=DAILY;INTERVAL=1" {
		t.Errorf("String() = %q, want FREQ=DAILY;INTERVAL=1", got)
	}
}

func TestParseRuleEmpty(t *testing.T) {
	rule, err := ParseRule("")
	if err != nil || rule != nil {
		t.Errorf("ParseRule(\"\") = %v, %v; want nil, nil", rule, err)
	}
}

func TestParseRuleRejectsGarbage(t *testing.T) {
	for _, s := range []string{
		"FREQ=YEARLY",
		"FREQ=WEEKLY;BYDAY=XX",
		"FREQ=WEEKLY;INTERVAL=0",
		"INTERVAL=2",
		"COUNT=5",
		"FREQ",
	} {
		if _, err := ParseRule(s); err == nil {
			t.Errorf("ParseRule(%q) should fail", s)
		}
	}
}

func TestOccursOnNoRule(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	if !OccursOn(nil, false, anchor, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("item without rule must occur on its own date")
	}
	if OccursOn(nil, false, anchor, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Error("item without rule must not occur on other dates")
	}
}

func TestOccursOnAllDayIgnoresRule(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rule, _ := ParseRule("FREQ=DAILY;INTERVAL=1")
	if !OccursOn(rule, true, anchor, anchor) {
		t.Error("all-day item must occur on its own date")
	}
	if OccursOn(rule, true, anchor, anchor.AddDate(0, 0, 1)) {
		t.Error("all-day item matches by calendar date only, rule must be ignored")
	}
}

func TestOccursOnDaily(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rule, _ := ParseRule("FREQ=DAILY")
	if !OccursOn(rule, false, anchor, anchor.AddDate(0, 0, 40)) {
		t.Error("daily rule must match any later date")
	}
	if OccursOn(rule, false, anchor, anchor.AddDate(0, 0, -1)) {
		t.Error("no occurrence before the anchor date")
	}
}

func TestOccursOnWeeklyByDay(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	anchor := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rule, _ := ParseRule("FREQ=WEEKLY;BYDAY=MO,WE")
	if !OccursOn(rule, false, anchor, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Error("Wednesday should match BYDAY=MO,WE")
	}
	if OccursOn(rule, false, anchor, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Error("Thursday should not match BYDAY=MO,WE")
	}
}

func TestOccursOnWeeklyDefaultsToAnchorWeekday(t *testing.T) {
	// Anchor Tuesday, no BYDAY: only Tuesdays match.
	anchor := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rule, _ := ParseRule("FREQ=WEEKLY")
	if !OccursOn(rule, false, anchor, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Error("next Tuesday should match")
	}
	if OccursOn(rule, false, anchor, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Error("Monday should not match")
	}
}

func TestOccursOnMonthly(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rule, _ := ParseRule("FREQ=MONTHLY")
	if !OccursOn(rule, false, anchor, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("same day-of-month should match")
	}
	if OccursOn(rule, false, anchor, time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC)) {
		t.Error("different day-of-month should not match")
	}
}
