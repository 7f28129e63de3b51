package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the repeat cadence of a recurrence rule.
type Frequency string

const (
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
)

// Rule is a parsed recurrence rule. The serialized form is a restricted
// RRULE subset: "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE". On input INTERVAL
// and BYDAY may be absent (INTERVAL defaults to 1); serialization always
// writes INTERVAL. BYDAY is only meaningful for WEEKLY.
type Rule struct {
	Freq     Frequency
	Interval int
	ByDay    []time.Weekday
}

var dayCodeToWeekday = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var weekdayToDayCode = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// dayNameToCode maps the human day names the model produces to RRULE codes.
var dayNameToCode = map[string]string{
	"sunday":    "SU",
	"monday":    "MO",
	"tuesday":   "TU",
	"wednesday": "WE",
	"thursday":  "TH",
	"friday":    "FR",
	"saturday":  "SA",
	"sun":       "SU",
	"mon":       "MO",
	"tue":       "TU",
	"tues":      "TU",
	"wed":       "WE",
	"thu":       "TH",
	"thur":      "TH",
	"thurs":     "TH",
	"fri":       "FR",
	"sat":       "SA",
}

// BuildRule assembles a serialized recurrence rule from the loose fields a
// tool call provides. frequency is "daily", "weekly" or "monthly"
// (case-insensitive); repeatDays are human day names and only apply to
// weekly. Returns "" when frequency is empty or unrecognized, so callers
// can store the result directly.
func BuildRule(frequency string, interval int, repeatDays []string) string {
	var freq Frequency
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "daily":
		freq = FreqDaily
	case "weekly":
		freq = FreqWeekly
	case "monthly":
		freq = FreqMonthly
	default:
		return ""
	}

	if interval < 1 {
		interval = 1
	}

	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(string(freq))
	b.WriteString(";INTERVAL=")
	b.WriteString(strconv.Itoa(interval))
	if freq == FreqWeekly && len(repeatDays) > 0 {
		codes := make([]string, 0, len(repeatDays))
		seen := make(map[string]bool)
		for _, d := range repeatDays {
			code, ok := dayNameToCode[strings.ToLower(strings.TrimSpace(d))]
			if !ok {
				// Already a code?
				c := strings.ToUpper(strings.TrimSpace(d))
				if _, valid := dayCodeToWeekday[c]; valid {
					code = c
				} else {
					continue
				}
			}
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			b.WriteString(";BYDAY=")
			b.WriteString(strings.Join(codes, ","))
		}
	}
	return b.String()
}

// ParseRule parses the serialized rule form. An empty string yields
// (nil, nil): the item does not repeat.
func ParseRule(s string) (*Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	rule := &Rule{Interval: 1}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed recurrence component %q", part)
		}
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		switch key {
		case "FREQ":
			switch Frequency(strings.ToUpper(val)) {
			case FreqDaily, FreqWeekly, FreqMonthly:
				rule.Freq = Frequency(strings.ToUpper(val))
			default:
				return nil, fmt.Errorf("unsupported recurrence frequency %q", val)
			}
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid recurrence interval %q", val)
			}
			rule.Interval = n
		case "BYDAY":
			for _, code := range strings.Split(val, ",") {
				wd, ok := dayCodeToWeekday[strings.ToUpper(strings.TrimSpace(code))]
				if !ok {
					return nil, fmt.Errorf("invalid recurrence day %q", code)
				}
				rule.ByDay = append(rule.ByDay, wd)
			}
		default:
			return nil, fmt.Errorf("unsupported recurrence component %q", key)
		}
	}
	if rule.Freq == "" {
		return nil, fmt.Errorf("recurrence rule %q missing FREQ", s)
	}
	return rule, nil
}

// String serializes the rule back to its wire form. INTERVAL is always
// written, matching BuildRule, so parse and serialize round-trip.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(string(r.Freq))
	b.WriteString(";INTERVAL=")
	b.WriteString(strconv.Itoa(interval))
	if r.Freq == FreqWeekly && len(r.ByDay) > 0 {
		codes := make([]string, len(r.ByDay))
		for i, wd := range r.ByDay {
			codes[i] = weekdayToDayCode[wd]
		}
		b.WriteString(";BYDAY=")
		b.WriteString(strings.Join(codes, ","))
	}
	return b.String()
}

// OccursOn reports whether an item anchored at anchor occurs on the given
// date. All-day items match by calendar date only; their rule, if any, is
// not consulted. A nil rule means no repetition: the item occurs only on
// its anchor date. Dates before the anchor never match.
//
// DAILY matches every day. WEEKLY matches the BYDAY weekdays, or the
// anchor's weekday when BYDAY is absent. MONTHLY matches the anchor's
// day-of-month. INTERVAL is intentionally ignored for matching.
func OccursOn(rule *Rule, allDay bool, anchor, date time.Time) bool {
	if allDay || rule == nil {
		return SameDate(anchor, date)
	}

	anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if day.Before(anchorDay) {
		return false
	}

	switch rule.Freq {
	case FreqDaily:
		return true
	case FreqWeekly:
		if len(rule.ByDay) == 0 {
			return date.Weekday() == anchor.Weekday()
		}
		for _, wd := range rule.ByDay {
			if date.Weekday() == wd {
				return true
			}
		}
		return false
	case FreqMonthly:
		return date.Day() == anchor.Day()
	}
	return false
}
