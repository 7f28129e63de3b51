package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fallback applied when a clock string cannot be parsed. The product policy
// is availability over strict validation: a bad time becomes noon rather
// than a failed request, and the caller gets a warning string to surface.
const (
	fallbackHour   = 12
	fallbackMinute = 0

	defaultDuration = time.Hour
)

// ParseClock parses a wall-clock string into hour/minute. Accepted forms:
// "3:04 PM" (12-hour), "15:04" (24-hour) and a bare digit run read as HHMM
// ("1504" -> 15:04, "930" -> 9:30). Returns ok=false when the input is not
// recognizable or components are out of range.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	if strings.HasSuffix(upper, "AM") {
		meridiem = "AM"
	} else if strings.HasSuffix(upper, "PM") {
		meridiem = "PM"
	}
	if meridiem != "" {
		upper = strings.TrimSpace(strings.TrimSuffix(upper, meridiem))
	}

	if strings.Contains(upper, ":") {
		parts := strings.SplitN(upper, ":", 2)
		h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		hour, minute = h, m
	} else {
		// Bare digit run: HHMM or HMM
		digits := upper
		if _, err := strconv.Atoi(digits); err != nil {
			return 0, 0, false
		}
		switch len(digits) {
		case 3, 4:
			split := len(digits) - 2
			hour, _ = strconv.Atoi(digits[:split])
			minute, _ = strconv.Atoi(digits[split:])
		case 1, 2:
			hour, _ = strconv.Atoi(digits)
			minute = 0
		default:
			return 0, 0, false
		}
	}

	if meridiem == "PM" && hour < 12 {
		hour += 12
	}
	if meridiem == "AM" && hour == 12 {
		hour = 0
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// NormalizeRange resolves client-supplied start/end clock strings against a
// calendar day into absolute timestamps.
//
// Policy (deliberate, matches the product's availability-over-correctness
// stance): an unparsable start falls back to noon; a missing or unparsable
// end defaults to start + 1 hour; an end at or before start is forced to
// start + 1 hour. Every fallback is reported in warnings rather than
// swallowed.
func NormalizeRange(day time.Time, startStr, endStr string) (start, end time.Time, warnings []string) {
	sh, sm, ok := ParseClock(startStr)
	if !ok {
		sh, sm = fallbackHour, fallbackMinute
		if strings.TrimSpace(startStr) != "" {
			warnings = append(warnings, fmt.Sprintf("could not parse start time %q, defaulted to %02d:%02d", startStr, sh, sm))
		} else {
			warnings = append(warnings, fmt.Sprintf("no start time given, defaulted to %02d:%02d", sh, sm))
		}
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, day.Location())

	eh, em, ok := ParseClock(endStr)
	if !ok {
		end = start.Add(defaultDuration)
		if strings.TrimSpace(endStr) != "" {
			warnings = append(warnings, fmt.Sprintf("could not parse end time %q, defaulted to start + 1h", endStr))
		}
		return start, end, warnings
	}

	end = time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, day.Location())
	if !end.After(start) {
		end = start.Add(defaultDuration)
		warnings = append(warnings, fmt.Sprintf("end time %q was not after start, forced to start + 1h", endStr))
	}
	return start, end, warnings
}

// ParseDate parses a YYYY-MM-DD date in the given location, returning
// fallback when the string is empty or malformed.
func ParseDate(s string, loc *time.Location, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return fallback
	}
	return d
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
