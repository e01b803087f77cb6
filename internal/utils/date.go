// internal/utils/date.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursAgoPattern     = regexp.MustCompile(`^(\d+)\s*hrs?\b`)
	minutesAgoPattern   = regexp.MustCompile(`^(\d+)\s*mins?\b`)
	yesterdayPattern    = regexp.MustCompile(`^Yesterday at (\d{1,2}):(\d{2})`)
	dayMonthPattern     = regexp.MustCompile(`^(\d{1,2}) ([A-Za-z]+) at (\d{1,2}):(\d{2})`)
	dayMonthYearPattern = regexp.MustCompile(`^(\d{1,2}) ([A-Za-z]+) (\d{4}) at (\d{1,2}):(\d{2})`)
)

// ParseDate converts the timestamp text shown under a post into an absolute
// time relative to now. The bool is false when no known format matched, in
// which case now is returned.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	loc := now.Location()

	if m := hoursAgoPattern.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(hours) * time.Hour), true
	}

	if m := minutesAgoPattern.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(minutes) * time.Minute), true
	}

	if strings.EqualFold(text, "just now") {
		return now, true
	}

	if m := yesterdayPattern.FindStringSubmatch(text); m != nil {
		hour, minute, ok := clock(m[1], m[2])
		if ok {
			y := now.AddDate(0, 0, -1)
			return time.Date(y.Year(), y.Month(), y.Day(), hour, minute, 0, 0, loc), true
		}
	}

	if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, okMonth := parseMonth(m[2])
		hour, minute, okClock := clock(m[3], m[4])
		if okMonth && okClock {
			date := time.Date(now.Year(), month, day, hour, minute, 0, 0, loc)
			if date.After(now) {
				date = date.AddDate(-1, 0, 0)
			}
			return date, true
		}
	}

	if m := dayMonthYearPattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, okMonth := parseMonth(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, minute, okClock := clock(m[4], m[5])
		if okMonth && okClock {
			return time.Date(year, month, day, hour, minute, 0, 0, loc), true
		}
	}

	return now, false
}

func clock(h, m string) (int, int, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// parseMonth accepts English month names, full or abbreviated.
func parseMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if name == "sept" {
		return time.September, true
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return m, true
		}
	}
	return 0, false
}

func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
