package calendar

import (
	"regexp"
	"time"
)

// datePattern matches the first German style date in a listing cell, e.g.
// "01.02.2024" in "01.02.2024 - 02.02.2024"
var datePattern = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.(\d{4}|\d{2})\b`)

// ParseDate returns the first date found in dateText. The zero time is
// returned when no date can be parsed.
func ParseDate(dateText string) time.Time {
	m := datePattern.FindString(dateText)
	if m == "" {
		return time.Time{}
	}

	for _, layout := range []string{"2.1.2006", "2.1.06"} {
		if t, err := time.Parse(layout, m); err == nil {
			return t
		}
	}
	return time.Time{}
}
