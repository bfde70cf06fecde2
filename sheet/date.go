package sheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const sentinelMarker = "Date("

var sentinelPattern = regexp.MustCompile(`Date\(\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)`)

var plainDateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate normalizes a date cell to YYYY-MM-DD. The cell is either a
// spreadsheet sentinel Date(YEAR,MONTH,DAY) with a zero-based month, or a
// plain date string. ok is false when the value cannot be resolved.
func ParseDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if strings.Contains(value, sentinelMarker) {
		return parseSentinelDate(value)
	}

	for _, layout := range plainDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(dateLayout), true
		}
	}
	return "", false
}

func parseSentinelDate(value string) (string, bool) {
	match := sentinelPattern.FindStringSubmatch(value)
	if match == nil {
		return "", false
	}

	parts := make([]int, 3)
	for i := range parts {
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return "", false
		}
		parts[i] = n
	}
	year, month, day := parts[0], parts[1], parts[2]
	if year < 0 || year > 9999 || month < 0 || month > 11 || day < 1 || day > 31 {
		return "", false
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject instead.
	date := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month+1) || date.Day() != day {
		return "", false
	}
	return date.Format(dateLayout), true
}
