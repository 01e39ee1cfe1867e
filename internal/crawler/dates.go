package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNumbers = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// Matches "<Month> <Day>-<rest>, <Year>" after en-dashes are normalized.
// The rest may be a bare day ("7-8") or a second month name for cross-month
// events ("September 30-October 2").
var dateRangePattern = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2})-.*?,\s*(\d{4})$`)

// ParseStartDate converts an rk9 date-range string into the ISO start date.
//
//	"February 7-8, 2026"          -> "2026-02-07"
//	"September 30–October 2, 2022" -> "2022-09-30"
//
// Returns "" when the string does not parse; the field is advisory and only
// used for sorting, so failure is not an error.
func ParseStartDate(raw string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "–", "-")
	match := dateRangePattern.FindStringSubmatch(normalized)
	if match == nil {
		return ""
	}
	month, ok := monthNumbers[strings.ToLower(match[1])]
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(match[2])
	if err != nil || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", match[3], int(month), day)
}

// StartDatePtr is ParseStartDate for callers persisting a nullable column.
func StartDatePtr(raw string) *string {
	iso := ParseStartDate(raw)
	if iso == "" {
		return nil
	}
	return &iso
}
