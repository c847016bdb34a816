package scrape

import (
	"fmt"
	"strings"
	"time"
)

var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"août":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
}

// ParseLongDate parses the verbose French timestamps shown on the work
// order detail pages, e.g. "mardi 1er juillet 2025 à 08:00 UTC".
func ParseLongDate(s string) (time.Time, error) {
	s = CleanText(s)
	// the first of the month is printed "1er"
	s = strings.Replace(s, "1er", "1", 1)

	fields := strings.Fields(s)
	// dddd d MMMM yyyy à HH:mm UTC
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("malformed long date %q", s)
	}

	month, ok := frenchMonths[strings.ToLower(fields[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month in date %q", s)
	}

	var day, year, hour, minute int
	if _, err := fmt.Sscanf(fields[1], "%d", &day); err != nil {
		return time.Time{}, fmt.Errorf("malformed day in date %q", s)
	}
	if _, err := fmt.Sscanf(fields[3], "%d", &year); err != nil {
		return time.Time{}, fmt.Errorf("malformed year in date %q", s)
	}
	if _, err := fmt.Sscanf(fields[5], "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("malformed time in date %q", s)
	}

	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

// ParseShortDateTime parses the compact "dd/MM/yyyy HH:mm" timestamps
// used in work period tables.
func ParseShortDateTime(s string) (time.Time, error) {
	return time.Parse("02/01/2006 15:04", CleanText(s))
}
