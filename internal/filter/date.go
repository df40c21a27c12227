package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	minutesAgoRegex = regexp.MustCompile(`\b(\d+|an?|one)\s*(?:minutes?|mins?)\s*ago`)
	hoursAgoRegex   = regexp.MustCompile(`\b(\d+|an?|one)\s*(?:hours?|hrs?|h)\s*ago`)
	daysAgoRegex    = regexp.MustCompile(`\b(\d+|an?|one)\s*(?:days?|d)\s*ago`)
	weeksAgoRegex   = regexp.MustCompile(`\b(\d+|an?|one)\s*(?:weeks?|wks?|w)\s*ago`)
	monthsAgoRegex  = regexp.MustCompile(`\b(\d+|an?|one)\s*(?:months?|mos?)\s*ago`)

	isoDateRegex   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)?`)
	monthDateRegex = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}`)
	slashDateRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

// maxRelativeAge bounds "N units ago" phrases. Larger counts are treated as
// unrecognised so the duration cannot overflow.
const maxRelativeAge = 3650 * 24 * time.Hour

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var monthLayouts = []string{
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan. 2, 2006",
}

// NormalizeDate turns a posted-date phrase into a point in time relative to
// now. Relative phrases ("3 hours ago", "yesterday") and absolute dates are
// recognised; anything else resolves to now.
func NormalizeDate(raw string, now time.Time) time.Time {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return now
	}

	relative := []struct {
		re   *regexp.Regexp
		unit time.Duration
	}{
		{minutesAgoRegex, time.Minute},
		{hoursAgoRegex, time.Hour},
		{daysAgoRegex, 24 * time.Hour},
		{weeksAgoRegex, 7 * 24 * time.Hour},
		{monthsAgoRegex, 30 * 24 * time.Hour},
	}
	for _, r := range relative {
		if m := r.re.FindStringSubmatch(text); m != nil {
			n := quantity(m[1])
			if n > int(maxRelativeAge/r.unit) {
				return now
			}
			return now.Add(-time.Duration(n) * r.unit)
		}
	}

	switch {
	case strings.Contains(text, "just now"), strings.Contains(text, "today"):
		return now
	case strings.Contains(text, "yesterday"):
		return now.Add(-24 * time.Hour)
	}

	if t, ok := parseAbsolute(strings.TrimSpace(raw), now.Location()); ok {
		return t
	}
	return now
}

// WithinDays reports whether posted falls inside the last days days.
// A zone-aware posted value is compared by its wall clock in now's location.
func WithinDays(posted time.Time, days int, now time.Time) bool {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return !stripZone(posted, now.Location()).Before(cutoff)
}

func quantity(s string) int {
	switch s {
	case "a", "an", "one":
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseAbsolute(raw string, loc *time.Location) (time.Time, bool) {
	if m := isoDateRegex.FindString(raw); m != "" {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, m, loc); err == nil {
				return stripZone(t, loc), true
			}
		}
	}

	if m := monthDateRegex.FindString(raw); m != "" {
		m = strings.Join(strings.Fields(m), " ")
		for _, layout := range monthLayouts {
			if t, err := time.ParseInLocation(layout, titleMonth(m), loc); err == nil {
				return t, true
			}
		}
	}

	//assume dd/mm/yyyy
	if m := slashDateRegex.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
		}
	}
	return time.Time{}, false
}

// titleMonth normalises "OCT 14, 2026" / "oct 14, 2026" to "Oct 14, 2026".
func titleMonth(s string) string {
	if s == "" {
		return s
	}
	i := strings.IndexAny(s, " .")
	if i < 0 {
		return s
	}
	word := strings.ToLower(s[:i])
	if word == "sept" {
		word = "sep"
	}
	return strings.ToUpper(word[:1]) + word[1:] + s[i:]
}

// stripZone keeps the wall clock of t and moves it into loc.
func stripZone(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
