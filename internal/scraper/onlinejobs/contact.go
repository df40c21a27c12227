package onlinejobs

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"onlinejobs-scout/internal/extract"
	"onlinejobs-scout/internal/models"
)

// Listing cards and detail headers render the employer as
// "Jane Cruz • Posted on Oct 14, 2026". Patterns run most specific first and
// only span horizontal whitespace, so a name never crosses a line.
var namePatterns = []extract.Strategy[string]{
	{Name: "capitalized-words-bullet", Extract: nameBefore(regexp.MustCompile(
		`([A-Z][\p{L}.'’]+(?:[ \t]+[A-Z][\p{L}.'’]+){1,3})[ \t]*[•·|][ \t]*(?:Posted|posted|POSTED)`))},
	{Name: "words-any-delimiter", Extract: nameBefore(regexp.MustCompile(
		`([A-Z][\p{L}.'’&]*(?:[ \t]+[\p{L}.'’&]+){0,4})[ \t]*[•·|\-–][ \t]*(?:Posted|posted|POSTED)`))},
	{Name: "loose", Extract: nameBefore(regexp.MustCompile(
		`([A-Z][\p{L}\d .'’&,]{2,49}?)[ \t]*[•·|\-–][ \t]*(?:Posted|posted|POSTED)`))},
}

// notNameWords are words that show up next to "Posted" but are never part of
// a person or company name.
var notNameWords = map[string]bool{
	"full": true, "part": true, "time": true, "full-time": true, "part-time": true,
	"fulltime": true, "parttime": true, "contract": true, "freelance": true, "gig": true,
	"any": true, "posted": true, "see": true, "more": true, "apply": true, "view": true,
	"details": true, "job": true, "jobs": true, "salary": true, "hours": true, "hour": true,
	"week": true, "weeks": true, "month": true, "months": true, "day": true, "days": true,
	"today": true, "yesterday": true, "ago": true, "new": true, "urgent": true,
	"hiring": true, "per": true, "type": true, "work": true, "on": true, "updated": true,
	"jan": true, "january": true, "feb": true, "february": true, "mar": true, "march": true,
	"apr": true, "april": true, "may": true, "jun": true, "june": true, "jul": true,
	"july": true, "aug": true, "august": true, "sep": true, "sept": true, "september": true,
	"oct": true, "october": true, "nov": true, "november": true, "dec": true, "december": true,
}

// nameBefore runs re over each line and returns the first candidate that
// survives validation. A candidate with leading noise ("Full Time Jane Cruz")
// is retried with words dropped from the front.
func nameBefore(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, line := range strings.Split(text, "\n") {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if name, ok := bestName(m[1]); ok {
					return name, true
				}
			}
		}
		return "", false
	}
}

func bestName(candidate string) (string, bool) {
	words := strings.Fields(candidate)
	for i := range words {
		name := strings.Trim(strings.Join(words[i:], " "), " ,-–")
		if validName(name) {
			return name, true
		}
	}
	return "", false
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 50 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, w := range strings.Fields(name) {
		if notNameWords[strings.ToLower(strings.Trim(w, ".,'’&"))] {
			return false
		}
	}
	return true
}

// contactName runs the name cascade over line-preserving text.
func contactName(text string) string {
	return extract.Value(text, namePatterns...)
}

// jobTypeOf maps free text onto the job type vocabulary.
func jobTypeOf(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "full time"), strings.Contains(t, "full-time"), strings.Contains(t, "fulltime"):
		return models.JobTypeFullTime
	case strings.Contains(t, "part time"), strings.Contains(t, "part-time"), strings.Contains(t, "parttime"):
		return models.JobTypePartTime
	case strings.Contains(t, "gig"):
		return models.JobTypeGig
	case strings.Contains(t, "contract"):
		return models.JobTypeContract
	case strings.Contains(t, "freelance"):
		return models.JobTypeFreelance
	}
	return ""
}
