package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// NotSpecified marks a field the extractor could not recover.
const NotSpecified = "Not specified"

// Persistence caps, in runes.
const (
	MaxTitleLen       = 255
	MaxCompanyLen     = 100
	MaxContactLen     = 100
	MaxSalaryLen      = 50
	MaxJobTypeLen     = 50
	MaxDescriptionLen = 500
)

// Job types recognised by both extraction passes.
const (
	JobTypeFullTime  = "Full-time"
	JobTypePartTime  = "Part-time"
	JobTypeContract  = "Contract"
	JobTypeFreelance = "Freelance"
	JobTypeGig       = "Gig"
)

// JobRecord is one posting as stored and notified.
type JobRecord struct {
	JobID          string    `json:"job_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	ContactPerson  string    `json:"contact_person"`
	URL            string    `json:"url"`
	Salary         string    `json:"salary"`
	JobType        string    `json:"job_type"`
	Description    string    `json:"description"`
	PostedDate     time.Time `json:"posted_date"`
	KeywordMatched string    `json:"keyword_matched"`
	ScrapedAt      time.Time `json:"scraped_at"`
	Sent           bool      `json:"sent"`
}

// Enrichment holds what the detail page could recover. Empty strings and a
// nil PostedDate mean "not recovered".
type Enrichment struct {
	Title         string
	Company       string
	ContactPerson string
	Salary        string
	JobType       string
	Description   string
	PostedDate    *time.Time
}

// Enrich merges e over r. A field is only overwritten when e carries a value,
// so a listing-pass value is never blanked by a detail-pass miss.
func (r *JobRecord) Enrich(e Enrichment) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" && v != NotSpecified {
			*dst = v
		}
	}
	set(&r.Title, e.Title)
	set(&r.Company, e.Company)
	set(&r.ContactPerson, e.ContactPerson)
	set(&r.Salary, e.Salary)
	set(&r.JobType, e.JobType)
	set(&r.Description, e.Description)
	if e.PostedDate != nil && !e.PostedDate.IsZero() {
		r.PostedDate = *e.PostedDate
	}
}

// Finalize fills sentinels for missing fields and applies the length caps.
func (r *JobRecord) Finalize() {
	r.Title = orSentinel(Truncate(r.Title, MaxTitleLen))
	r.Company = orSentinel(Truncate(r.Company, MaxCompanyLen))
	r.ContactPerson = orSentinel(Truncate(r.ContactPerson, MaxContactLen))
	r.Salary = orSentinel(Truncate(r.Salary, MaxSalaryLen))
	r.JobType = orSentinel(Truncate(r.JobType, MaxJobTypeLen))
	r.Description = orSentinel(TruncateEllipsis(r.Description, MaxDescriptionLen))
	if r.PostedDate.IsZero() {
		r.PostedDate = r.ScrapedAt
	}
}

// Specified reports whether v holds a recovered value.
func Specified(v string) bool {
	return v != "" && v != NotSpecified
}

// SearchText is the lower-cased text the keyword matcher looks at.
func (r JobRecord) SearchText() string {
	parts := make([]string, 0, 2)
	for _, v := range []string{r.Title, r.Description} {
		if Specified(v) {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Truncate cuts s to at most n runes without splitting a character.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// TruncateEllipsis is Truncate with a trailing "..." when text was dropped;
// the result still fits in n runes.
func TruncateEllipsis(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n || n <= 3 {
		return Truncate(s, n)
	}
	return Truncate(s, n-3) + "..."
}

func orSentinel(v string) string {
	if v == "" {
		return NotSpecified
	}
	return v
}
