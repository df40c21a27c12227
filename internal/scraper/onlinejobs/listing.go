package onlinejobs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"onlinejobs-scout/internal/extract"
	"onlinejobs-scout/internal/filter"
	"onlinejobs-scout/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const (
	jobLinkSelector = `a[href*="/jobseekers/job/"]`
	cardSelector    = ".jobpost-cat-box, .job-item, .jobpost-item, .job-list-item, [data-job-id], tr, li, article"
	minTitleLen     = 5
)

var placeholderTitles = map[string]bool{
	"see more":     true,
	"see more...":  true,
	"view more":    true,
	"view details": true,
	"read more":    true,
	"apply now":    true,
}

var (
	postedPhraseRegex = regexp.MustCompile(`(?i)posted(?:\s+on)?[:\s]+([^\n•·|]+)`)
	relativeRegex     = regexp.MustCompile(`(?i)\b(?:\d+|an?)\s*(?:minutes?|mins?|hours?|hrs?|days?|weeks?|months?)\s+ago\b|\byesterday\b|\btoday\b|\bjust now\b`)
)

// Listing is the result of one search results page.
type Listing struct {
	Records []models.JobRecord
	// Misses counts job links that did not yield a usable record.
	Misses int
}

// listingCard is what a single job link resolves to before field extraction.
type listingCard struct {
	container *goquery.Selection
	text      string // line-preserving container text
}

// ParseListing extracts one record per distinct job link on a search page.
func (s *Site) ParseListing(body []byte, keyword string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	now := s.now()
	out := &Listing{}
	seen := make(map[string]bool)

	doc.Find(jobLinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		jobURL, err := s.absolute(href)
		if err != nil {
			out.Misses++
			return
		}

		title := extract.Value(a, titleStrategies...)
		if !validTitle(title) {
			out.Misses++
			return
		}

		id := JobID(jobURL)
		if seen[id] {
			return
		}
		seen[id] = true

		card := newListingCard(a)
		contact := contactName(card.text)
		company := extract.Value(card, companyStrategies...)
		if company == "" {
			company = contact
		}

		posted := now
		if raw := extract.Value(card, listingDateStrategies...); raw != "" {
			posted = filter.NormalizeDate(raw, now)
		}

		out.Records = append(out.Records, models.JobRecord{
			JobID:          id,
			Title:          title,
			Company:        company,
			ContactPerson:  contact,
			URL:            jobURL,
			JobType:        jobTypeOf(card.text),
			PostedDate:     posted,
			KeywordMatched: keyword,
			ScrapedAt:      now,
		})
	})

	return out, nil
}

func validTitle(title string) bool {
	if utf8.RuneCountInString(title) < minTitleLen {
		return false
	}
	return !placeholderTitles[strings.ToLower(title)]
}

var titleStrategies = []extract.Strategy[*goquery.Selection]{
	{Name: "heading-in-link", Extract: func(a *goquery.Selection) (string, bool) {
		h := a.Find("h1, h2, h3, h4, h5, h6").First()
		return extract.Text(h), h.Length() > 0
	}},
	{Name: "link-text", Extract: func(a *goquery.Selection) (string, bool) {
		return extract.Text(a), true
	}},
}

// newListingCard finds the element that holds the rest of a job's fields.
// Some layouts wrap the whole card in the link, others put the link inside it.
func newListingCard(a *goquery.Selection) *listingCard {
	container := a.Closest(cardSelector)
	if container.Length() == 0 {
		if a.Find(".jobpost-cat-box, h1, h2, h3, h4, h5, h6").Length() > 0 {
			container = a
		} else if gp := a.Parent().Parent(); gp.Length() > 0 {
			container = gp
		} else {
			container = a.Parent()
		}
	}
	return &listingCard{
		container: container,
		text:      extract.BlockText(container),
	}
}

var companyStrategies = []extract.Strategy[*listingCard]{
	{Name: "company-element", Extract: func(c *listingCard) (string, bool) {
		el := c.container.Find(".company, .employer, .company-name, [class*=company], [class*=employer]").First()
		return extract.Text(el), el.Length() > 0
	}},
}

// dateElementSelector matches "date" only as a whole class or a hyphen or
// underscore separated part of one, so candidate-* and validate stay out.
const dateElementSelector = `.date, .posted, .time, [class*=-date], [class*=_date], [class^=date-], [class*=" date-"], [class^=date_], [class*=" date_"], [class*=posted]`

var listingDateStrategies = []extract.Strategy[*listingCard]{
	{Name: "time-datetime", Extract: func(c *listingCard) (string, bool) {
		return c.container.Find("time[datetime]").First().Attr("datetime")
	}},
	{Name: "time-text", Extract: func(c *listingCard) (string, bool) {
		el := c.container.Find("time").First()
		return extract.Text(el), el.Length() > 0
	}},
	{Name: "date-element", Extract: func(c *listingCard) (string, bool) {
		el := c.container.Find(dateElementSelector).First()
		return extract.Text(el), el.Length() > 0
	}},
	{Name: "posted-phrase", Extract: func(c *listingCard) (string, bool) {
		if m := postedPhraseRegex.FindStringSubmatch(c.text); m != nil {
			return m[1], true
		}
		return "", false
	}},
	{Name: "relative-phrase", Extract: func(c *listingCard) (string, bool) {
		m := relativeRegex.FindString(c.text)
		return m, m != ""
	}},
}
