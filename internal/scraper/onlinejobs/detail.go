package onlinejobs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"onlinejobs-scout/internal/extract"
	"onlinejobs-scout/internal/filter"
	"onlinejobs-scout/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const minDescriptionLen = 50

var (
	titleSuffixRegex = regexp.MustCompile(`(?i)\s*[|\-–]\s*onlinejobs(?:\.ph)?.*$`)
	currencyRegex    = regexp.MustCompile(`(?:\$|₱|PHP\s?|Php\s?)\s?\d[\d,]*(?:\.\d{1,2})?(?:\s*(?:-|to)\s*(?:\$|₱|PHP\s?|Php\s?)?\s?\d[\d,]*(?:\.\d{1,2})?)?(?:\s*/\s*(?:hr|hour|month|mo|week|wk))?`)
	postedOnRegex    = regexp.MustCompile(`(?i)posted\s+on[:\s]+([^\n•·|]+)`)
)

var descriptionSelectors = []string{
	"#job-description",
	".job-description",
	"div.description",
	".job-detail",
	".job-content",
	".jobpost-description",
	".job-desc",
	"div[class*=desc]",
	"div[class*=detail]",
	"div[class*=content]",
}

// detailPage is a parsed job page plus its rendered text.
type detailPage struct {
	doc  *goquery.Document
	text string // line-preserving body text
}

// ParseDetail recovers whatever it can from a job page. A field it cannot find
// is left empty; the page as a whole never fails extraction.
func (s *Site) ParseDetail(body []byte) (models.Enrichment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.Enrichment{}, fmt.Errorf("parse detail page: %w", err)
	}
	p := &detailPage{doc: doc, text: extract.BlockText(doc.Find("body"))}

	e := models.Enrichment{
		Title:         extract.Value(p, detailTitle...),
		Company:       extract.Value(p, detailCompany...),
		ContactPerson: extract.Value(p, detailContact...),
		Salary:        extract.Value(p, detailSalary...),
		JobType:       extract.Value(p, detailJobType...),
		Description:   extract.Value(p, detailDescription...),
	}
	if raw := extract.Value(p, detailPosted...); raw != "" {
		posted := filter.NormalizeDate(raw, s.now())
		e.PostedDate = &posted
	}
	return e, nil
}

// labelValue finds a heading-like element whose text is exactly one of the
// labels ("SALARY", "TYPE OF WORK") and returns the value rendered after it,
// either in the next sibling or inline in the same parent.
func (p *detailPage) labelValue(labels ...string) (string, bool) {
	var value string
	p.doc.Find("h1, h2, h3, h4, h5, h6, dt, th, strong, b, label, span, p, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(strings.TrimSuffix(extract.Text(el), ":"))
		label, ok := matchLabel(text, labels)
		if !ok {
			return true
		}
		if next := el.Next(); next.Length() > 0 {
			if v := extract.Text(next); v != "" {
				value = v
				return false
			}
		}
		parent := extract.Text(el.Parent())
		if len(parent) > len(label) && strings.EqualFold(parent[:len(label)], label) {
			if v := strings.TrimSpace(strings.TrimLeft(parent[len(label):], ": ")); v != "" {
				value = v
				return false
			}
		}
		return true
	})
	return value, value != ""
}

func matchLabel(text string, labels []string) (string, bool) {
	for _, l := range labels {
		if strings.EqualFold(text, l) {
			return text, true
		}
	}
	return "", false
}

func (p *detailPage) firstText(selector string) (string, bool) {
	el := p.doc.Find(selector).First()
	return extract.Text(el), el.Length() > 0
}

func selectorStrategy(name, selector string) extract.Strategy[*detailPage] {
	return extract.Strategy[*detailPage]{Name: name, Extract: func(p *detailPage) (string, bool) {
		return p.firstText(selector)
	}}
}

func labelStrategy(name string, labels ...string) extract.Strategy[*detailPage] {
	return extract.Strategy[*detailPage]{Name: name, Extract: func(p *detailPage) (string, bool) {
		return p.labelValue(labels...)
	}}
}

var detailTitle = []extract.Strategy[*detailPage]{
	selectorStrategy("h1", "h1"),
	selectorStrategy("job-title", ".job-title"),
	{Name: "og-title", Extract: func(p *detailPage) (string, bool) {
		v, ok := p.doc.Find(`meta[property="og:title"]`).First().Attr("content")
		return titleSuffixRegex.ReplaceAllString(extract.CollapseSpace(v), ""), ok
	}},
	{Name: "document-title", Extract: func(p *detailPage) (string, bool) {
		v, ok := p.firstText("title")
		return titleSuffixRegex.ReplaceAllString(v, ""), ok
	}},
}

var detailCompany = []extract.Strategy[*detailPage]{
	selectorStrategy("company-name", ".company-name, .employer .company"),
}

var detailContact = []extract.Strategy[*detailPage]{
	labelStrategy("contact-label", "CONTACT PERSON"),
	selectorStrategy("contact-element", ".employer-name, .contact-person"),
	{Name: "name-posted", Extract: func(p *detailPage) (string, bool) {
		v := contactName(p.text)
		return v, v != ""
	}},
}

var detailSalary = []extract.Strategy[*detailPage]{
	labelStrategy("salary-label", "SALARY", "WAGE"),
	selectorStrategy("salary-element", ".salary, .salary-info, .pay-range"),
	{Name: "currency", Extract: func(p *detailPage) (string, bool) {
		m := currencyRegex.FindString(p.text)
		return m, m != ""
	}},
}

var detailJobType = []extract.Strategy[*detailPage]{
	{Name: "type-label", Extract: func(p *detailPage) (string, bool) {
		v, ok := p.labelValue("TYPE OF WORK", "JOB TYPE", "EMPLOYMENT TYPE")
		if !ok {
			return "", false
		}
		if t := jobTypeOf(v); t != "" {
			return t, true
		}
		return v, true
	}},
	{Name: "summary-vocabulary", Extract: func(p *detailPage) (string, bool) {
		el := p.doc.Find(".job-summary, .jobpost-summary, .job-info").First()
		t := jobTypeOf(extract.Text(el))
		return t, t != ""
	}},
}

var detailPosted = []extract.Strategy[*detailPage]{
	{Name: "time-datetime", Extract: func(p *detailPage) (string, bool) {
		return p.doc.Find("time[datetime]").First().Attr("datetime")
	}},
	labelStrategy("date-label", "DATE UPDATED", "DATE POSTED", "POSTED"),
	{Name: "posted-on", Extract: func(p *detailPage) (string, bool) {
		if m := postedOnRegex.FindStringSubmatch(p.text); m != nil {
			return m[1], true
		}
		return "", false
	}},
}

var detailDescription = []extract.Strategy[*detailPage]{
	{Name: "description-block", Extract: func(p *detailPage) (string, bool) {
		for _, sel := range descriptionSelectors {
			var found string
			p.doc.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
				if v := extract.BlockText(el); usableDescription(v) {
					found = v
					return false
				}
				return true
			})
			if found != "" {
				return found, true
			}
		}
		return "", false
	}},
}

// usableDescription rejects short fragments and wrappers that swallowed the
// job summary table.
func usableDescription(v string) bool {
	return len([]rune(v)) >= minDescriptionLen && !strings.Contains(strings.ToUpper(v), "TYPE OF WORK")
}
