package filter

import (
	"strings"
	"unicode"

	"onlinejobs-scout/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decision reasons.
const (
	ReasonExcluded = "excluded"
	ReasonKeyword  = "keyword"
	ReasonRelated  = "related"
	ReasonAdvisory = "advisory"
	ReasonNoMatch  = "no-match"
)

// Decision explains why a record was kept or dropped.
type Decision struct {
	Matched bool
	Reason  string
	Term    string
}

// Matcher decides whether a posting is relevant to the configured keywords.
type Matcher struct {
	keywords []string
	related  map[string][]string
	excluded []string
	advisory bool
}

// NewMatcher builds a matcher. related maps a keyword to terms that also count
// as a hit for it; only entries for configured keywords are used. In advisory
// mode the site's own search relevance is trusted and only exclusions apply.
func NewMatcher(keywords []string, related map[string][]string, excluded []string, advisory bool) *Matcher {
	m := &Matcher{
		related:  make(map[string][]string),
		advisory: advisory,
	}
	for _, kw := range keywords {
		kw = normalizeText(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		m.keywords = append(m.keywords, kw)
	}
	for key, terms := range related {
		key = normalizeText(strings.TrimSpace(key))
		for _, term := range terms {
			if term = normalizeText(strings.TrimSpace(term)); term != "" {
				m.related[key] = append(m.related[key], term)
			}
		}
	}
	for _, ex := range excluded {
		if ex = normalizeText(strings.TrimSpace(ex)); ex != "" {
			m.excluded = append(m.excluded, ex)
		}
	}
	return m
}

// Match checks free text.
func (m *Matcher) Match(text string) Decision {
	text = normalizeText(text)

	//exclusions veto everything
	for _, ex := range m.excluded {
		if strings.Contains(text, ex) {
			return Decision{Reason: ReasonExcluded, Term: ex}
		}
	}

	if m.advisory {
		return Decision{Matched: true, Reason: ReasonAdvisory}
	}

	for _, kw := range m.keywords {
		if strings.Contains(text, kw) {
			return Decision{Matched: true, Reason: ReasonKeyword, Term: kw}
		}
	}
	for _, kw := range m.keywords {
		for _, term := range m.related[kw] {
			if strings.Contains(text, term) {
				return Decision{Matched: true, Reason: ReasonRelated, Term: term}
			}
		}
	}
	return Decision{Reason: ReasonNoMatch}
}

// MatchRecord checks a record's title and description.
func (m *Matcher) MatchRecord(rec models.JobRecord) Decision {
	return m.Match(rec.SearchText())
}

// normalizeText lower-cases and strips diacritics so "Administración" and
// "administracion" compare equal.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}
