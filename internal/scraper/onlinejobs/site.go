// Package onlinejobs knows the OnlineJobs.ph search and job pages: how to ask
// for a results page and how to turn listing and detail markup into records.
package onlinejobs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://www.onlinejobs.ph"
	searchPath     = "/jobseekers/jobsearch"
)

type Site struct {
	base  *url.URL
	clock func() time.Time
}

// New returns a Site rooted at baseURL. clock may be nil.
func New(baseURL string, clock func() time.Time) (*Site, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Site{base: base, clock: clock}, nil
}

func (s *Site) Name() string { return "OnlineJobs.ph" }

// SearchRequest returns the results URL and query for one keyword page.
func (s *Site) SearchRequest(keyword string, page int) (string, url.Values) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("page", strconv.Itoa(page))
	return s.base.String() + searchPath, q
}

func (s *Site) now() time.Time { return s.clock() }

// absolute resolves href against the site root and drops any fragment.
func (s *Site) absolute(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	u := s.base.ResolveReference(ref)
	u.Fragment = ""
	return u.String(), nil
}
