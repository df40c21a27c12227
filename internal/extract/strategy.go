// Package extract holds the small building blocks the site parsers compose:
// named fallback strategies and whitespace helpers for scraped text.
package extract

import "strings"

// Strategy is one named way of pulling a value out of a source S.
type Strategy[S any] struct {
	Name    string
	Extract func(S) (string, bool)
}

// FirstOf runs the strategies in order and returns the first value found,
// with the name of the strategy that produced it.
func FirstOf[S any](src S, strategies ...Strategy[S]) (value, name string, ok bool) {
	for _, s := range strategies {
		v, found := s.Extract(src)
		if !found {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, s.Name, true
		}
	}
	return "", "", false
}

// Value is FirstOf without the strategy name; a miss yields "".
func Value[S any](src S, strategies ...Strategy[S]) string {
	v, _, _ := FirstOf(src, strategies...)
	return v
}
