package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var whitespaceRegex = regexp.MustCompile(`\s+`)

// MatchCondition reports whether the observed condition satisfies the expected one.
// Comparison is a case-insensitive substring match, so "Partly Cloudy" satisfies
// "cloudy" and "Sunny" satisfies "sunny". A blank side never matches.
func MatchCondition(observed, expected string) bool {
	o := normalizeCondition(observed)
	e := normalizeCondition(expected)
	if o == "" || e == "" {
		return false
	}
	return strings.Contains(o, e)
}

// normalizeCondition lowercases and collapses whitespace so labels rendered
// across several lines still compare equal.
func normalizeCondition(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
