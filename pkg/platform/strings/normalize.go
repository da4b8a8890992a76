// Package strings provides string normalization utilities shared by all
// request boundaries.
package strings

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clean applies the optional-field normalization rule: surrounding whitespace
// is trimmed, and an empty result, the literal "null", or the literal
// "undefined" all collapse to absent (nil). Anything else is returned trimmed.
//
// Example:
//
//	Clean("  x  ") // -> &"x"
//	Clean("null")  // -> nil
//	Clean("")      // -> nil
func Clean(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
		return nil
	}
	return &trimmed
}

// CleanRequired trims v and reports whether anything remains. Required fields
// use this instead of Clean so "null" and "" fail the same way.
func CleanRequired(v string) (string, bool) {
	p := Clean(v)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Lower is Clean followed by lowercasing, for case-insensitive identifiers
// such as the administrator email.
func Lower(v string) *string {
	p := Clean(v)
	if p == nil {
		return nil
	}
	lowered := strings.ToLower(*p)
	return &lowered
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents strips combining diacritical marks so "García" compares equal
// to "garcia" after lowercasing. Registrant search relies on this to match
// the accent-insensitive collation of the original data set.
func FoldAccents(v string) string {
	folded, _, err := transform.String(accentStripper, v)
	if err != nil {
		return v
	}
	return folded
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// LooksLikeEmail mirrors the loose shape check applied at the boundary: one
// non-space local part, an @, and a dotted domain.
func LooksLikeEmail(v string) bool {
	return emailPattern.MatchString(v)
}
