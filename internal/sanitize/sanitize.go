// Package sanitize cleans single raw field values coming from CSV files or
// request bodies. Every function is pure and total: it either returns a safe
// normalized value with ok=true, or ok=false meaning "no usable value". The
// false case is deliberately distinct from an empty string.
package sanitize

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxStringLen is the length free-text fields are truncated to.
const MaxStringLen = 500

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`[^0-9 ()+\-]`)
	dateRe  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// String trims the input, truncates it to MaxStringLen runes and
// HTML-escapes it. Truncation happens on rune boundaries before escaping so
// the result is always valid UTF-8 and never ends in a severed entity. An
// input that is empty after trimming yields ok=false.
func String(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > MaxStringLen {
		s = string(r[:MaxStringLen])
	}
	return html.EscapeString(s), true
}

// Email trims and lower-cases the input and checks it against a conventional
// email syntax. Syntactically invalid addresses yield ok=false.
func Email(input string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if !emailRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// Phone trims the input and strips every character that is not a digit,
// space, hyphen, parenthesis or plus sign. If nothing remains, ok=false.
func Phone(input string) (string, bool) {
	s := phoneRe.ReplaceAllString(strings.TrimSpace(input), "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Integer parses the input as a positive integer identifier. Values that do
// not parse, are non-positive, or exceed 2^31-1 yield ok=false.
func Integer(input string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || n < 1 || n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}

// Date trims the input and checks it against the M/D/YYYY shape, leading
// zeros optional. No calendar validation happens here; 2/31/2024 passes.
// That check belongs to the validator.
func Date(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if !dateRe.MatchString(s) {
		return "", false
	}
	return s, true
}
