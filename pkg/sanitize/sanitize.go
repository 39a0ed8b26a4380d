package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Plain email address (case-insensitive)
var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)

// Common phone shapes: +xx..., (xxx) xxx-xxxx, 08xx...
// Only digits, spaces, dashes, dots, parentheses and plus; at least 9 digits overall.
var rePhone = regexp.MustCompile(`\+?\d[\d\s\-\.()]{7,}\d`)

var strict = bluemonday.StrictPolicy()

// Text strips every HTML tag from user input and trims it. Entities are decoded so
// stored text reads the way it was typed.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func RedactPII(s string) string {
	if s == "" {
		return s
	}
	s = reEmail.ReplaceAllString(s, "[redacted email]")
	s = rePhone.ReplaceAllString(s, "[redacted phone]")
	return s
}

// Summary cuts s at a word boundary for list previews.
func Summary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && i < len(s) && s[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
	}
	return s[:i] + "…"
}
