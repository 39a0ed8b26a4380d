package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// NewID returns a collision-free identifier with a readable prefix, e.g. "case-<uuid>".
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// CaseNumber formats the firm's human-readable case number: ALP-2025-007.
func CaseNumber(year, seq int) string {
	return fmt.Sprintf("ALP-%d-%03d", year, seq)
}

// ClientEmail derives a placeholder address for a client created with a case.
// "Jane  Doe" -> "jane.doe@example.com"
func ClientEmail(name string) string {
	local := reWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), ".")
	return local + "@example.com"
}

// AvatarURL returns the placeholder avatar for a user id.
func AvatarURL(seed string) string {
	return "https://picsum.photos/seed/" + seed + "/100/100"
}

// FormatSize renders a byte count the way documents display it ("2.4 MB").
func FormatSize(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}
