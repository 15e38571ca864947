package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	runIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// ValidateRunID checks an operator supplied migration run identifier.
func ValidateRunID(runID string) bool {
	return runIDRegex.MatchString(runID)
}

// SanitizeTitle keeps letters, digits, whitespace and hyphens, then collapses
// runs of whitespace into single spaces.
func SanitizeTitle(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
