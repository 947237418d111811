package normalize

import (
	"regexp"
	"strings"
)

var (
	phoneDigits  = regexp.MustCompile(`\D+`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Phone strips formatting from a raw phone number, keeping a leading "+" if
// present, and reports whether the result has a plausible digit count.
func Phone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")
	digits := phoneDigits.ReplaceAllString(trimmed, "")
	if len(digits) < 7 || len(digits) > 15 {
		return "", false
	}
	if hasPlus {
		return "+" + digits, true
	}
	return digits, true
}

// Email lowercases and validates a raw email address with a permissive
// syntax check (not full RFC 5322 — enough to catch obvious OCR/typo noise).
func Email(raw string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// Company trims and collapses internal whitespace in a raw company/entity
// name, used for both manufacturer and importer fields.
func Company(raw string) string {
	fields := strings.Fields(raw)
	return strings.Join(fields, " ")
}
