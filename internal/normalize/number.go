package normalize

import (
	"strconv"
	"strings"
)

// Float parses raw as a float, tolerating a comma decimal separator and
// stray whitespace/thin-space digit grouping commonly seen in customs
// declaration values (e.g. "1 234,56").
func Float(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' { // non-breaking / thin space grouping
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
