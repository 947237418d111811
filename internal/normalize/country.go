package normalize

import "strings"

// countryAliases maps common Russian/English country names and demonyms to
// their ISO-3166 alpha-2 code. Not exhaustive: covers EAEU member states and
// their most frequent trade partners.
var countryAliases = map[string]string{
	"РОССИЯ":     "RU",
	"RUSSIA":     "RU",
	"КАЗАХСТАН":  "KZ",
	"KAZAKHSTAN": "KZ",
	"БЕЛАРУСЬ":   "BY",
	"BELARUS":    "BY",
	"АРМЕНИЯ":    "AM",
	"ARMENIA":    "AM",
	"КИРГИЗИЯ":   "KG",
	"KYRGYZSTAN": "KG",
	"КИТАЙ":      "CN",
	"CHINA":      "CN",
	"ГЕРМАНИЯ":   "DE",
	"GERMANY":    "DE",
}

var iso3166 = map[string]bool{
	"RU": true, "KZ": true, "BY": true, "AM": true, "KG": true,
	"CN": true, "DE": true, "US": true, "GB": true, "FR": true,
}

// Country normalizes raw into an ISO-3166 alpha-2 code.
func Country(raw string) (string, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", false
	}
	if len(trimmed) == 2 && iso3166[trimmed] {
		return trimmed, true
	}
	if mapped, ok := countryAliases[trimmed]; ok {
		return mapped, true
	}
	return "", false
}
