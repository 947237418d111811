package normalize

import "strings"

// currencyAliases maps common non-ISO spellings seen in declarations to
// their ISO-4217 alpha-3 code.
var currencyAliases = map[string]string{
	"РУБ":   "RUB",
	"РУБЛЬ": "RUB",
	"RUBLE": "RUB",
	"ДОЛЛАР": "USD",
	"DOLLAR": "USD",
	"ЕВРО":  "EUR",
	"EURO":  "EUR",
	"ТЕНГЕ": "KZT",
	"TENGE": "KZT",
}

var iso4217 = map[string]bool{
	"RUB": true, "USD": true, "EUR": true, "KZT": true, "BYN": true,
	"AMD": true, "KGS": true, "CNY": true, "GBP": true, "CHF": true,
}

// Currency normalizes raw into an ISO-4217 alpha-3 code. Returns "", false
// if raw cannot be confidently mapped.
func Currency(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", false
	}
	if iso4217[code] {
		return code, true
	}
	if mapped, ok := currencyAliases[code]; ok {
		return mapped, true
	}
	return "", false
}
