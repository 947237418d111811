package normalize

import "strings"

// SupportedLanguages lists the language tags the pipeline understands.
var SupportedLanguages = map[string]bool{
	"ru": true, "kz": true, "en": true, "be": true, "hy": true, "ky": true,
}

const (
	kazakhLetters     = "әіңғұүқөһ"
	kyrgyzLetters     = "өү"
	belarusianLetters = "іў"
)

// DetectLanguage applies a fast heuristic over the first portion of text to
// guess its language tag, in the absence of a statistical language
// detector. Order matters: scripts are checked from most to least
// distinctive so a Kazakh-specific letter is never misread as plain
// Russian.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "ru"
	}

	sample := text
	if len(sample) > 200 {
		// Truncate on a rune boundary so a multi-byte letter straddling the
		// cutoff isn't split into an invalid sequence the matchers below
		// would silently fail to recognize.
		runes := []rune(sample)
		if len(runes) > 200 {
			runes = runes[:200]
		}
		sample = string(runes)
	}
	lower := strings.ToLower(sample)

	if containsAny(lower, kazakhLetters) {
		return "kz"
	}
	if containsAny(lower, kyrgyzLetters) {
		return "ky"
	}
	if containsArmenian(sample) {
		return "hy"
	}
	if containsAny(lower, belarusianLetters) {
		return "be"
	}
	if isASCII(sample) {
		return "en"
	}
	return "ru"
}

func containsAny(s, chars string) bool {
	for _, r := range chars {
		if strings.ContainsRune(s, r) {
			return true
		}
	}
	return false
}

func containsArmenian(s string) bool {
	for _, r := range s {
		if r >= 0x0530 && r <= 0x058F {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
