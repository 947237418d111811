// Package rerank implements the adaptive reranker: a query-complexity
// analyzer that picks between a light and a heavy pairwise scorer, grounded
// on dt_xml/reranker/{query_complexity,adaptive_reranker}.py.
package rerank

import (
	"regexp"
	"strings"
)

// Go's \b and \w are ASCII-only, so word boundaries are spelled out with
// Unicode letter/digit classes to let the Cyrillic alternatives match.
var complexPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(и|and|или|or)(?:[^\p{L}\p{N}_]|$)`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(не|not|кроме|except)(?:[^\p{L}\p{N}_]|$)`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(до|after|после|before|между|between)(?:[^\p{L}\p{N}_]|$)`),
	regexp.MustCompile(`\d{4}`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(более|менее|больше|меньше)(?:[^\p{L}\p{N}_]|$)|\b(>|<|>=|<=)\b`),
}

var specialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
var digitPattern = regexp.MustCompile(`\d`)

// AnalyzeComplexity scores a query in [0,1]: higher means the query needs a
// heavier reranker. Mirrors QueryComplexityAnalyzer.analyze exactly.
func AnalyzeComplexity(query string) float64 {
	if strings.TrimSpace(query) == "" {
		return 0
	}

	var score float64

	wordCount := len(strings.Fields(query))
	switch {
	case wordCount > 10:
		score += 0.2
	case wordCount > 5:
		score += 0.1
	}

	var patternMatches int
	for _, p := range complexPatterns {
		if p.MatchString(query) {
			patternMatches++
		}
	}
	patternScore := float64(patternMatches) * 0.15
	if patternScore > 0.6 {
		patternScore = 0.6
	}
	score += patternScore

	if digitPattern.MatchString(query) {
		score += 0.1
	}

	if len(specialCharPattern.FindAllString(query, -1)) > 3 {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}
