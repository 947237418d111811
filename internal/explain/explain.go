// Package explain implements the search explainer: matched-field and
// matched-term evidence plus human-readable reasons, grounded on
// dt_xml/reranker/explainability.py.
package explain

import (
	"fmt"
	"strings"
)

// Fields carries the field values an explanation checks for a query
// substring match. Empty fields are skipped.
type Fields struct {
	Manufacturer  string
	Importer      string
	ProductCode   string
	CountryOrigin string
	Content       string
}

// Scores carries whichever of the three retrieval scores a result has.
// A score whose Has* flag is false is absent, not zero.
type Scores struct {
	DenseScore  float64
	HasDense    bool
	SparseScore float64
	HasSparse   bool
	HybridScore float64
	HasHybrid   bool
}

// Explanation is the dictionary-shaped output spec.md §4.9 requires: missing
// evidence is an empty array, never an absent key.
type Explanation struct {
	RelevanceScore float64  `json:"relevance_score"`
	MatchedFields  []string `json:"matched_fields"`
	MatchedTerms   []string `json:"matched_terms"`
	Reasons        []string `json:"reasons"`
	DenseScore     *float64 `json:"dense_score,omitempty"`
	SparseScore    *float64 `json:"sparse_score,omitempty"`
	HybridScore    *float64 `json:"hybrid_score,omitempty"`
}

// Explain computes matched_fields, matched_terms, and reasons for a single
// result against query.
func Explain(query string, relevanceScore float64, fields Fields, scores Scores) Explanation {
	exp := Explanation{
		RelevanceScore: relevanceScore,
		MatchedFields:  []string{},
		MatchedTerms:   []string{},
		Reasons:        []string{},
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return exp
	}

	fieldOrder := []struct {
		name  string
		value string
	}{
		{"manufacturer", fields.Manufacturer},
		{"importer", fields.Importer},
		{"product_code", fields.ProductCode},
		{"country_origin", fields.CountryOrigin},
		{"content", fields.Content},
	}
	for _, f := range fieldOrder {
		if f.value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f.value), queryLower) {
			exp.MatchedFields = append(exp.MatchedFields, f.name)
			exp.Reasons = append(exp.Reasons, fmt.Sprintf("matched field '%s'", f.name))
		}
	}

	contentLower := strings.ToLower(fields.Content)
	matchedTerms := []string{}
	for _, term := range strings.Fields(queryLower) {
		if strings.Contains(contentLower, term) {
			matchedTerms = append(matchedTerms, term)
		}
	}
	exp.MatchedTerms = matchedTerms
	if len(matchedTerms) > 0 {
		listed := matchedTerms
		if len(listed) > 5 {
			listed = listed[:5]
		}
		exp.Reasons = append(exp.Reasons, fmt.Sprintf("matched terms: %s", strings.Join(listed, ", ")))
	}

	if scores.HasDense {
		v := scores.DenseScore
		exp.DenseScore = &v
		exp.Reasons = append(exp.Reasons, "high semantic score")
	}
	if scores.HasSparse {
		v := scores.SparseScore
		exp.SparseScore = &v
		exp.Reasons = append(exp.Reasons, "high keyword score")
	}
	if scores.HasHybrid {
		v := scores.HybridScore
		exp.HybridScore = &v
		exp.Reasons = append(exp.Reasons, "combined hybrid score")
	}

	return exp
}
