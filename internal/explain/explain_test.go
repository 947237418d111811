package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplainMatchesFieldAndTerms(t *testing.T) {
	exp := Explain("acme corp electronics", 0.87, Fields{
		Manufacturer: "Acme Corp Electronics",
		Content:      "Acme Corp Electronics shipment of goods",
	}, Scores{HasHybrid: true, HybridScore: 0.87})

	assert.Contains(t, exp.MatchedFields, "manufacturer")
	assert.Contains(t, exp.MatchedFields, "content")
	assert.NotEmpty(t, exp.Reasons)
	assert.NotNil(t, exp.HybridScore)
	assert.Equal(t, 0.87, *exp.HybridScore)
}

func TestExplainMatchedTermsCappedAtFiveInReasonsButNotInArray(t *testing.T) {
	exp := Explain("one two three four five six seven", 0.5, Fields{
		Content: "one two three four five six seven are all here",
	}, Scores{})

	assert.Len(t, exp.MatchedTerms, 7)
	found := false
	for _, r := range exp.Reasons {
		if r == "matched terms: one, two, three, four, five" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExplainEmptyQueryYieldsEmptyArraysNotNilAbsence(t *testing.T) {
	exp := Explain("", 0, Fields{}, Scores{})
	assert.NotNil(t, exp.MatchedFields)
	assert.NotNil(t, exp.MatchedTerms)
	assert.NotNil(t, exp.Reasons)
	assert.Empty(t, exp.MatchedFields)
}

func TestExplainNoEvidenceYieldsEmptyArrays(t *testing.T) {
	exp := Explain("nomatch", 0.1, Fields{Content: "something else entirely"}, Scores{})
	assert.Empty(t, exp.MatchedFields)
	assert.Empty(t, exp.MatchedTerms)
	assert.Empty(t, exp.Reasons)
}
