package rerank

import "testing"

func TestAnalyzeComplexityEmptyQuery(t *testing.T) {
	if got := AnalyzeComplexity("   "); got != 0 {
		t.Fatalf("expected 0 for blank query, got %v", got)
	}
}

func TestAnalyzeComplexitySimpleQuery(t *testing.T) {
	got := AnalyzeComplexity("manufacturer acme")
	if got != 0 {
		t.Fatalf("expected 0 for a short plain query, got %v", got)
	}
}

func TestAnalyzeComplexityLongQueryWithOperatorsAndYear(t *testing.T) {
	query := "find declarations from acme or beta manufactured before 2021 and not rejected with quantity > 500"
	got := AnalyzeComplexity(query)
	if got <= 0.5 {
		t.Fatalf("expected a high complexity score for a long multi-operator query, got %v", got)
	}
	if got > 1 {
		t.Fatalf("complexity must be clamped to 1, got %v", got)
	}
}

func TestAnalyzeComplexityClampsToOne(t *testing.T) {
	query := "and or not except before after between 2019 2020 2021 more less >= <= ?!@#$%"
	got := AnalyzeComplexity(query)
	if got != 1 {
		t.Fatalf("expected clamp to 1.0, got %v", got)
	}
}
