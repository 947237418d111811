package rerank

import (
	"context"
	"fmt"
	"sort"
)

// PairwiseScorer scores each document against a single query, returning one
// score per document in the same order.
type PairwiseScorer interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

// Candidate is a single reranking input: a chunk's text plus whatever
// identifier the caller needs to map the result back.
type Candidate struct {
	ChunkID string
	Content string
}

// Result is a reranked candidate plus the tier that produced its score.
type Result struct {
	ChunkID    string
	Score      float64
	ModelUsed  string // "simple" or "complex"
	Complexity float64
}

// Reranker picks a light or heavy pairwise scorer based on query complexity
// and re-sorts candidates by the chosen scorer's output.
type Reranker struct {
	light     PairwiseScorer
	heavy     PairwiseScorer
	threshold float64
}

// NewReranker builds a Reranker. heavy may be nil, in which case light is
// always used regardless of complexity.
func NewReranker(light, heavy PairwiseScorer, threshold float64) *Reranker {
	return &Reranker{light: light, heavy: heavy, threshold: threshold}
}

// Rerank scores every candidate's content against query with the
// complexity-selected scorer, re-sorts by score descending, and truncates to
// topK (0 or negative means "keep all").
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	complexity := AnalyzeComplexity(query)
	scorer, modelUsed := r.selectScorer(complexity)

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	scores, err := scorer.Score(ctx, query, documents)
	if err != nil {
		return nil, fmt.Errorf("rerank: score: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("rerank: scorer returned %d scores for %d candidates", len(scores), len(candidates))
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{
			ChunkID:    c.ChunkID,
			Score:      scores[i],
			ModelUsed:  modelUsed,
			Complexity: complexity,
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (r *Reranker) selectScorer(complexity float64) (PairwiseScorer, string) {
	if complexity >= r.threshold && r.heavy != nil {
		return r.heavy, "complex"
	}
	return r.light, "simple"
}
