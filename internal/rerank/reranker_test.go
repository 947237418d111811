package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	name   string
	scores []float64
}

func (f *fakeScorer) Score(_ context.Context, _ string, documents []string) ([]float64, error) {
	return f.scores, nil
}

func TestRerankerUsesLightScorerBelowThreshold(t *testing.T) {
	light := &fakeScorer{name: "simple", scores: []float64{0.2, 0.9}}
	heavy := &fakeScorer{name: "complex", scores: []float64{0.1, 0.1}}
	r := NewReranker(light, heavy, 0.7)

	results, err := r.Rerank(context.Background(), "short query", []Candidate{
		{ChunkID: "a", Content: "doc a"},
		{ChunkID: "b", Content: "doc b"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "simple", results[0].ModelUsed)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestRerankerUsesHeavyScorerAboveThreshold(t *testing.T) {
	light := &fakeScorer{name: "simple", scores: []float64{0.9, 0.1}}
	heavy := &fakeScorer{name: "complex", scores: []float64{0.1, 0.9}}
	r := NewReranker(light, heavy, 0.3)

	complexQuery := "find declarations from acme or beta before 2021 and not rejected with quantity > 500"
	results, err := r.Rerank(context.Background(), complexQuery, []Candidate{
		{ChunkID: "a", Content: "doc a"},
		{ChunkID: "b", Content: "doc b"},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "complex", results[0].ModelUsed)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestRerankerTruncatesToTopK(t *testing.T) {
	light := &fakeScorer{scores: []float64{0.5, 0.9, 0.1}}
	r := NewReranker(light, nil, 0.7)

	results, err := r.Rerank(context.Background(), "q", []Candidate{
		{ChunkID: "a", Content: "x"},
		{ChunkID: "b", Content: "y"},
		{ChunkID: "c", Content: "z"},
	}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestRerankerEmptyCandidatesReturnsNil(t *testing.T) {
	light := &fakeScorer{}
	r := NewReranker(light, nil, 0.7)
	results, err := r.Rerank(context.Background(), "q", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, results)
}
