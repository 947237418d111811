package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/storage/qdrant"
)

func TestRRFFusionSumsWeightsWhenChunkInBothChannels(t *testing.T) {
	fusion := NewRRFFusion(60)

	dense := []qdrant.ScoredPoint{
		{ChunkID: "a", DeclarationID: "d1", Content: "dense content a", Score: 0.9},
		{ChunkID: "b", DeclarationID: "d1", Content: "dense content b", Score: 0.8},
	}
	sparse := []SparseResult{
		{ChunkID: "b", Score: 5.0},
		{ChunkID: "c", Score: 3.0},
	}

	results := fusion.Fuse(dense, sparseLookup(dense), sparse, Weights{Dense: 0.5, Sparse: 0.5})

	byID := make(map[string]*FusedResult, len(results))
	for _, r := range results {
		byID[r.ChunkID] = r
	}

	both := byID["b"]
	assert.True(t, both.InBothLists)
	assert.Equal(t, 2, both.DenseRank)
	assert.Equal(t, 1, both.SparseRank)

	assert.False(t, byID["a"].InBothLists)
	assert.False(t, byID["c"].InBothLists)

	// b appears in both channels (dense rank 2, sparse rank 1), so it should outscore a and c,
	// which each only contribute from a single channel.
	assert.Greater(t, byID["b"].RRFScore, byID["a"].RRFScore)
	assert.Greater(t, byID["b"].RRFScore, byID["c"].RRFScore)
}

func TestRRFFusionOrdersDescendingByScore(t *testing.T) {
	fusion := NewRRFFusion(60)
	dense := []qdrant.ScoredPoint{
		{ChunkID: "first", Score: 0.99},
		{ChunkID: "second", Score: 0.5},
	}

	results := fusion.Fuse(dense, sparseLookup(dense), nil, Weights{Dense: 1, Sparse: 0})
	assert.Equal(t, "first", results[0].ChunkID)
	assert.Equal(t, "second", results[1].ChunkID)
}

func TestRRFFusionTiedScoresPreserveDenseFirstOrder(t *testing.T) {
	fusion := NewRRFFusion(60)
	// x: dense rank 1, sparse rank 2. y: dense rank 2, sparse rank 1.
	// 0.5/61 + 0.5/62 == 0.5/62 + 0.5/61, an exact tie, with x encountered
	// first in the dense pass. Without a stable sort the tie-break order
	// would be left to chance.
	dense := []qdrant.ScoredPoint{
		{ChunkID: "x", Score: 0.9},
		{ChunkID: "y", Score: 0.8},
	}
	sparse := []SparseResult{
		{ChunkID: "y", Score: 5.0},
		{ChunkID: "x", Score: 3.0},
	}

	results := fusion.Fuse(dense, sparseLookup(dense), sparse, Weights{Dense: 0.5, Sparse: 0.5})

	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].ChunkID)
	assert.Equal(t, "y", results[1].ChunkID)
}

func TestApplyFiltersEqualityAndRange(t *testing.T) {
	results := []*FusedResult{
		{ChunkID: "a", DeclarationID: "dec-1", Metadata: map[string]any{"quantity": 5.0}},
		{ChunkID: "b", DeclarationID: "dec-2", Metadata: map[string]any{"quantity": 50.0}},
	}

	filters := Filters{
		"declaration_id": {Eq: "dec-1"},
	}
	filtered := ApplyFilters(results, filters)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].ChunkID)

	gte := 10.0
	rangeFilters := Filters{"quantity": {Gte: &gte}}
	filtered = ApplyFilters(results, rangeFilters)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ChunkID)
}

func TestSplitPushdownKeepsOnlyPureEquality(t *testing.T) {
	gte := 1.0
	filters := Filters{
		"manufacturer": {Eq: "Acme"},
		"quantity":     {Gte: &gte},
	}
	pushdown, remainder := SplitPushdown(filters)
	assert.Equal(t, map[string]any{"manufacturer": "Acme"}, pushdown)
	assert.Len(t, remainder, 2)
}
