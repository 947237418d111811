package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25IndexRanksExactTermMatchAboveNoMatch(t *testing.T) {
	idx := NewBM25Index(1.5, 0.75)
	ctx := context.Background()

	require.NoError(t, idx.AddDocuments(ctx, []SparseDocument{
		{ChunkID: "c1", Content: "manufacturer acme corp produces textiles"},
		{ChunkID: "c2", Content: "totally unrelated shipment of textiles"},
		{ChunkID: "c3", Content: "acme corp electronics division europe"},
	}))

	results, err := idx.Search(ctx, "acme electronics", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "c3", results[0].ChunkID)
}

func TestBM25IndexEmptyBeforeAnyDocuments(t *testing.T) {
	idx := NewBM25Index(1.5, 0.75)
	assert.True(t, idx.Empty())

	results, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBM25IndexDeleteRemovesDocument(t *testing.T) {
	idx := NewBM25Index(1.5, 0.75)
	ctx := context.Background()
	require.NoError(t, idx.AddDocuments(ctx, []SparseDocument{
		{ChunkID: "c1", Content: "alpha beta gamma"},
	}))
	assert.False(t, idx.Empty())

	require.NoError(t, idx.DeleteByChunkIDs(ctx, []string{"c1"}))
	assert.True(t, idx.Empty())
}

func TestBM25IndexQueryWithNoVocabularyOverlapYieldsNoResults(t *testing.T) {
	idx := NewBM25Index(1.5, 0.75)
	ctx := context.Background()
	require.NoError(t, idx.AddDocuments(ctx, []SparseDocument{
		{ChunkID: "c1", Content: "manufacturer acme corp"},
	}))

	results, err := idx.Search(ctx, "zzz nonexistent", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
