// Package retrieval implements the hybrid retriever: a BM25 sparse index and
// a dense vector index searched in parallel, combined by Reciprocal Rank
// Fusion. Grounded on dt_xml/search/hybrid_search.py and
// dt_xml/search/sparse_search.py for the algorithm, and the amanmcp
// internal/search Engine for the Go-idiomatic parallel-search/fusion shape.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dtxml/declarations/internal/storage/qdrant"
	"github.com/dtxml/declarations/internal/vector"
)

// Config configures the hybrid engine's fusion and candidate-pool behavior.
type Config struct {
	RRFConstant    int
	FusionAlpha    float64 // dense weight; sparse gets 1-FusionAlpha
	OversampleMult int     // each channel is searched for oversample*topK candidates
}

// Engine is the hybrid retriever: a dense VectorIndex, a sparse BM25Index,
// and the embedder that turns a query into a vector, fused by RRF.
type Engine struct {
	vector   qdrant.Index
	bm25     *BM25Index
	embedder vector.Producer
	fusion   *RRFFusion
	cfg      Config
}

// NewEngine wires a dense index, a sparse index, an embedder, and fusion
// config into a hybrid retriever.
func NewEngine(vectorIndex qdrant.Index, bm25 *BM25Index, embedder vector.Producer, cfg Config) *Engine {
	return &Engine{
		vector:   vectorIndex,
		bm25:     bm25,
		embedder: embedder,
		fusion:   NewRRFFusion(cfg.RRFConstant),
		cfg:      cfg,
	}
}

// IndexChunks adds chunk vectors (dense) and chunk text (sparse) to both
// channels. The sparse documents are built from the same points, keyed by ChunkID.
func (e *Engine) IndexChunks(ctx context.Context, points []qdrant.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := e.vector.AddChunks(ctx, points); err != nil {
		return fmt.Errorf("retrieval: index dense: %w", err)
	}

	docs := make([]SparseDocument, len(points))
	for i, p := range points {
		docs[i] = SparseDocument{ChunkID: p.ChunkID, Content: p.Content}
	}
	if err := e.bm25.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("retrieval: index sparse: %w", err)
	}
	return nil
}

// DeleteDeclaration removes a declaration's chunks from the dense index and
// the given chunk IDs from the sparse index.
func (e *Engine) DeleteDeclaration(ctx context.Context, declarationID string, chunkIDs []string) error {
	if err := e.vector.DeleteByDeclarationID(ctx, declarationID); err != nil {
		return fmt.Errorf("retrieval: delete dense: %w", err)
	}
	if err := e.bm25.DeleteByChunkIDs(ctx, chunkIDs); err != nil {
		return fmt.Errorf("retrieval: delete sparse: %w", err)
	}
	return nil
}

// Search runs the dense and sparse searches in parallel, fuses them with
// RRF, applies filters too rich for pushdown, and returns the top-k.
func (e *Engine) Search(ctx context.Context, query string, topK int, filters Filters) ([]*FusedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = 1
	}

	candidatePool := topK * e.cfg.OversampleMult
	if candidatePool <= 0 {
		candidatePool = topK
	}

	pushdown, _ := SplitPushdown(filters)

	var dense []qdrant.ScoredPoint
	var sparse []SparseResult

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		embeddings, err := e.embedder.Embed(gctx, []string{query})
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		if len(embeddings) == 0 {
			return nil
		}
		results, err := e.vector.Search(gctx, embeddings[0], candidatePool, pushdown)
		if err != nil {
			return fmt.Errorf("dense search: %w", err)
		}
		dense = results
		return nil
	})

	g.Go(func() error {
		if e.bm25.Empty() {
			return nil
		}
		results, err := e.bm25.Search(gctx, query, candidatePool)
		if err != nil {
			return fmt.Errorf("sparse search: %w", err)
		}
		sparse = results
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	weights := Weights{Dense: e.cfg.FusionAlpha, Sparse: 1 - e.cfg.FusionAlpha}
	fused := e.fusion.Fuse(dense, sparseLookup(dense), sparse, weights)

	filtered := ApplyFilters(fused, filters)
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

// sparseLookup builds the chunk-metadata lookup sparse-only fusion hits need,
// sourced from whatever the dense channel already fetched this round. A
// sparse-only hit with no matching dense entry gets no enrichment beyond its
// chunk_id and score — the ingestion pipeline always indexes both channels
// together, so this only matters for chunks evicted from one index but not
// the other.
func sparseLookup(dense []qdrant.ScoredPoint) map[string]SparseDocLookup {
	lookup := make(map[string]SparseDocLookup, len(dense))
	for _, d := range dense {
		lookup[d.ChunkID] = SparseDocLookup{
			DeclarationID: d.DeclarationID,
			Content:       d.Content,
			Section:       d.Section,
			ChunkIndex:    d.ChunkIndex,
			Metadata:      d.Metadata,
		}
	}
	return lookup
}
