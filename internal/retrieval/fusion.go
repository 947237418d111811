package retrieval

import (
	"sort"

	"github.com/dtxml/declarations/internal/storage/qdrant"
)

// Weights controls the per-channel contribution to Reciprocal Rank Fusion.
// Dense gets Dense, sparse gets Sparse; the spec default is 0.5/0.5.
type Weights struct {
	Dense  float64
	Sparse float64
}

// FusedResult is one chunk after RRF combination of the dense and sparse
// channels, still carrying both component scores for explanation.
type FusedResult struct {
	ChunkID       string
	DeclarationID string
	Content       string
	Section       string
	ChunkIndex    int
	Metadata      map[string]any

	RRFScore    float64
	DenseScore  float64
	SparseScore float64
	DenseRank   int // 1-based, 0 if absent from the dense channel
	SparseRank  int // 1-based, 0 if absent from the sparse channel
	InBothLists bool
}

// RRFFusion combines dense and sparse result lists with Reciprocal Rank
// Fusion: 1/(k+rank) per channel, weighted, summed when a chunk_id appears
// in both. Grounded on dt_xml/search/hybrid_search.py's `_rrf_fusion` and the
// amanmcp reference's fuseResults/RRFFusion shape.
type RRFFusion struct {
	k float64
}

// NewRRFFusion builds a fusion combinator with the given k_rrf constant.
func NewRRFFusion(k int) *RRFFusion {
	return &RRFFusion{k: float64(k)}
}

// Fuse combines dense and sparse results into a single descending-score
// list. Either input may be nil (e.g. sparse is skipped when no BM25 index
// exists yet).
func (f *RRFFusion) Fuse(dense []qdrant.ScoredPoint, sparseDocs map[string]SparseDocLookup, sparse []SparseResult, weights Weights) []*FusedResult {
	combined := make(map[string]*FusedResult)
	order := make([]string, 0, len(dense)+len(sparse))

	for i, d := range dense {
		rank := i + 1
		contribution := weights.Dense * (1.0 / (f.k + float64(rank)))
		entry, ok := combined[d.ChunkID]
		if !ok {
			entry = &FusedResult{
				ChunkID:       d.ChunkID,
				DeclarationID: d.DeclarationID,
				Content:       d.Content,
				Section:       d.Section,
				ChunkIndex:    d.ChunkIndex,
				Metadata:      d.Metadata,
			}
			combined[d.ChunkID] = entry
			order = append(order, d.ChunkID)
		}
		entry.RRFScore += contribution
		entry.DenseScore = float64(d.Score)
		entry.DenseRank = rank
	}

	for i, s := range sparse {
		rank := i + 1
		contribution := weights.Sparse * (1.0 / (f.k + float64(rank)))
		entry, ok := combined[s.ChunkID]
		if !ok {
			entry = &FusedResult{ChunkID: s.ChunkID}
			if lookup, found := sparseDocs[s.ChunkID]; found {
				entry.DeclarationID = lookup.DeclarationID
				entry.Content = lookup.Content
				entry.Section = lookup.Section
				entry.ChunkIndex = lookup.ChunkIndex
				entry.Metadata = lookup.Metadata
			}
			combined[s.ChunkID] = entry
			order = append(order, s.ChunkID)
		}
		entry.RRFScore += contribution
		entry.SparseScore = s.Score
		entry.SparseRank = rank
	}

	results := make([]*FusedResult, 0, len(order))
	for _, id := range order {
		entry := combined[id]
		entry.InBothLists = entry.DenseRank > 0 && entry.SparseRank > 0
		results = append(results, entry)
	}

	// order is built dense-first, so a stable sort keeps tied scores in
	// dense-channel-first order rather than leaving the tie-break to
	// whatever sort.Slice's unstable partitioning happens to produce.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RRFScore > results[j].RRFScore
	})
	return results
}

// SparseDocLookup carries the chunk fields the sparse channel alone cannot
// supply (it only knows chunk_id and score). The engine builds the lookup
// from the same query's dense results, so a sparse hit absent from them is
// not enriched.
type SparseDocLookup struct {
	DeclarationID string
	Content       string
	Section       string
	ChunkIndex    int
	Metadata      map[string]any
}
