package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/explain"
	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/rerank"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/storage/metadata"
	"github.com/dtxml/declarations/internal/temporal"
)

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Query    string         `json:"query" binding:"required"`
	TenantID string         `json:"tenant_id"`
	TopK     int            `json:"top_k"`
	Filters  map[string]any `json:"filters"`
	Rerank   bool           `json:"rerank"`
	Explain  bool           `json:"explain"`
}

// SearchResultItem is one entry in the POST /search results array.
type SearchResultItem struct {
	DeclarationID string               `json:"declaration_id"`
	ChunkID       string               `json:"chunk_id"`
	Content       string               `json:"content"`
	Score         float64              `json:"score"`
	Metadata      map[string]any       `json:"metadata,omitempty"`
	Explanation   *explain.Explanation `json:"explanation,omitempty"`
	MatchedFields []string             `json:"matched_fields"`
}

// SearchResponse is the POST /search success body.
type SearchResponse struct {
	Results     []SearchResultItem `json:"results"`
	Total       int                `json:"total"`
	QueryTimeMs int64              `json:"query_time_ms"`
	Query       string             `json:"query"`
}

// SearchHandler serves POST /search: hybrid retrieval, optional adaptive
// reranking, temporal adjustment (when enabled), and optional explainability.
type SearchHandler struct {
	engine                *retrieval.Engine
	reranker              *rerank.Reranker
	adjuster              *temporal.Adjuster
	metaStore             metadata.Store
	defaultTopK           int
	temporalEnabled       bool
	explainabilityEnabled bool
}

func NewSearchHandler(
	engine *retrieval.Engine,
	reranker *rerank.Reranker,
	adjuster *temporal.Adjuster,
	metaStore metadata.Store,
	defaultTopK int,
	temporalEnabled bool,
	explainabilityEnabled bool,
) *SearchHandler {
	return &SearchHandler{
		engine:                engine,
		reranker:              reranker,
		adjuster:              adjuster,
		metaStore:             metaStore,
		defaultTopK:           defaultTopK,
		temporalEnabled:       temporalEnabled,
		explainabilityEnabled: explainabilityEnabled,
	}
}

func (h *SearchHandler) Search(c *gin.Context) {
	started := time.Now()

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&middleware.ErrBadRequest{Err: err})
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = h.defaultTopK
	}
	if topK < 1 || topK > 100 {
		c.Error(&middleware.ErrQuery{Err: errTopKOutOfRange})
		return
	}

	filters, err := parseFilters(req.Filters)
	if err != nil {
		c.Error(&middleware.ErrQuery{Err: err})
		return
	}

	ctx := c.Request.Context()
	fused, err := h.engine.Search(ctx, req.Query, topK, filters)
	if err != nil {
		c.Error(&middleware.ErrStorageUnavailable{Err: err})
		return
	}

	if req.Rerank && h.reranker != nil && len(fused) > 0 {
		fused, err = h.applyRerank(ctx, req.Query, fused, topK)
		if err != nil {
			c.Error(&middleware.ErrStorageUnavailable{Err: err})
			return
		}
	}

	records := h.loadRecords(ctx, fused)

	now := time.Now()
	if h.temporalEnabled && h.adjuster != nil {
		for _, r := range fused {
			rec := records[r.DeclarationID]
			if rec == nil || rec.DateIssued == nil {
				continue
			}
			r.RRFScore = h.adjuster.AdjustScore(r.RRFScore, rec.DateIssued, now)
		}
		sort.SliceStable(fused, func(i, j int) bool { return fused[i].RRFScore > fused[j].RRFScore })
	}

	if len(fused) > topK {
		fused = fused[:topK]
	}

	items := make([]SearchResultItem, 0, len(fused))
	for _, r := range fused {
		item := SearchResultItem{
			DeclarationID: r.DeclarationID,
			ChunkID:       r.ChunkID,
			Content:       r.Content,
			Score:         r.RRFScore,
			Metadata:      r.Metadata,
			MatchedFields: []string{},
		}

		if h.explainabilityEnabled && req.Explain {
			fields := explain.Fields{Content: r.Content}
			if rec := records[r.DeclarationID]; rec != nil {
				fields.Manufacturer = rec.Manufacturer
				fields.Importer = rec.Importer
				fields.ProductCode = rec.ProductCode
				fields.CountryOrigin = rec.CountryOrigin
			}
			scores := explain.Scores{}
			if r.DenseRank > 0 {
				scores.HasDense, scores.DenseScore = true, r.DenseScore
			}
			if r.SparseRank > 0 {
				scores.HasSparse, scores.SparseScore = true, r.SparseScore
			}
			scores.HasHybrid, scores.HybridScore = true, r.RRFScore

			exp := explain.Explain(req.Query, r.RRFScore, fields, scores)
			item.Explanation = &exp
			item.MatchedFields = exp.MatchedFields
		}

		items = append(items, item)
	}

	c.JSON(http.StatusOK, SearchResponse{
		Results:     items,
		Total:       len(items),
		QueryTimeMs: time.Since(started).Milliseconds(),
		Query:       req.Query,
	})
}

// applyRerank scores the fused candidates with the adaptive reranker and
// reorders fused to match, overwriting RRFScore with the reranked score.
func (h *SearchHandler) applyRerank(ctx context.Context, query string, fused []*retrieval.FusedResult, topK int) ([]*retrieval.FusedResult, error) {
	candidates := make([]rerank.Candidate, len(fused))
	byChunk := make(map[string]*retrieval.FusedResult, len(fused))
	for i, r := range fused {
		candidates[i] = rerank.Candidate{ChunkID: r.ChunkID, Content: r.Content}
		byChunk[r.ChunkID] = r
	}

	results, err := h.reranker.Rerank(ctx, query, candidates, topK)
	if err != nil {
		return nil, err
	}

	reordered := make([]*retrieval.FusedResult, 0, len(results))
	for _, res := range results {
		r := byChunk[res.ChunkID]
		if r == nil {
			continue
		}
		r.RRFScore = res.Score
		reordered = append(reordered, r)
	}
	return reordered, nil
}

// loadRecords fetches the distinct declaration records referenced by fused,
// used to enrich explanations with field-level evidence and to drive
// temporal adjustment. Missing records (store errors, deleted declarations)
// are simply absent from the map.
func (h *SearchHandler) loadRecords(ctx context.Context, fused []*retrieval.FusedResult) map[string]*canonical.CanonicalRecord {
	out := make(map[string]*canonical.CanonicalRecord)
	if h.metaStore == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, r := range fused {
		if seen[r.DeclarationID] {
			continue
		}
		seen[r.DeclarationID] = true
		rec, err := h.metaStore.GetRecord(ctx, r.DeclarationID)
		if err == nil && rec != nil {
			out[r.DeclarationID] = rec
		}
	}
	return out
}
