package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// SparseDocument is a single chunk's text as seen by the BM25 index.
type SparseDocument struct {
	ChunkID string
	Content string
}

// SparseResult is a single BM25 hit.
type SparseResult struct {
	ChunkID string
	Score   float64
}

// BM25Index is a hand-rolled Okapi BM25 sparse index. No BM25 library exists
// anywhere in the reference pack, so this is the domain algorithm itself
// rather than an ambient concern — see rank_bm25 usage in
// dt_xml/search/sparse_search.py for the formula this mirrors.
//
// The index is write-mostly-per-batch, read-many-at-query-time: AddDocuments
// rebuilds document frequency/length statistics for the full corpus, guarded
// by a RWMutex so concurrent Search calls never observe a half-built index.
type BM25Index struct {
	k1 float64
	b  float64

	mu      sync.RWMutex
	docs    map[string][]string // chunkID -> tokens, insertion order preserved via ids
	ids     []string
	docFreq map[string]int // term -> number of docs containing it
	avgLen  float64
}

// NewBM25Index builds an empty index with the given Okapi parameters.
func NewBM25Index(k1, b float64) *BM25Index {
	return &BM25Index{
		k1:      k1,
		b:       b,
		docs:    make(map[string][]string),
		docFreq: make(map[string]int),
	}
}

// AddDocuments tokenizes and indexes docs, replacing any existing entry for
// the same chunk ID.
func (idx *BM25Index) AddDocuments(_ context.Context, docs []SparseDocument) error {
	if len(docs) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, d := range docs {
		if _, exists := idx.docs[d.ChunkID]; !exists {
			idx.ids = append(idx.ids, d.ChunkID)
		}
		idx.docs[d.ChunkID] = tokenize(d.Content)
	}
	idx.rebuildStatsLocked()
	return nil
}

// DeleteByChunkIDs removes documents from the index.
func (idx *BM25Index) DeleteByChunkIDs(_ context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	remove := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		remove[id] = true
		delete(idx.docs, id)
	}
	kept := idx.ids[:0]
	for _, id := range idx.ids {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	idx.ids = kept
	idx.rebuildStatsLocked()
	return nil
}

// Empty reports whether the index has no documents — per spec.md §4.5, the
// sparse path is skipped entirely when no in-memory BM25 index exists yet.
func (idx *BM25Index) Empty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids) == 0
}

// Search tokenizes query the same way documents are tokenized, scores every
// indexed document with Okapi BM25, and returns the top-k by score
// descending.
func (idx *BM25Index) Search(_ context.Context, query string, topK int) ([]SparseResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.ids) == 0 {
		return nil, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	results := make([]SparseResult, 0, len(idx.ids))
	for _, id := range idx.ids {
		score := idx.scoreLocked(terms, idx.docs[id])
		if score > 0 {
			results = append(results, SparseResult{ChunkID: id, Score: score})
		}
	}

	sortResultsByScoreDesc(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (idx *BM25Index) scoreLocked(queryTerms, docTerms []string) float64 {
	if len(docTerms) == 0 {
		return 0
	}

	termCounts := make(map[string]int, len(docTerms))
	for _, t := range docTerms {
		termCounts[t]++
	}
	docLen := float64(len(docTerms))
	n := float64(len(idx.ids))

	var score float64
	for _, qt := range queryTerms {
		freq, ok := termCounts[qt]
		if !ok {
			continue
		}
		df := float64(idx.docFreq[qt])
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		tf := float64(freq)
		denom := tf + idx.k1*(1-idx.b+idx.b*docLen/idx.avgLen)
		score += idf * (tf * (idx.k1 + 1) / denom)
	}
	return score
}

func (idx *BM25Index) rebuildStatsLocked() {
	idx.docFreq = make(map[string]int)
	var totalLen int
	for _, id := range idx.ids {
		terms := idx.docs[id]
		totalLen += len(terms)
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			if !seen[t] {
				idx.docFreq[t]++
				seen[t] = true
			}
		}
	}
	if len(idx.ids) == 0 {
		idx.avgLen = 0
		return
	}
	idx.avgLen = float64(totalLen) / float64(len(idx.ids))
	if idx.avgLen == 0 {
		idx.avgLen = 1
	}
}

// tokenize lower-cases and whitespace-splits, mirroring the Python
// `doc.lower().split()` tokenization in sparse_search.py.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func sortResultsByScoreDesc(results []SparseResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
