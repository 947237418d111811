package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/http/handlers"
	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/storage/qdrant"
	"github.com/dtxml/declarations/internal/temporal"
)

func newTestSearchRouter(t *testing.T, temporalEnabled, explainEnabled bool) (*gin.Engine, *fakeVectorIndex, *fakeMetadataStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	vecIndex := &fakeVectorIndex{}
	bm25 := retrieval.NewBM25Index(1.5, 0.75)
	embedder := &fakeEmbedder{}
	engine := retrieval.NewEngine(vecIndex, bm25, embedder, retrieval.Config{RRFConstant: 60, FusionAlpha: 0.5, OversampleMult: 2})

	err := engine.IndexChunks(context.Background(), []qdrant.ChunkPoint{
		{ChunkID: "c1", DeclarationID: "dec-1", Content: "Samsung manufactured electronics", Section: "goods", Vector: []float32{0.1, 0.2, 0.3}},
		{ChunkID: "c2", DeclarationID: "dec-2", Content: "Apple manufactured electronics", Section: "goods", Vector: []float32{0.1, 0.2, 0.3}},
	})
	require.NoError(t, err)

	metaStore := newFakeMetadataStore()
	require.NoError(t, metaStore.SaveRecord(context.Background(), newCanonicalRecordStub("dec-1", "Samsung")))

	adjuster := temporal.NewAdjuster(temporal.NewResolver(temporal.DefaultRuleVersions()), 365, 0.1)

	h := handlers.NewSearchHandler(engine, nil, adjuster, metaStore, 10, temporalEnabled, explainEnabled)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/search", h.Search)
	return router, vecIndex, metaStore
}

func TestSearchReturnsFusedResultsDescendingByScore(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, false)

	body := bytes.NewBufferString(`{"query":"Samsung electronics","tenant_id":"default","top_k":5}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	var resp handlers.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.GreaterOrEqual(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestSearchTopKZeroFallsBackToDefault(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, false)

	body := bytes.NewBufferString(`{"query":"Samsung","top_k":0}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code) // top_k=0 falls back to default, not an error
}

func TestSearchTopKAboveMaxReturns422(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, false)

	body := bytes.NewBufferString(`{"query":"Samsung","top_k":101}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSearchMissingQueryReturns400(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, false)

	body := bytes.NewBufferString(`{"tenant_id":"default"}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchWithExplainIncludesExplanation(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, true)

	body := bytes.NewBufferString(`{"query":"Samsung","explain":true}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"explanation"`)
}

func TestSearchInvalidFilterShapeReturns422(t *testing.T) {
	router, _, _ := newTestSearchRouter(t, false, false)

	body := bytes.NewBufferString(`{"query":"Samsung","filters":{"year":{"gte":"not-a-number"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
