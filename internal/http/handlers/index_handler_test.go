package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/chunk"
	"github.com/dtxml/declarations/internal/http/handlers"
	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/ingest"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/schema"
)

func newTestIndexHandler(t *testing.T) *handlers.IndexHandler {
	t.Helper()
	registry, err := schema.NewRegistry(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, registry.Register(&schema.TenantSchema{
		TenantID:     "default",
		FieldMapping: map[string][]string{"manufacturer": {"manufacturer"}},
	}))

	vecIndex := &fakeVectorIndex{}
	bm25 := retrieval.NewBM25Index(1.5, 0.75)
	embedder := &fakeEmbedder{}
	engine := retrieval.NewEngine(vecIndex, bm25, embedder, retrieval.Config{RRFConstant: 60, FusionAlpha: 0.5, OversampleMult: 2})
	metaStore := newFakeMetadataStore()
	blobs := newFakeBlobStore()
	chunker := chunk.NewChunker(chunk.Config{ChunkSize: 500, ChunkOverlap: 50, MinChunkSize: 10, PreserveStructure: true})

	pipeline := ingest.NewPipeline(registry, chunker, embedder, metaStore, engine, blobs)
	return handlers.NewIndexHandler(pipeline)
}

func TestIndexHandlerXMLContentReturns200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestIndexHandler(t)

	body := bytes.NewBufferString(`{"tenant_id":"default","xml_content":"<declaration><manufacturer>Acme Corp</manufacturer><description>Widgets shipped today for customs review in bulk</description></declaration>"}`)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/index", body)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Index(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"indexed"`)
}

func TestIndexHandlerNoContentFieldsReturns400(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestIndexHandler(t)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/index", h.Index)

	body := bytes.NewBufferString(`{"tenant_id":"default"}`)
	req := httptest.NewRequest(http.MethodPost, "/index", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexHandlerInvalidJSONReturns400(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestIndexHandler(t)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/index", h.Index)

	body := bytes.NewBufferString(`{not valid json`)
	req := httptest.NewRequest(http.MethodPost, "/index", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
