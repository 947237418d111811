package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/chunk"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/schema"
	"github.com/dtxml/declarations/internal/storage/blobstore"
	"github.com/dtxml/declarations/internal/storage/qdrant"
)

type fakeVectorIndex struct {
	added []qdrant.ChunkPoint
}

func (f *fakeVectorIndex) AddChunks(ctx context.Context, points []qdrant.ChunkPoint) error {
	f.added = append(f.added, points...)
	return nil
}
func (f *fakeVectorIndex) Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]qdrant.ScoredPoint, error) {
	return nil, nil
}
func (f *fakeVectorIndex) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	return nil
}
func (f *fakeVectorIndex) CollectionInfo(ctx context.Context) (qdrant.CollectionInfo, error) {
	return qdrant.CollectionInfo{}, nil
}

type fakeMetadataStore struct {
	saved []*canonical.CanonicalRecord
}

func (f *fakeMetadataStore) SaveRecord(ctx context.Context, rec *canonical.CanonicalRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}
func (f *fakeMetadataStore) GetRecord(ctx context.Context, declarationID string) (*canonical.CanonicalRecord, error) {
	for _, r := range f.saved {
		if r.DeclarationID == declarationID {
			return r, nil
		}
	}
	return nil, nil
}
func (f *fakeMetadataStore) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	return nil
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return 3 }

type fakeBlobStore struct {
	saved map[string]*canonical.CanonicalRecord
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string]*canonical.CanonicalRecord)}
}
func (f *fakeBlobStore) Save(declarationID string, rec *canonical.CanonicalRecord) error {
	f.saved[declarationID] = rec
	return nil
}
func (f *fakeBlobStore) Get(declarationID string) (*blobstore.Document, error) {
	rec, ok := f.saved[declarationID]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return &blobstore.Document{Record: rec}, nil
}
func (f *fakeBlobStore) Delete(declarationID string) error {
	delete(f.saved, declarationID)
	return nil
}

func newTestPipeline(t *testing.T) (*Pipeline, *fakeVectorIndex, *fakeMetadataStore, *fakeBlobStore) {
	t.Helper()
	registry, err := schema.NewRegistry(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, registry.Register(&schema.TenantSchema{
		TenantID:     "default",
		FieldMapping: map[string][]string{"manufacturer": {"manufacturer"}},
	}))

	vecIndex := &fakeVectorIndex{}
	bm25 := retrieval.NewBM25Index(1.5, 0.75)
	engine := retrieval.NewEngine(vecIndex, bm25, &fakeEmbedder{}, retrieval.Config{
		RRFConstant: 60, FusionAlpha: 0.5, OversampleMult: 2,
	})
	metaStore := &fakeMetadataStore{}
	blobs := newFakeBlobStore()
	chunker := chunk.NewChunker(chunk.Config{ChunkSize: 500, ChunkOverlap: 50, MinChunkSize: 10, PreserveStructure: true})

	p := NewPipeline(registry, chunker, &fakeEmbedder{}, metaStore, engine, blobs)
	return p, vecIndex, metaStore, blobs
}

func TestIngestXMLContentProducesChunksAndOrdersUpserts(t *testing.T) {
	p, vecIndex, metaStore, blobs := newTestPipeline(t)

	xml := []byte(`<declaration><manufacturer>Acme Corp</manufacturer><description>Widgets and gadgets shipped in bulk quantity for customs review purposes today</description></declaration>`)

	result, err := p.Ingest(context.Background(), Request{
		TenantID:   "default",
		XMLContent: xml,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.DeclarationID)
	assert.Equal(t, "indexed", result.Status)
	assert.False(t, result.IndexedAt.IsZero())

	require.Len(t, metaStore.saved, 1)
	assert.Equal(t, result.DeclarationID, metaStore.saved[0].DeclarationID)
	assert.Contains(t, blobs.saved, result.DeclarationID)
	if result.ChunksCount > 0 {
		assert.NotEmpty(t, vecIndex.added)
	}
}

func TestIngestNoContentFieldsReturnsError(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	_, err := p.Ingest(context.Background(), Request{TenantID: "default"})
	assert.ErrorIs(t, err, ErrNoContentProvided)
}

func TestIngestMultipleContentFieldsReturnsError(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	_, err := p.Ingest(context.Background(), Request{
		TenantID:   "default",
		XMLContent: []byte(`<a/>`),
		OCRText:    "some text",
	})
	assert.ErrorIs(t, err, ErrMultipleContentProvided)
}

func TestIngestUsesProvidedDeclarationIDWhenAdapterLeavesItEmpty(t *testing.T) {
	p, _, metaStore, _ := newTestPipeline(t)
	_, err := p.Ingest(context.Background(), Request{
		DeclarationID: "dec-explicit-001",
		TenantID:      "default",
		OCRText:       "Acme Corp manufactured these goods for export under review",
	})
	require.NoError(t, err)
	require.Len(t, metaStore.saved, 1)
	assert.Equal(t, "dec-explicit-001", metaStore.saved[0].DeclarationID)
}
