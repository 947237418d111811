package handlers_test

import (
	"context"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/storage/blobstore"
	"github.com/dtxml/declarations/internal/storage/qdrant"
)

func newCanonicalRecordStub(declarationID, manufacturer string) *canonical.CanonicalRecord {
	return &canonical.CanonicalRecord{DeclarationID: declarationID, Manufacturer: manufacturer}
}

// fakeVectorIndex is an in-memory stand-in for qdrant.Index, shared by the
// handler tests in this package.
type fakeVectorIndex struct {
	points []qdrant.ChunkPoint
}

func (f *fakeVectorIndex) AddChunks(ctx context.Context, points []qdrant.ChunkPoint) error {
	f.points = append(f.points, points...)
	return nil
}
func (f *fakeVectorIndex) Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]qdrant.ScoredPoint, error) {
	out := make([]qdrant.ScoredPoint, 0, len(f.points))
	for i, p := range f.points {
		if i >= topK {
			break
		}
		out = append(out, qdrant.ScoredPoint{
			ChunkID:       p.ChunkID,
			DeclarationID: p.DeclarationID,
			Content:       p.Content,
			Section:       p.Section,
			ChunkIndex:    p.ChunkIndex,
			Score:         1.0 / float32(i+1),
			Metadata:      p.Metadata,
		})
	}
	return out, nil
}
func (f *fakeVectorIndex) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	return nil
}
func (f *fakeVectorIndex) CollectionInfo(ctx context.Context) (qdrant.CollectionInfo, error) {
	return qdrant.CollectionInfo{Name: "test"}, nil
}

// fakeEmbedder is a deterministic stand-in for vector.Producer.
type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return 3 }

// fakeMetadataStore is an in-memory stand-in for metadata.Store.
type fakeMetadataStore struct {
	records map[string]*canonical.CanonicalRecord
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{records: make(map[string]*canonical.CanonicalRecord)}
}
func (f *fakeMetadataStore) SaveRecord(ctx context.Context, rec *canonical.CanonicalRecord) error {
	f.records[rec.DeclarationID] = rec
	return nil
}
func (f *fakeMetadataStore) GetRecord(ctx context.Context, declarationID string) (*canonical.CanonicalRecord, error) {
	rec, ok := f.records[declarationID]
	if !ok {
		return nil, nil
	}
	return rec, nil
}
func (f *fakeMetadataStore) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	delete(f.records, declarationID)
	return nil
}

// fakeBlobStore is an in-memory stand-in for blobstore.Store.
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
