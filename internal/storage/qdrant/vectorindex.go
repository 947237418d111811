// Package qdrant implements the VectorIndex contract against a Qdrant
// collection: one point per chunk, payload carries declaration/chunk
// identifiers plus the metadata used for equality filter pushdown.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// ChunkPoint is a single chunk's vector plus the payload the retriever reads
// back (declaration/chunk identifiers, section, and free-form metadata).
type ChunkPoint struct {
	ChunkID       string
	DeclarationID string
	Content       string
	Section       string
	ChunkIndex    int
	Vector        []float32
	Metadata      map[string]any
}

// ScoredPoint is a single search hit.
type ScoredPoint struct {
	ChunkID       string
	DeclarationID string
	Content       string
	Section       string
	ChunkIndex    int
	Score         float32
	Metadata      map[string]any
}

// Index is the VectorIndex contract: add, search, and delete-by-declaration
// over chunk embeddings.
type Index interface {
	AddChunks(ctx context.Context, points []ChunkPoint) error
	Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]ScoredPoint, error)
	DeleteByDeclarationID(ctx context.Context, declarationID string) error
	CollectionInfo(ctx context.Context) (CollectionInfo, error)
}

// CollectionInfo summarizes a collection for diagnostics/health checks.
type CollectionInfo struct {
	Name          string
	VectorsCount  uint64
	VectorSize    uint64
	Distance      string
}

const batchSize = 100

// VectorIndex is the Qdrant-backed Index implementation.
type VectorIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// Config configures a connection to a Qdrant instance.
type Config struct {
	Host           string
	Port           int
	GRPCPort       int
	UseTLS         bool
	CollectionName string
	VectorSize     uint64
}

// NewVectorIndex connects to Qdrant and ensures the configured collection
// exists, creating it with cosine distance if absent.
func NewVectorIndex(ctx context.Context, cfg Config) (*VectorIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.GRPCPort,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect: %w", err)
	}

	idx := &VectorIndex{
		client:         client,
		collectionName: cfg.CollectionName,
		vectorSize:     cfg.VectorSize,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *VectorIndex) ensureCollection(ctx context.Context) error {
	exists, err := idx.client.CollectionExists(ctx, idx.collectionName)
	if err != nil {
		return fmt.Errorf("qdrant: check collection existence: %w", err)
	}
	if exists {
		return nil
	}
	err = idx.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: idx.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     idx.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", idx.collectionName, err)
	}
	return nil
}

// AddChunks upserts points in batches of 100 to bound request size.
func (idx *VectorIndex) AddChunks(ctx context.Context, points []ChunkPoint) error {
	for start := 0; start < len(points); start += batchSize {
		end := min(start+batchSize, len(points))
		batch := points[start:end]

		upsertPoints := make([]*qdrant.PointStruct, 0, len(batch))
		for _, p := range batch {
			point, err := toPointStruct(p)
			if err != nil {
				return fmt.Errorf("qdrant: build point for chunk %s: %w", p.ChunkID, err)
			}
			upsertPoints = append(upsertPoints, point)
		}

		_, err := idx.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: idx.collectionName,
			Points:         upsertPoints,
			Wait:           ptrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant: upsert batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func toPointStruct(p ChunkPoint) (*qdrant.PointStruct, error) {
	payload := map[string]any{
		"declaration_id": p.DeclarationID,
		"chunk_id":       p.ChunkID,
		"content":        p.Content,
		"section":        p.Section,
		"chunk_index":    p.ChunkIndex,
	}
	for k, v := range p.Metadata {
		payload["payload."+k] = v
	}

	value, err := qdrant.TryValueMap(payload)
	if err != nil {
		return nil, err
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(chunkIDToPointID(p.ChunkID)),
		Vectors: qdrant.NewVectors(p.Vector...),
		Payload: value,
	}, nil
}

// Search performs a dense kNN search, pushing equality-only filters down to
// Qdrant's FieldCondition/MatchValue filter (range and membership predicates
// are the caller's responsibility to apply post-hoc).
func (idx *VectorIndex) Search(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]ScoredPoint, error) {
	queryPoints := &qdrant.QueryPoints{
		CollectionName: idx.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          ptrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(filter) > 0 {
		queryPoints.Filter = toEqualityFilter(filter)
	}

	result, err := idx.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("qdrant: query collection %s: %w", idx.collectionName, err)
	}

	points := make([]ScoredPoint, 0, len(result))
	for _, sp := range result {
		points = append(points, fromScoredPoint(sp))
	}
	return points, nil
}

// corePayloadFields are stored unprefixed by toPointStruct; anything else is
// tenant metadata, stored under the "payload." prefix.
var corePayloadFields = map[string]bool{
	"declaration_id": true,
	"chunk_id":       true,
	"content":        true,
	"section":        true,
	"chunk_index":    true,
}

func toEqualityFilter(filter map[string]any) *qdrant.Filter {
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for k, v := range filter {
		key := k
		if !corePayloadFields[k] {
			key = "payload." + k
		}
		conditions = append(conditions, qdrant.NewMatch(key, toMatchString(v)))
	}
	return &qdrant.Filter{Must: conditions}
}

func toMatchString(v any) string {
	return fmt.Sprintf("%v", v)
}

func fromScoredPoint(sp *qdrant.ScoredPoint) ScoredPoint {
	payload := sp.GetPayload()
	out := ScoredPoint{Score: sp.GetScore(), Metadata: make(map[string]any)}
	for k, v := range payload {
		switch k {
		case "declaration_id":
			out.DeclarationID = v.GetStringValue()
		case "chunk_id":
			out.ChunkID = v.GetStringValue()
		case "content":
			out.Content = v.GetStringValue()
		case "section":
			out.Section = v.GetStringValue()
		case "chunk_index":
			out.ChunkIndex = int(v.GetIntegerValue())
		default:
			out.Metadata[k] = v
		}
	}
	return out
}

// DeleteByDeclarationID removes every point belonging to a declaration. It
// scrolls defensively in pages rather than assuming a single bounded scroll
// call covers every point, even though the upstream reference deletion only
// ever issued one scroll call with a fixed page size.
func (idx *VectorIndex) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("declaration_id", declarationID)},
	}

	const pageSize = 10000
	var offset *qdrant.PointId
	for {
		points, nextOffset, err := idx.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: idx.collectionName,
			Filter:         filter,
			Limit:          ptrOf(uint32(pageSize)),
			Offset:         offset,
		})
		if err != nil {
			return fmt.Errorf("qdrant: scroll declaration %s: %w", declarationID, err)
		}
		if len(points) == 0 {
			return nil
		}

		ids := make([]*qdrant.PointId, 0, len(points))
		for _, p := range points {
			ids = append(ids, p.GetId())
		}
		_, err = idx.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: idx.collectionName,
			Points:         qdrant.NewPointsSelectorIDs(ids),
		})
		if err != nil {
			return fmt.Errorf("qdrant: delete declaration %s: %w", declarationID, err)
		}

		if len(points) < pageSize || nextOffset == nil {
			return nil
		}
		offset = nextOffset
	}
}

// CollectionInfo reports basic collection statistics.
func (idx *VectorIndex) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	info, err := idx.client.GetCollectionInfo(ctx, idx.collectionName)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("qdrant: get collection info: %w", err)
	}
	return CollectionInfo{
		Name:         idx.collectionName,
		VectorsCount: info.GetVectorsCount(),
		VectorSize:   idx.vectorSize,
		Distance:     "cosine",
	}, nil
}

func ptrOf[T any](v T) *T { return &v }

// chunkIDToPointID derives a stable uint64 point ID from a chunk ID, mirroring
// the hash-based ID assignment used when the source system cannot guarantee
// chunk IDs are themselves valid Qdrant point identifiers.
func chunkIDToPointID(chunkID string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(chunkID); i++ {
		h ^= uint64(chunkID[i])
		h *= 1099511628211
	}
	return h &^ (1 << 63)
}
