// Package ingest orchestrates the full declaration ingestion pipeline:
// adapt -> normalize -> validate -> chunk -> embed -> upsert metadata ->
// upsert vectors -> upsert blob, in that strict order per the concurrency
// and resource model's cancellation-safety requirement (metadata before
// vectors before blob, so a mid-flight cancellation leaves at worst orphan
// metadata, repairable by a retried ingest with the same declaration_id).
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtxml/declarations/internal/adapters"
	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/chunk"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/schema"
	"github.com/dtxml/declarations/internal/storage/blobstore"
	"github.com/dtxml/declarations/internal/storage/metadata"
	"github.com/dtxml/declarations/internal/storage/qdrant"
	"github.com/dtxml/declarations/internal/vector"
)

var ErrNoContentProvided = errors.New("ingest: exactly one of xml_content, json_data, or ocr_text is required")
var ErrMultipleContentProvided = errors.New("ingest: exactly one of xml_content, json_data, or ocr_text is required, got more than one")

// Request is one declaration's raw input. Exactly one of XMLContent,
// JSONData, OCRText must be set.
type Request struct {
	DeclarationID string // optional; if empty, the parsed declaration number is used, else a generated uuid
	TenantID      string
	XMLContent    []byte
	JSONData      map[string]any
	OCRText       string
}

// Result is what the HTTP layer returns to the caller.
type Result struct {
	DeclarationID string
	ChunksCount   int
	IndexedAt     time.Time
	Status        string
}

// Pipeline wires the schema registry, the three input adapters, the
// chunker, the embedder, and the three storage backends into a single
// ingestion call.
type Pipeline struct {
	registry  *schema.Registry
	markup    *adapters.MarkupAdapter
	record    *adapters.RecordAdapter
	ocr       *adapters.OCRAdapter
	chunker   *chunk.Chunker
	embedder  vector.Producer
	metadata  metadata.Store
	retrieval *retrieval.Engine
	blobs     blobstore.Store
}

// NewPipeline assembles a Pipeline from its already-constructed
// dependencies.
func NewPipeline(
	registry *schema.Registry,
	chunker *chunk.Chunker,
	embedder vector.Producer,
	metadataStore metadata.Store,
	retrievalEngine *retrieval.Engine,
	blobs blobstore.Store,
) *Pipeline {
	return &Pipeline{
		registry:  registry,
		markup:    adapters.NewMarkupAdapter(),
		record:    adapters.NewRecordAdapter(),
		ocr:       adapters.NewOCRAdapter(),
		chunker:   chunker,
		embedder:  embedder,
		metadata:  metadataStore,
		retrieval: retrievalEngine,
		blobs:     blobs,
	}
}

// Ingest runs the full pipeline for a single declaration.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*Result, error) {
	rec, err := p.adapt(req)
	if err != nil {
		return nil, err
	}

	// id resolution order: explicit request id, then the declaration's own
	// number (so re-ingesting the same declaration upserts instead of
	// duplicating), then a generated id as the last resort.
	switch {
	case req.DeclarationID != "":
		rec.DeclarationID = req.DeclarationID
	case rec.DeclarationNumber != "":
		rec.DeclarationID = rec.DeclarationNumber
	case rec.DeclarationID == "":
		rec.DeclarationID = uuid.NewString()
	}
	rec.TenantID = req.TenantID
	now := time.Now()
	rec.ProcessedAt = &now

	chunks := p.chunker.ChunkDeclaration(rec.DeclarationID, declarationText(rec), rec)

	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err = p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("ingest: embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("ingest: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
	}

	// Ordering per the resource model: metadata, then vectors, then blob.
	if err := p.metadata.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("ingest: save metadata: %w", err)
	}

	if len(chunks) > 0 {
		points := make([]qdrant.ChunkPoint, len(chunks))
		for i, c := range chunks {
			points[i] = qdrant.ChunkPoint{
				ChunkID:       c.ChunkID,
				DeclarationID: rec.DeclarationID,
				Content:       c.Content,
				Section:       c.Section,
				ChunkIndex:    c.ChunkIndex,
				Vector:        vectors[i],
				Metadata:      c.Metadata,
			}
		}
		if err := p.retrieval.IndexChunks(ctx, points); err != nil {
			return nil, fmt.Errorf("ingest: index chunks: %w", err)
		}
	}

	if err := p.blobs.Save(rec.DeclarationID, rec); err != nil {
		return nil, fmt.Errorf("ingest: save blob: %w", err)
	}

	return &Result{
		DeclarationID: rec.DeclarationID,
		ChunksCount:   len(chunks),
		IndexedAt:     now,
		Status:        "indexed",
	}, nil
}

func (p *Pipeline) adapt(req Request) (*canonical.CanonicalRecord, error) {
	count := 0
	if len(req.XMLContent) > 0 {
		count++
	}
	if len(req.JSONData) > 0 {
		count++
	}
	if req.OCRText != "" {
		count++
	}
	if count == 0 {
		return nil, ErrNoContentProvided
	}
	if count > 1 {
		return nil, ErrMultipleContentProvided
	}

	s, err := p.registry.Get(req.TenantID)
	if err != nil && !errors.Is(err, schema.ErrNoDefaultSchema) {
		return nil, fmt.Errorf("ingest: resolve tenant schema: %w", err)
	}

	switch {
	case len(req.XMLContent) > 0:
		return p.markup.Parse(req.XMLContent, req.TenantID, s)
	case len(req.JSONData) > 0:
		if s == nil {
			return nil, fmt.Errorf("ingest: record adapter requires a tenant schema: %w", err)
		}
		return p.record.Parse(req.JSONData, req.TenantID, s)
	default:
		return p.ocr.Parse(req.OCRText, req.TenantID, s)
	}
}

// declarationText is the text fed to the chunker: FullText when the adapter
// populated it, else RawText as a fallback.
func declarationText(rec *canonical.CanonicalRecord) string {
	if rec.FullText != "" {
		return rec.FullText
	}
	return rec.RawText
}
