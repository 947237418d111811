package chunk

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dtxml/declarations/internal/canonical"
)

// Config controls chunk sizing and the structure-preserving vs. size-based
// sliding strategy.
type Config struct {
	ChunkSize         int
	ChunkOverlap      int
	MinChunkSize      int
	PreserveStructure bool
}

// Chunker cuts a declaration's text into Chunks, either preserving section
// structure (default) or sliding a fixed-size word window over the raw text.
type Chunker struct {
	cfg Config
}

func NewChunker(cfg Config) *Chunker {
	return &Chunker{cfg: cfg}
}

// ChunkDeclaration splits text into Chunks for declarationID, using rec (if
// non-nil) to build structured sections alongside text-derived ones.
func (c *Chunker) ChunkDeclaration(declarationID, text string, rec *canonical.CanonicalRecord) []canonical.Chunk {
	if c.cfg.PreserveStructure {
		return c.chunkBySections(declarationID, text, rec)
	}
	return c.chunkBySize(declarationID, text)
}

func (c *Chunker) chunkBySections(declarationID, text string, rec *canonical.CanonicalRecord) []canonical.Chunk {
	sections := ExtractSections(text, rec)

	var chunks []canonical.Chunk
	chunkIndex := 0

	for _, section := range sections {
		if len(section.Content) > c.cfg.ChunkSize {
			for _, sub := range c.splitLargeSection(section.Content) {
				chunks = append(chunks, canonical.Chunk{
					ChunkID:       uuid.NewString(),
					DeclarationID: declarationID,
					Content:       sub,
					Section:       section.Tag,
					ChunkIndex:    chunkIndex,
					Metadata:      chunkMetadata(section),
				})
				chunkIndex++
			}
			continue
		}

		if len(section.Content) >= c.cfg.MinChunkSize {
			chunks = append(chunks, canonical.Chunk{
				ChunkID:       uuid.NewString(),
				DeclarationID: declarationID,
				Content:       section.Content,
				Section:       section.Tag,
				ChunkIndex:    chunkIndex,
				Metadata:      chunkMetadata(section),
			})
			chunkIndex++
		}
	}

	return chunks
}

func chunkMetadata(section Section) map[string]any {
	md := make(map[string]any, len(section.Metadata)+2)
	for k, v := range section.Metadata {
		md[k] = v
	}
	md["section"] = section.Tag
	md["preserve_structure"] = true
	return md
}

// splitLargeSection splits content on sentence boundary (". "), reassembling
// until chunk_size is reached, with sentence-level overlap between
// adjacent sub-chunks. Falls back to returning content whole if it never
// reaches chunk_size (e.g. few long sentences).
func (c *Chunker) splitLargeSection(content string) []string {
	sentences := strings.Split(content, ". ")

	var subChunks []string
	var current []string

	for _, sentence := range sentences {
		current = append(current, sentence)
		text := strings.Join(current, ". ")

		if len(text) >= c.cfg.ChunkSize {
			subChunks = append(subChunks, text)

			if c.cfg.ChunkOverlap > 0 && c.cfg.ChunkOverlap < len(current) {
				current = current[len(current)-c.cfg.ChunkOverlap:]
			} else {
				current = nil
			}
		}
	}

	if len(current) > 0 {
		remaining := strings.Join(current, ". ")
		if len(remaining) >= c.cfg.MinChunkSize {
			subChunks = append(subChunks, remaining)
		}
	}

	if len(subChunks) == 0 {
		return []string{content}
	}
	return subChunks
}

// chunkBySize word-tokenises text and accumulates tokens until chunk_size is
// reached, retaining the last chunk_overlap tokens as the next window's
// prefix. Empty text yields zero chunks; text under min_chunk_size yields one
// chunk with the full text.
func (c *Chunker) chunkBySize(declarationID, text string) []canonical.Chunk {
	if text == "" {
		return nil
	}
	if len(text) < c.cfg.MinChunkSize {
		return []canonical.Chunk{{
			ChunkID:       uuid.NewString(),
			DeclarationID: declarationID,
			Content:       text,
			ChunkIndex:    0,
			Metadata:      map[string]any{"preserve_structure": false},
		}}
	}

	words := strings.Fields(text)
	var chunks []canonical.Chunk
	var current []string
	chunkIndex := 0

	for _, word := range words {
		current = append(current, word)
		text := strings.Join(current, " ")

		if len(text) >= c.cfg.ChunkSize {
			chunks = append(chunks, canonical.Chunk{
				ChunkID:       uuid.NewString(),
				DeclarationID: declarationID,
				Content:       text,
				ChunkIndex:    chunkIndex,
				Metadata:      map[string]any{"preserve_structure": false},
			})
			chunkIndex++

			if c.cfg.ChunkOverlap > 0 && c.cfg.ChunkOverlap < len(current) {
				current = current[len(current)-c.cfg.ChunkOverlap:]
			} else {
				current = nil
			}
		}
	}

	if len(current) > 0 {
		remaining := strings.Join(current, " ")
		if len(remaining) >= c.cfg.MinChunkSize {
			chunks = append(chunks, canonical.Chunk{
				ChunkID:       uuid.NewString(),
				DeclarationID: declarationID,
				Content:       remaining,
				ChunkIndex:    chunkIndex,
				Metadata:      map[string]any{"preserve_structure": false},
			})
		}
	}

	return chunks
}
