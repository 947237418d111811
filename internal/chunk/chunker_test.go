package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/canonical"
)

func TestChunkDeclarationEmptyTextSizeMode(t *testing.T) {
	c := NewChunker(Config{ChunkSize: 100, ChunkOverlap: 10, MinChunkSize: 20, PreserveStructure: false})
	chunks := c.ChunkDeclaration("dec-1", "", nil)
	assert.Empty(t, chunks)
}

func TestChunkDeclarationShortTextSizeMode(t *testing.T) {
	c := NewChunker(Config{ChunkSize: 100, ChunkOverlap: 10, MinChunkSize: 30, PreserveStructure: false})
	chunks := c.ChunkDeclaration("dec-1", "short text below minimum", nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "short text below minimum", chunks[0].Content)
}

func TestChunkDeclarationSizeModeSlidingWindow(t *testing.T) {
	c := NewChunker(Config{ChunkSize: 20, ChunkOverlap: 2, MinChunkSize: 5, PreserveStructure: false})
	text := strings.Repeat("word ", 30)
	chunks := c.ChunkDeclaration("dec-1", text, nil)
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, false, ch.Metadata["preserve_structure"])
	}
}

func TestChunkDeclarationStructurePreservingDenseChunkIndex(t *testing.T) {
	c := NewChunker(Config{ChunkSize: 200, ChunkOverlap: 1, MinChunkSize: 5, PreserveStructure: true})
	rec := &canonical.CanonicalRecord{
		DeclarationNumber: "10000/010203/0000001",
		Manufacturer:      "Acme Corp",
		Importer:          "Beta LLC",
		ProductCode:       "8471300000",
		ProductDescription: "Laptop computers",
		CountryOrigin:     "CN",
	}
	chunks := c.ChunkDeclaration("dec-1", "", rec)
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, true, ch.Metadata["preserve_structure"])
	}
}

func TestExtractSectionsMergesStructuredAndText(t *testing.T) {
	rec := &canonical.CanonicalRecord{
		Manufacturer: "Acme Corp",
	}
	text := "Производитель: дополнительная информация\nprefix line"
	sections := ExtractSections(text, rec)

	var manufacturer *Section
	for i := range sections {
		if sections[i].Tag == "manufacturer" {
			manufacturer = &sections[i]
		}
	}
	require.NotNil(t, manufacturer)
	assert.Contains(t, manufacturer.Content, "Acme Corp")
	assert.Contains(t, manufacturer.Content, "дополнительная информация")
}

func TestSplitLargeSectionFallsBackToWholeContent(t *testing.T) {
	c := NewChunker(Config{ChunkSize: 1000, ChunkOverlap: 1, MinChunkSize: 5, PreserveStructure: true})
	content := "one short sentence"
	subChunks := c.splitLargeSection(content)
	require.Len(t, subChunks, 1)
	assert.Equal(t, content, subChunks[0])
}
