package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// Default chunking configuration.
const (
	// DefaultChunkSize is the default number of characters per chunk.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the default number of overlapping characters.
	DefaultChunkOverlap = 100
)

// Chunker splits document content into fixed-size overlapping windows so long
// entries fit the embedding model's input limit without losing the context
// around a cut point.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker. It fails fast on configuration errors:
// size must be positive and overlap must be smaller than size.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidChunking, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d, size %d", domain.ErrInvalidChunking, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured maximum chunk length.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap length.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split produces the chunks of a document's content. Boundaries are a pure
// function of the content and configuration, so re-indexing the same document
// yields identical chunk spans. Each chunk after the first starts overlap
// characters before the end of the previous span; the final chunk may be
// shorter than the chunk size. Empty content produces no chunks.
// Sizes count characters, not bytes, so a multi-byte character is never
// split across two chunks.
func (c *Chunker) Split(doc domain.SemanticDocument) []domain.Chunk {
	content := []rune(doc.Content)
	if len(content) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]domain.Chunk, 0, len(content)/step+1)

	position := 0
	for start := 0; start < len(content); start += step {
		end := start + c.chunkSize
		if end > len(content) {
			end = len(content)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    string(content[start:end]),
			Position:   position,
			Metadata:   copyMetadata(doc.Metadata),
		})
		position++

		if end == len(content) {
			break
		}
	}

	return chunks
}

// copyMetadata shallow-copies a metadata map so chunks do not alias the
// parent document's map.
func copyMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
