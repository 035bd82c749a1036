package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates an empty or whitespace-only query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInvalidDocument indicates a vector document is not well-formed
	// (missing id, empty vector, or wrong dimensionality).
	ErrInvalidDocument = errors.New("invalid vector document")

	// ErrInvalidChunking indicates a chunker configuration error:
	// overlap must be smaller than the chunk size.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

	// ErrEmbeddingUnsupported indicates the active provider/model does not
	// support embeddings. Indexing fails fast with this error; search falls
	// back to keyword mode.
	ErrEmbeddingUnsupported = errors.New("embedding model unsupported")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no generation provider is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrStoreUnavailable indicates no vector store is configured.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// VectorizationError reports an embedding failure for a specific document so
// the indexer can decide whether to skip it or abort the batch.
type VectorizationError struct {
	// DocumentID identifies the document that failed to vectorize.
	DocumentID string

	// Err is the underlying provider error.
	Err error
}

// Error implements the error interface.
func (e *VectorizationError) Error() string {
	return fmt.Sprintf("vectorize document %s: %v", e.DocumentID, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *VectorizationError) Unwrap() error {
	return e.Err
}
