package driven

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// QueryOptions configures a nearest-neighbour query.
type QueryOptions struct {
	// MaxItems is the maximum number of results to return.
	MaxItems int
}

// VectorStore persists vector documents and answers nearest-neighbour queries.
// Implementations must be safe for concurrent Save and Query; a query running
// concurrently with a save may or may not observe the new documents, but must
// never observe corrupted state.
//
// Backends: in-memory (brute-force cosine), SQLite (embedded), Qdrant (remote ANN).
type VectorStore interface {
	// Save appends well-formed documents. It rejects the whole batch with
	// domain.ErrInvalidDocument if any element is missing an id, has an empty
	// vector, or disagrees with the store's dimensionality. Empty input is a
	// no-op. Stored documents are copies; callers cannot mutate store state
	// through retained references.
	Save(ctx context.Context, docs []domain.VectorDocument) error

	// Query returns up to opts.MaxItems stored documents ranked by similarity
	// to the vector, each annotated with a score. Ranking is deterministic:
	// the same vector against the same store state yields the same ordered
	// set. The store never filters by score; thresholding is caller policy.
	Query(ctx context.Context, vector []float32, opts QueryOptions) ([]domain.VectorDocument, error)

	// Scan returns up to limit stored documents without similarity ranking.
	// This is the explicit full-scan capability used by keyword fallback
	// search instead of probing with a neutral vector.
	Scan(ctx context.Context, limit int) ([]domain.VectorDocument, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
