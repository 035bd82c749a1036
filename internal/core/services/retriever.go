package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/logger"
)

// Retriever turns a free-text query into ranked vector documents. It is a
// pure composition of the document factory, the vectorizer and the store:
// results come back unfiltered by relevance, which is the analysis service's
// policy to apply.
type Retriever struct {
	factory    *DocumentFactory
	vectorizer *Vectorizer
	store      driven.VectorStore
}

// NewRetriever creates a retriever over the given store.
func NewRetriever(factory *DocumentFactory, vectorizer *Vectorizer, store driven.VectorStore) *Retriever {
	return &Retriever{
		factory:    factory,
		vectorizer: vectorizer,
		store:      store,
	}
}

// Retrieve vectorizes the query through the same path as indexed logs and
// queries the store for the maxItems nearest documents.
func (r *Retriever) Retrieve(ctx context.Context, query string, maxItems int) ([]domain.VectorDocument, error) {
	if r.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	doc := r.factory.FromString(query)
	vectorized, err := r.vectorizer.VectorizeText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vectorized.Vector))

	results, err := r.store.Query(ctx, vectorized.Vector, driven.QueryOptions{MaxItems: maxItems})
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	logger.Debug("Retrieved %d candidates", len(results))
	return results, nil
}
