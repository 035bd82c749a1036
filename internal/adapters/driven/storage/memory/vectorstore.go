// Package memory provides an in-memory vector store for tests and small
// corpora. Similarity is brute-force cosine over all stored documents.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Two independently constructed stores never share documents.
type VectorStore struct {
	mu         sync.RWMutex
	docs       []domain.VectorDocument
	order      map[string]int
	dimensions int
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{order: make(map[string]int)}
}

// Save appends copies of the given documents. The whole batch is validated
// first so a rejected batch leaves the store untouched.
func (s *VectorStore) Save(_ context.Context, docs []domain.VectorDocument) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensions
	for _, doc := range docs {
		if !doc.Valid() {
			return fmt.Errorf("%w: id %q", domain.ErrInvalidDocument, doc.ID)
		}
		if dims == 0 {
			dims = len(doc.Vector)
		}
		if len(doc.Vector) != dims {
			return fmt.Errorf("%w: got %d dimensions, store has %d",
				domain.ErrInvalidDocument, len(doc.Vector), dims)
		}
	}
	s.dimensions = dims

	for _, doc := range docs {
		stored := copyDocument(doc)
		stored.Score = nil // scores are query-time only
		s.order[stored.ID] = len(s.docs)
		s.docs = append(s.docs, stored)
	}
	return nil
}

// Query returns up to opts.MaxItems documents ranked by cosine similarity.
// Ties break on insertion order, keeping the ranking deterministic.
func (s *VectorStore) Query(_ context.Context, vector []float32, opts driven.QueryOptions) ([]domain.VectorDocument, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		doc   domain.VectorDocument
		score float64
		pos   int
	}

	results := make([]ranked, 0, len(s.docs))
	for i, doc := range s.docs {
		results = append(results, ranked{doc: doc, score: cosineSimilarity(vector, doc.Vector), pos: i})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].pos < results[j].pos
	})

	max := opts.MaxItems
	if max <= 0 || max > len(results) {
		max = len(results)
	}

	out := make([]domain.VectorDocument, 0, max)
	for _, r := range results[:max] {
		out = append(out, copyDocument(r.doc).WithScore(r.score))
	}
	return out, nil
}

// Scan returns up to limit stored documents in insertion order, unscored.
func (s *VectorStore) Scan(_ context.Context, limit int) ([]domain.VectorDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.docs) {
		limit = len(s.docs)
	}

	out := make([]domain.VectorDocument, 0, limit)
	for _, doc := range s.docs[:limit] {
		out = append(out, copyDocument(doc))
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// copyDocument deep-copies a document so callers can never mutate store state
// through returned values.
func copyDocument(doc domain.VectorDocument) domain.VectorDocument {
	out := domain.VectorDocument{
		ID:     doc.ID,
		Vector: make([]float32, len(doc.Vector)),
	}
	copy(out.Vector, doc.Vector)
	if doc.Metadata != nil {
		out.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
