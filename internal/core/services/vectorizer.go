package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/logger"
)

// probeText is the trivial input used by the capability probe.
const probeText = "test"

// Vectorizer adapts chunks and documents to the embedding provider and shapes
// the results as vector documents.
type Vectorizer struct {
	embedding driven.EmbeddingService
	limiter   *rate.Limiter

	// Capability probe cache. Owned by this instance so two vectorizers
	// against different providers never share a verdict.
	probeMu   sync.Mutex
	probed    bool
	supported bool
}

// VectorizerOption configures a Vectorizer.
type VectorizerOption func(*Vectorizer)

// WithRateLimit throttles provider calls to n requests per second.
func WithRateLimit(n float64) VectorizerOption {
	return func(v *Vectorizer) {
		if n > 0 {
			v.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// NewVectorizer creates a vectorizer backed by the given embedding service.
func NewVectorizer(embedding driven.EmbeddingService, opts ...VectorizerOption) *Vectorizer {
	v := &Vectorizer{embedding: embedding}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Vectorize embeds each input and pairs the returned vector with the input's
// id and metadata. Inputs are batched through EmbedBatch. A provider failure
// is reported as a VectorizationError carrying the id of the first document in
// the failed batch; the indexer decides whether to skip or abort.
func (v *Vectorizer) Vectorize(ctx context.Context, chunks []domain.Chunk) ([]domain.VectorDocument, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if v.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if err := v.wait(ctx); err != nil {
		return nil, &domain.VectorizationError{DocumentID: chunks[0].ID, Err: err}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	logger.Debug("Vectorizing %d chunks with %s", len(chunks), v.embedding.ModelName())
	vectors, err := v.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, &domain.VectorizationError{DocumentID: chunks[0].ID, Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &domain.VectorizationError{DocumentID: chunks[0].ID, Err: domain.ErrInvalidDocument}
	}

	docs := make([]domain.VectorDocument, len(chunks))
	for i, chunk := range chunks {
		meta := make(map[string]any, len(chunk.Metadata)+2)
		for k, val := range chunk.Metadata {
			meta[k] = val
		}
		// The chunk text rides along in metadata so stores can return it
		// without a second lookup.
		meta["content"] = chunk.Content
		meta["position"] = chunk.Position

		docs[i] = domain.VectorDocument{
			ID:       chunk.ID,
			Vector:   vectors[i],
			Metadata: meta,
		}
	}
	return docs, nil
}

// VectorizeText embeds a single text, used for query vectorization.
func (v *Vectorizer) VectorizeText(ctx context.Context, doc domain.SemanticDocument) (domain.VectorDocument, error) {
	if v.embedding == nil {
		return domain.VectorDocument{}, domain.ErrEmbeddingUnavailable
	}
	if err := v.wait(ctx); err != nil {
		return domain.VectorDocument{}, &domain.VectorizationError{DocumentID: doc.ID, Err: err}
	}

	vector, err := v.embedding.Embed(ctx, doc.Content)
	if err != nil {
		return domain.VectorDocument{}, &domain.VectorizationError{DocumentID: doc.ID, Err: err}
	}
	return domain.VectorDocument{ID: doc.ID, Vector: vector, Metadata: doc.Metadata}, nil
}

// SupportsEmbeddings reports whether the active provider/model can embed at
// all. The first call embeds a trivial string and caches the verdict for the
// lifetime of this vectorizer; the provider's advisory flag is consulted first
// but a failing advisory never skips the empirical probe.
func (v *Vectorizer) SupportsEmbeddings(ctx context.Context) bool {
	if v.embedding == nil {
		return false
	}

	v.probeMu.Lock()
	defer v.probeMu.Unlock()
	if v.probed {
		return v.supported
	}

	if !v.embedding.SupportsEmbeddings() {
		logger.Debug("Model catalog reports no embedding support for %s; probing anyway", v.embedding.ModelName())
	}

	_, err := v.embedding.Embed(ctx, probeText)
	v.probed = true
	v.supported = err == nil
	if err != nil {
		logger.Warn("Embedding capability probe failed: %v", err)
	}
	return v.supported
}

// wait blocks until the rate limiter admits another provider call.
func (v *Vectorizer) wait(ctx context.Context) error {
	if v.limiter == nil {
		return nil
	}
	return v.limiter.Wait(ctx)
}
