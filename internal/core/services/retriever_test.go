package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loglens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loglens/internal/core/domain"
)

func TestRetriever_NoStore(t *testing.T) {
	r := NewRetriever(NewDocumentFactory(), NewVectorizer(newMockEmbedding()), nil)

	_, err := r.Retrieve(context.Background(), "why", 10)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRetriever_EmbeddingFailure(t *testing.T) {
	embedding := newMockEmbedding()
	embedding.embedErr = errors.New("provider down")
	r := NewRetriever(NewDocumentFactory(), NewVectorizer(embedding), memory.NewVectorStore())

	_, err := r.Retrieve(context.Background(), "why", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectorize query")
}

func TestRetriever_RanksBySimilarity(t *testing.T) {
	embedding := newMockEmbedding()
	embedding.vectorFor = func(string) []float32 { return []float32{1, 0, 0} }

	store := memory.NewVectorStore()
	err := store.Save(context.Background(), []domain.VectorDocument{
		{ID: "far", Vector: []float32{0, 1, 0}},
		{ID: "near", Vector: []float32{1, 0, 0}},
		{ID: "mid", Vector: []float32{1, 1, 0}},
	})
	require.NoError(t, err)

	r := NewRetriever(NewDocumentFactory(), NewVectorizer(embedding), store)
	docs, err := r.Retrieve(context.Background(), "anything", 2)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "near", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	require.NotNil(t, docs[0].Score)
	assert.InDelta(t, 1.0, *docs[0].Score, 1e-6)
}
