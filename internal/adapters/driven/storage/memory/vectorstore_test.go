package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

func TestVectorStore_SaveAndCount(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	err := store.Save(ctx, []domain.VectorDocument{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorStore_Save_EmptyBatch(t *testing.T) {
	store := NewVectorStore()

	assert.NoError(t, store.Save(context.Background(), nil))

	count, _ := store.Count(context.Background())
	assert.Zero(t, count)
}

func TestVectorStore_Save_RejectsInvalidDocument(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	err := store.Save(ctx, []domain.VectorDocument{
		{ID: "ok", Vector: []float32{1, 0}},
		{ID: "", Vector: []float32{0, 1}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	count, _ := store.Count(ctx)
	assert.Zero(t, count, "a rejected batch leaves the store untouched")
}

func TestVectorStore_Save_EnforcesDimensions(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.VectorDocument{{ID: "a", Vector: []float32{1, 0, 0}}}))

	err := store.Save(ctx, []domain.VectorDocument{{ID: "b", Vector: []float32{1, 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestVectorStore_Save_MixedDimensionsInBatch(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	err := store.Save(ctx, []domain.VectorDocument{
		{ID: "a", Vector: []float32{1, 0, 0}},
		{ID: "b", Vector: []float32{1, 0}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	count, _ := store.Count(ctx)
	assert.Zero(t, count, "a rejected batch leaves the store untouched")
}

func TestVectorStore_Query_RanksAndScores(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.VectorDocument{
		{ID: "orthogonal", Vector: []float32{0, 1, 0}},
		{ID: "exact", Vector: []float32{1, 0, 0}},
		{ID: "diagonal", Vector: []float32{1, 1, 0}},
	}))

	results, err := store.Query(ctx, []float32{1, 0, 0}, driven.QueryOptions{MaxItems: 2})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "diagonal", results[1].ID)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 1.0, *results[0].Score, 1e-6)
	assert.InDelta(t, 0.7071, *results[1].Score, 1e-3)
}

func TestVectorStore_Query_Deterministic(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	// Equal similarity; insertion order breaks the tie.
	require.NoError(t, store.Save(ctx, []domain.VectorDocument{
		{ID: "second", Vector: []float32{1, 0}},
		{ID: "first", Vector: []float32{1, 0}},
	}))

	for i := 0; i < 3; i++ {
		results, err := store.Query(ctx, []float32{1, 0}, driven.QueryOptions{})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "second", results[0].ID)
		assert.Equal(t, "first", results[1].ID)
	}
}

func TestVectorStore_Query_EmptyVector(t *testing.T) {
	store := NewVectorStore()

	_, err := store.Query(context.Background(), nil, driven.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStore_Query_NoThresholding(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.VectorDocument{
		{ID: "opposite", Vector: []float32{-1, 0}},
	}))

	results, err := store.Query(ctx, []float32{1, 0}, driven.QueryOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1, "low-scoring documents are still returned")
	assert.InDelta(t, -1.0, *results[0].Score, 1e-6)
}

func TestVectorStore_Scan(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.VectorDocument{
		{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]any{"content": "first"}},
		{ID: "b", Vector: []float32{0, 1}},
		{ID: "c", Vector: []float32{1, 1}},
	}))

	all, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "first", all[0].Metadata["content"])
	assert.Nil(t, all[0].Score, "scan results carry no similarity score")

	limited, err := store.Scan(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestVectorStore_ReturnedDocumentsAreCopies(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.VectorDocument{
		{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]any{"level": "error"}},
	}))

	got, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	got[0].Vector[0] = 99
	got[0].Metadata["level"] = "spoofed"

	again, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), again[0].Vector[0])
	assert.Equal(t, "error", again[0].Metadata["level"])
}

func TestVectorStore_InstancesIndependent(t *testing.T) {
	a := NewVectorStore()
	b := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, []domain.VectorDocument{{ID: "x", Vector: []float32{1}}}))

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVectorStore_StoredScoreStripped(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	doc := domain.VectorDocument{ID: "a", Vector: []float32{1, 0}}.WithScore(0.5)
	require.NoError(t, store.Save(ctx, []domain.VectorDocument{doc}))

	got, err := store.Scan(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, got[0].Score)
}
