package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorDocument_Valid(t *testing.T) {
	tests := []struct {
		name string
		doc  VectorDocument
		want bool
	}{
		{"complete", VectorDocument{ID: "d-1", Vector: []float32{1, 0}}, true},
		{"missing id", VectorDocument{Vector: []float32{1, 0}}, false},
		{"empty vector", VectorDocument{ID: "d-1"}, false},
		{"empty", VectorDocument{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Valid())
		})
	}
}

func TestVectorDocument_WithScore(t *testing.T) {
	doc := VectorDocument{ID: "d-1", Vector: []float32{1}}

	scored := doc.WithScore(0.85)

	assert.Nil(t, doc.Score, "original is not mutated")
	require.NotNil(t, scored.Score)
	assert.InDelta(t, 0.85, *scored.Score, 1e-9)
}
