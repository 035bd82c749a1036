package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvidenceEntry_Defaults(t *testing.T) {
	entry := NewEvidenceEntry(VectorDocument{})

	assert.Equal(t, "unknown", entry.ID)
	assert.Equal(t, "unknown", entry.Timestamp)
	assert.Equal(t, "unknown", entry.Level)
	assert.Equal(t, "unknown", entry.Source)
	assert.Equal(t, "unknown", entry.Content)
	assert.NotNil(t, entry.Tags, "tags serialise as [] rather than null")
	assert.Empty(t, entry.Tags)
}

func TestNewEvidenceEntry_FromMetadata(t *testing.T) {
	entry := NewEvidenceEntry(VectorDocument{
		ID: "doc-1",
		Metadata: map[string]any{
			"content":   "Payment gateway timeout",
			"timestamp": "2026-02-10T12:00:00Z",
			"level":     "error",
			"source":    "payments",
			"tags":      []string{"checkout", "gateway"},
		},
	})

	assert.Equal(t, "doc-1", entry.ID)
	assert.Equal(t, "Payment gateway timeout", entry.Content)
	assert.Equal(t, "2026-02-10T12:00:00Z", entry.Timestamp)
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "payments", entry.Source)
	assert.Equal(t, []string{"checkout", "gateway"}, entry.Tags)
}

func TestNewEvidenceEntry_MessageFallback(t *testing.T) {
	entry := NewEvidenceEntry(VectorDocument{
		ID:       "doc-1",
		Metadata: map[string]any{"message": "raw log line"},
	})

	assert.Equal(t, "raw log line", entry.Content)
}

func TestNewEvidenceEntry_ContentWinsOverMessage(t *testing.T) {
	entry := NewEvidenceEntry(VectorDocument{
		ID: "doc-1",
		Metadata: map[string]any{
			"content": "assembled content",
			"message": "raw log line",
		},
	})

	assert.Equal(t, "assembled content", entry.Content)
}

func TestNewEvidenceEntry_AnyTypedTags(t *testing.T) {
	entry := NewEvidenceEntry(VectorDocument{
		ID:       "doc-1",
		Metadata: map[string]any{"tags": []any{"a", 7, "b"}},
	})

	assert.Equal(t, []string{"a", "b"}, entry.Tags)
}

func TestSearchMethod_String(t *testing.T) {
	assert.Equal(t, "semantic", SearchMethodSemantic.String())
	assert.Equal(t, "keyword-based", SearchMethodKeyword.String())
	assert.Equal(t, "none", SearchMethodNone.String())
}
