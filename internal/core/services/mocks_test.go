package services

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// vectorFor lets tests control the geometry of the returned embeddings;
// when nil, every text embeds to the same unit vector.
type mockEmbeddingService struct {
	dims      int
	advisory  bool
	embedErr  error
	batchErrs []error
	vectorFor func(text string) []float32

	embedCalls int
	batchCalls int
	lastTexts  []string
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{dims: 3, advisory: true}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.lastTexts = texts
	if len(m.batchErrs) > 0 {
		err := m.batchErrs[0]
		m.batchErrs = m.batchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if m.vectorFor != nil {
		return m.vectorFor(text)
	}
	v := make([]float32, m.dims)
	v[0] = 1
	return v
}

func (m *mockEmbeddingService) Dimensions() int          { return m.dims }
func (m *mockEmbeddingService) ModelName() string        { return "mock-embed" }
func (m *mockEmbeddingService) SupportsEmbeddings() bool { return m.advisory }
func (m *mockEmbeddingService) Ping(context.Context) error {
	return nil
}
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error

	generateCalls int
	lastPrompt    string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

// mockLoader implements driven.RecordLoader for testing.
type mockLoader struct {
	records map[string][]domain.LogRecord
	errs    map[string]error
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.LogRecord, error) {
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	return m.records[path], nil
}

var (
	_ driven.EmbeddingService = (*mockEmbeddingService)(nil)
	_ driven.LLMService       = (*mockLLMService)(nil)
	_ driven.RecordLoader     = (*mockLoader)(nil)
)
