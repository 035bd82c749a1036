package mcp

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
)

// mockAnalysisService is a stub driving.AnalysisService.
type mockAnalysisService struct {
	result    domain.AnalysisResult
	lastQuery string
	lastOpts  domain.AnalysisOptions
}

var _ driving.AnalysisService = (*mockAnalysisService)(nil)

func (m *mockAnalysisService) Analyze(_ context.Context, query string, opts domain.AnalysisOptions) domain.AnalysisResult {
	m.lastQuery = query
	m.lastOpts = opts
	return m.result
}

// mockIndexer is a stub driving.Indexer.
type mockIndexer struct {
	summary   driving.IndexSummary
	err       error
	lastPaths []string
}

var _ driving.Indexer = (*mockIndexer)(nil)

func (m *mockIndexer) IndexRecords(_ context.Context, _ []domain.LogRecord) (driving.IndexSummary, error) {
	return m.summary, m.err
}

func (m *mockIndexer) IndexFiles(_ context.Context, paths []string) (driving.IndexSummary, error) {
	m.lastPaths = paths
	return m.summary, m.err
}

// mockVectorStore is a stub driven.VectorStore exposing only Count behaviour.
type mockVectorStore struct {
	count    int
	countErr error
}

var _ driven.VectorStore = (*mockVectorStore)(nil)

func (m *mockVectorStore) Save(_ context.Context, _ []domain.VectorDocument) error {
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, _ driven.QueryOptions) ([]domain.VectorDocument, error) {
	return nil, nil
}

func (m *mockVectorStore) Scan(_ context.Context, _ int) ([]domain.VectorDocument, error) {
	return nil, nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockVectorStore) Close() error {
	return nil
}
