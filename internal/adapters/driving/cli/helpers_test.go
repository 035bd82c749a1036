package cli

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
)

// setupTestServices installs mock services into the package-level vars and
// returns a cleanup that restores the originals.
func setupTestServices() func() {
	origAnalysis := analysisService
	origIndexer := indexerService

	analysisService = &mockAnalysisService{}
	indexerService = &mockIndexer{}

	return func() {
		analysisService = origAnalysis
		indexerService = origIndexer
	}
}

type mockAnalysisService struct {
	lastQuery string
	lastOpts  domain.AnalysisOptions
}

func (m *mockAnalysisService) Analyze(_ context.Context, query string, opts domain.AnalysisOptions) domain.AnalysisResult {
	m.lastQuery = query
	m.lastOpts = opts
	return domain.AnalysisResult{
		Success: true,
		Reason:  "Payment service timed out connecting to the database",
		Evidence: []domain.EvidenceEntry{
			{
				ID:        "doc-1",
				Content:   "DB connection timeout after 30s",
				Timestamp: "2026-02-10T12:00:00Z",
				Level:     "error",
				Source:    "payments",
				Tags:      []string{},
			},
		},
		SearchMethod: domain.SearchMethodSemantic,
		Query:        query,
	}
}

type mockIndexer struct {
	lastPaths []string
	summary   driving.IndexSummary
	err       error
}

func (m *mockIndexer) IndexRecords(_ context.Context, _ []domain.LogRecord) (driving.IndexSummary, error) {
	return m.summary, m.err
}

func (m *mockIndexer) IndexFiles(_ context.Context, paths []string) (driving.IndexSummary, error) {
	m.lastPaths = paths
	return m.summary, m.err
}

var (
	_ driving.AnalysisService = (*mockAnalysisService)(nil)
	_ driving.Indexer         = (*mockIndexer)(nil)
)
