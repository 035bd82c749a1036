package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
)

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("returns analysis result", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{
			result: domain.AnalysisResult{
				Success: true,
				Reason:  "Database connection pool exhausted",
				Evidence: []domain.EvidenceEntry{
					{ID: "doc-1", Content: "connection refused", Level: "error", Source: "payments", Tags: []string{}},
				},
				SearchMethod: domain.SearchMethodSemantic,
				Query:        "why did payments fail",
			},
		}

		ports := &Ports{Analysis: mockAnalysis}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := AnalyzeInput{Query: "why did payments fail", MaxResults: 5}
		_, output, err := server.handleAnalyze(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, output.Success)
		assert.Equal(t, "Database connection pool exhausted", output.Reason)
		assert.Equal(t, "semantic", output.SearchMethod)
		require.Len(t, output.Evidence, 1)
		assert.Equal(t, "doc-1", output.Evidence[0].ID)
		assert.Equal(t, "why did payments fail", mockAnalysis.lastQuery)
		assert.Equal(t, 5, mockAnalysis.lastOpts.MaxItems)
	})

	t.Run("failed analysis is still a structured output, not a tool error", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{
			result: domain.AnalysisResult{
				Success:      false,
				Reason:       "no relevant logs found",
				Evidence:     []domain.EvidenceEntry{},
				SearchMethod: domain.SearchMethodKeyword,
				Query:        "anything",
			},
		}

		ports := &Ports{Analysis: mockAnalysis}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Query: "anything"})

		require.NoError(t, err)
		assert.False(t, output.Success)
		assert.Equal(t, "keyword-based", output.SearchMethod)
		assert.NotNil(t, output.Evidence)
	})

	t.Run("passes relevance threshold through", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{}
		ports := &Ports{Analysis: mockAnalysis}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Query: "q", RelevanceThreshold: 0.9})

		require.NoError(t, err)
		assert.Equal(t, 0.9, mockAnalysis.lastOpts.RelevanceThreshold)
	})
}

func TestServer_handleIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("returns index summary", func(t *testing.T) {
		indexer := &mockIndexer{
			summary: driving.IndexSummary{Indexed: 2, Failed: 1, Errors: []error{errors.New("bad file")}},
		}
		ports := &Ports{Analysis: &mockAnalysisService{}, Indexer: indexer}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := IndexInput{Paths: []string{"a.jsonl", "b.jsonl", "c.jsonl"}}
		_, output, err := server.handleIndex(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 2, output.Indexed)
		assert.Equal(t, 1, output.Failed)
		assert.Equal(t, []string{"bad file"}, output.Errors)
		assert.Equal(t, input.Paths, indexer.lastPaths)
	})

	t.Run("returns error when indexer is not configured", func(t *testing.T) {
		ports := &Ports{Analysis: &mockAnalysisService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIndex(ctx, nil, IndexInput{Paths: []string{"a.jsonl"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("returns error when no paths given", func(t *testing.T) {
		ports := &Ports{Analysis: &mockAnalysisService{}, Indexer: &mockIndexer{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIndex(ctx, nil, IndexInput{})

		require.Error(t, err)
	})

	t.Run("returns error on indexer failure", func(t *testing.T) {
		indexer := &mockIndexer{err: domain.ErrEmbeddingUnsupported}
		ports := &Ports{Analysis: &mockAnalysisService{}, Indexer: indexer}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleIndex(ctx, nil, IndexInput{Paths: []string{"a.jsonl"}})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnsupported)
	})
}
