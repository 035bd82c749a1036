package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze_logs tool.
type AnalyzeInput struct {
	Query              string  `json:"query" jsonschema:"the question to answer from the indexed logs, e.g. 'why did the payment fail'"`
	MaxResults         int     `json:"max_results,omitempty" jsonschema:"maximum number of evidence logs to return (default 10)"`
	RelevanceThreshold float64 `json:"relevance_threshold,omitempty" jsonschema:"minimum similarity score for semantic evidence (default 0.7)"`
}

// AnalyzeOutput is the output schema for the analyze_logs tool.
type AnalyzeOutput struct {
	Success      bool                   `json:"success"`
	Reason       string                 `json:"reason"`
	Evidence     []domain.EvidenceEntry `json:"evidence_logs"`
	SearchMethod string                 `json:"search_method"`
	Query        string                 `json:"query"`
}

// IndexInput is the input schema for the index_logs tool.
type IndexInput struct {
	Paths []string `json:"paths" jsonschema:"JSON-lines log files to index"`
}

// IndexOutput is the output schema for the index_logs tool.
type IndexOutput struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_logs",
		Description: "Answer a root-cause question from the indexed application logs",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_logs",
		Description: "Index JSON-lines log files into the vector store",
	}, s.handleIndex)
}

// handleAnalyze handles the analyze_logs tool invocation. The analysis
// service returns a structured result even when retrieval degrades, so this
// handler never maps provider failures to tool errors.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	opts := domain.AnalysisOptions{
		MaxItems:           input.MaxResults,
		RelevanceThreshold: input.RelevanceThreshold,
	}

	result := s.ports.Analysis.Analyze(ctx, input.Query, opts)

	return nil, AnalyzeOutput{
		Success:      result.Success,
		Reason:       result.Reason,
		Evidence:     result.Evidence,
		SearchMethod: result.SearchMethod.String(),
		Query:        result.Query,
	}, nil
}

// handleIndex handles the index_logs tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	if s.ports.Indexer == nil {
		return nil, IndexOutput{}, errors.New("indexing is not configured")
	}
	if len(input.Paths) == 0 {
		return nil, IndexOutput{}, errors.New("at least one path is required")
	}

	summary, err := s.ports.Indexer.IndexFiles(ctx, input.Paths)
	if err != nil {
		return nil, IndexOutput{}, err
	}

	output := IndexOutput{
		Indexed: summary.Indexed,
		Failed:  summary.Failed,
	}
	for _, indexErr := range summary.Errors {
		output.Errors = append(output.Errors, indexErr.Error())
	}
	return nil, output, nil
}
