package driving

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// AnalysisService answers "why did X happen" queries over indexed logs.
// Implementations never leak provider errors: every invocation returns a
// structured AnalysisResult, degrading through semantic search, keyword
// search and pattern matching as needed.
type AnalysisService interface {
	// Analyze retrieves evidence for the query and synthesises a root cause.
	Analyze(ctx context.Context, query string, opts domain.AnalysisOptions) domain.AnalysisResult
}
