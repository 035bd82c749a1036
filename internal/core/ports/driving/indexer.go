package driving

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// IndexSummary reports the outcome of a batch indexing run.
type IndexSummary struct {
	// Indexed is the number of sources indexed successfully.
	Indexed int

	// Failed is the number of sources that failed.
	Failed int

	// Errors holds one error per failed source.
	Errors []error
}

// Indexer ingests log sources into the vector store.
type Indexer interface {
	// IndexRecords indexes in-memory log records. Failures are isolated per
	// record and reported in the summary unless strict mode is configured,
	// in which case the first failure aborts the batch.
	IndexRecords(ctx context.Context, records []domain.LogRecord) (IndexSummary, error)

	// IndexFiles indexes JSON-lines log files by path.
	IndexFiles(ctx context.Context, paths []string) (IndexSummary, error)
}
