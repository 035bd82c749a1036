package driven

import (
	"context"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// RecordLoader reads log records from an external source identified by path.
// Backed by the JSON-lines file loader.
type RecordLoader interface {
	// Load parses all records from the source. A malformed line is reported
	// as an error for that source; well-formed lines before it are returned
	// alongside the error so callers can decide how much to keep.
	Load(ctx context.Context, path string) ([]domain.LogRecord, error)
}
