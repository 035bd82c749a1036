package mcp

import (
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis answers root-cause queries over indexed logs.
	Analysis driving.AnalysisService

	// Indexer ingests log files. Optional; the index_logs tool reports an
	// error when it is absent.
	Indexer driving.Indexer

	// Store exposes store statistics. Optional.
	Store driven.VectorStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	// Indexer and Store are optional
	return nil
}
