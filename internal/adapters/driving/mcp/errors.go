// Package mcp provides an MCP (Model Context Protocol) server adapter for
// loglens. It lets AI assistants analyse and index local application logs.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
