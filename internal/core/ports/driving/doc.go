// Package driving provides interfaces for primary/inbound adapters
// (CLI, MCP server) to drive the core services.
package driving
