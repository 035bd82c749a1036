// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): AI providers and vector store backends.
package driven
