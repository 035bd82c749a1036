// Package domain contains the core business types for loglens: log records,
// semantic documents, vector documents, analysis results and settings.
// Types here have no knowledge of storage or AI providers.
package domain
