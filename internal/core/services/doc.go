// Package services implements the core pipeline: document construction,
// chunking, vectorization, indexing, retrieval and log analysis.
// Services depend only on domain types and driven ports.
package services
