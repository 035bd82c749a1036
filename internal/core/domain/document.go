package domain

// SemanticDocument is the canonical searchable form of a log record (or of an
// ad-hoc query string). Content is assembled deterministically so the same
// record always produces the same embedding input.
type SemanticDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the human-readable text that gets embedded.
	Content string

	// Metadata is a flat map merging record fields, time-derived fields and
	// presence flags. Documents built from records always carry level,
	// channel, message and an RFC3339 timestamp.
	Metadata map[string]any
}

// Chunk is a contiguous window of a SemanticDocument's content, bounded by the
// configured chunk size. Consecutive chunks overlap so a concept split across
// a boundary survives in at least one chunk.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent SemanticDocument.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Metadata is copied from the parent document.
	Metadata map[string]any
}

// VectorDocument pairs an embedding vector with the metadata of its source
// chunk. Stored documents carry no score; Score is populated transiently on
// retrieval and is nil otherwise.
type VectorDocument struct {
	// ID is the unique identifier.
	ID string

	// Vector is the embedding, fixed dimensionality per model.
	Vector []float32

	// Metadata is copied from the source chunk/document.
	Metadata map[string]any

	// Score is the similarity score assigned at query time.
	Score *float64
}

// Valid reports whether the document is well-formed for storage:
// a non-empty ID and a non-empty vector.
func (d VectorDocument) Valid() bool {
	return d.ID != "" && len(d.Vector) > 0
}

// WithScore returns a copy of the document annotated with a score.
func (d VectorDocument) WithScore(score float64) VectorDocument {
	d.Score = &score
	return d
}
