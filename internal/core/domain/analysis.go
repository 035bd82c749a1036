package domain

const unknownValue = "unknown"

// SearchMethod identifies which retrieval strategy produced an analysis result.
type SearchMethod string

// Available search methods.
const (
	// SearchMethodSemantic is vector similarity search over embeddings.
	SearchMethodSemantic SearchMethod = "semantic"

	// SearchMethodKeyword is the heuristic keyword fallback used when
	// embeddings are unsupported or semantic search fails.
	SearchMethodKeyword SearchMethod = "keyword-based"

	// SearchMethodNone means no retrieval strategy could run.
	SearchMethodNone SearchMethod = "none"
)

// String returns the string representation.
func (m SearchMethod) String() string {
	return string(m)
}

// EvidenceEntry is the schema-stable representation of one retrieved log used
// to justify an analysis result. Every field has a default so the output shape
// is identical regardless of metadata completeness.
type EvidenceEntry struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
	Level     string   `json:"level"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
}

// NewEvidenceEntry builds an entry from a retrieved vector document, applying
// defaults for missing metadata.
func NewEvidenceEntry(doc VectorDocument) EvidenceEntry {
	entry := EvidenceEntry{
		ID:        doc.ID,
		Content:   unknownValue,
		Timestamp: unknownValue,
		Level:     unknownValue,
		Source:    unknownValue,
		Tags:      []string{},
	}
	if entry.ID == "" {
		entry.ID = unknownValue
	}
	if v, ok := doc.Metadata["content"].(string); ok && v != "" {
		entry.Content = v
	} else if v, ok := doc.Metadata["message"].(string); ok && v != "" {
		entry.Content = v
	}
	if v, ok := doc.Metadata["timestamp"].(string); ok && v != "" {
		entry.Timestamp = v
	}
	if v, ok := doc.Metadata["level"].(string); ok && v != "" {
		entry.Level = v
	}
	if v, ok := doc.Metadata["source"].(string); ok && v != "" {
		entry.Source = v
	}
	switch tags := doc.Metadata["tags"].(type) {
	case []string:
		entry.Tags = tags
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				entry.Tags = append(entry.Tags, s)
			}
		}
	}
	return entry
}

// AnalysisResult is the externally visible contract of the analysis tool.
// It is always returned as a structured value, never as a raw provider error.
type AnalysisResult struct {
	// Success reports whether evidence was found and a cause determined.
	Success bool `json:"success"`

	// Reason is the root-cause explanation, or a failure message.
	Reason string `json:"reason"`

	// Evidence is the set of logs backing the explanation.
	Evidence []EvidenceEntry `json:"evidence_logs"`

	// SearchMethod names the retrieval strategy that ran.
	SearchMethod SearchMethod `json:"search_method"`

	// Query echoes the original question.
	Query string `json:"query"`
}

// AnalysisOptions tunes a single analysis invocation. Zero values fall back to
// the configured defaults.
type AnalysisOptions struct {
	// MaxItems caps the number of evidence entries.
	MaxItems int

	// RelevanceThreshold overrides the minimum semantic similarity score.
	// Only applied when > 0.
	RelevanceThreshold float64
}
