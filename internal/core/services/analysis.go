package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
	"github.com/custodia-labs/loglens/internal/logger"
)

// Ensure AnalysisTool implements the interface.
var _ driving.AnalysisService = (*AnalysisTool)(nil)

// Keyword heuristic weights. The raw score is clamped to [0, 1] before the
// floor is applied.
const (
	weightPhraseMatch  = 0.6
	weightFieldOverlap = 0.25
	weightWordMatch    = 0.1
	weightSynonym      = 0.15
	keywordScoreFloor  = 0.1
)

// AnalysisTool answers root-cause questions over indexed logs. It degrades
// through three tiers: semantic search, keyword heuristic search, and a static
// pattern table, so a provider outage never surfaces as an error to callers.
type AnalysisTool struct {
	retriever  *Retriever
	vectorizer *Vectorizer
	store      driven.VectorStore
	llm        driven.LLMService
	settings   domain.SearchSettings
}

// NewAnalysisTool creates an analysis tool. The llm service is optional; when
// nil, root causes come from the pattern table.
func NewAnalysisTool(
	retriever *Retriever,
	vectorizer *Vectorizer,
	store driven.VectorStore,
	llm driven.LLMService,
	settings domain.SearchSettings,
) *AnalysisTool {
	if settings.RelevanceThreshold <= 0 {
		settings.RelevanceThreshold = domain.DefaultAppSettings().Search.RelevanceThreshold
	}
	if settings.MaxResults <= 0 {
		settings.MaxResults = domain.DefaultAppSettings().Search.MaxResults
	}
	if settings.ScanLimit <= 0 {
		settings.ScanLimit = domain.DefaultAppSettings().Search.ScanLimit
	}
	return &AnalysisTool{
		retriever:  retriever,
		vectorizer: vectorizer,
		store:      store,
		llm:        llm,
		settings:   settings,
	}
}

// Analyze runs the full ladder: validate → search → filter → synthesize.
// The result is always structured; provider failures select the next tier
// instead of propagating.
func (t *AnalysisTool) Analyze(ctx context.Context, query string, opts domain.AnalysisOptions) domain.AnalysisResult {
	logger.Section("Log Analysis")
	logger.Debug("Query: %q", query)

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.AnalysisResult{
			Success:      false,
			Reason:       "query is empty; provide a question about the indexed logs",
			Evidence:     []domain.EvidenceEntry{},
			SearchMethod: domain.SearchMethodNone,
			Query:        query,
		}
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = t.settings.MaxResults
	}
	threshold := opts.RelevanceThreshold
	if threshold <= 0 {
		threshold = t.settings.RelevanceThreshold
	}

	candidates, method := t.search(ctx, trimmed, maxItems, threshold)
	if len(candidates) == 0 {
		logger.Info("No evidence found (method: %s)", method)
		return domain.AnalysisResult{
			Success:      false,
			Reason:       fmt.Sprintf("no relevant logs found for %q using %s search", trimmed, method),
			Evidence:     []domain.EvidenceEntry{},
			SearchMethod: method,
			Query:        query,
		}
	}

	evidence := make([]domain.EvidenceEntry, len(candidates))
	for i, doc := range candidates {
		evidence[i] = domain.NewEvidenceEntry(doc)
	}

	reason := t.synthesize(ctx, trimmed, evidence)
	logger.Info("Analysis complete: %d evidence entries (method: %s)", len(evidence), method)

	return domain.AnalysisResult{
		Success:      true,
		Reason:       reason,
		Evidence:     evidence,
		SearchMethod: method,
		Query:        query,
	}
}

// search picks the retrieval tier. Semantic search runs when the capability
// probe passes; a semantic failure (not an empty result) drops to keyword
// search, as does an unsupported embedding model.
func (t *AnalysisTool) search(
	ctx context.Context, query string, maxItems int, threshold float64,
) ([]domain.VectorDocument, domain.SearchMethod) {
	if t.vectorizer != nil && t.vectorizer.SupportsEmbeddings(ctx) {
		logger.Debug("Executing semantic search (threshold %.2f)", threshold)
		docs, err := t.retriever.Retrieve(ctx, query, maxItems)
		if err == nil {
			return filterByRelevance(docs, threshold), domain.SearchMethodSemantic
		}
		logger.Warn("Semantic search failed, falling back to keyword search: %v", err)
	} else {
		logger.Debug("Embeddings unsupported, using keyword search")
	}

	docs, err := t.keywordSearch(ctx, query, maxItems)
	if err != nil {
		logger.Warn("Keyword search failed: %v", err)
		return nil, domain.SearchMethodNone
	}
	return docs, domain.SearchMethodKeyword
}

// filterByRelevance keeps documents whose score is missing (stores without
// similarity scoring are treated as always relevant) or at least threshold.
func filterByRelevance(docs []domain.VectorDocument, threshold float64) []domain.VectorDocument {
	kept := make([]domain.VectorDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.Score == nil || *doc.Score >= threshold {
			kept = append(kept, doc)
		}
	}
	logger.Debug("Relevance filter: %d of %d candidates kept", len(kept), len(docs))
	return kept
}

// keywordSearch scans the store and scores each document with a weighted
// heuristic: full-phrase containment, level/channel/tag token overlap,
// per-word containment and synonym expansion.
func (t *AnalysisTool) keywordSearch(ctx context.Context, query string, maxItems int) ([]domain.VectorDocument, error) {
	if t.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	candidates, err := t.store.Scan(ctx, t.settings.ScanLimit)
	if err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	logger.Debug("Keyword search scanning %d documents", len(candidates))

	queryLower := strings.ToLower(query)
	words := strings.Fields(queryLower)

	scored := make([]domain.VectorDocument, 0, len(candidates))
	for _, doc := range candidates {
		score := keywordScore(doc, queryLower, words)
		if score < keywordScoreFloor {
			continue
		}
		scored = append(scored, doc.WithScore(score))
	}

	// Deterministic order: score descending, id as tie-break.
	sort.Slice(scored, func(i, j int) bool {
		if *scored[i].Score != *scored[j].Score {
			return *scored[i].Score > *scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > maxItems {
		scored = scored[:maxItems]
	}
	return scored, nil
}

// keywordScore computes the weighted heuristic for one document, clamped to 1.
func keywordScore(doc domain.VectorDocument, queryLower string, words []string) float64 {
	content := strings.ToLower(contentOf(doc))
	if content == "" {
		return 0
	}

	var score float64
	if strings.Contains(content, queryLower) {
		score += weightPhraseMatch
	}

	level, _ := doc.Metadata["level"].(string)
	channel, _ := doc.Metadata["channel"].(string)
	fields := strings.ToLower(level + " " + channel + " " + strings.Join(tagsOf(doc), " "))

	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(fields, word) {
			score += weightFieldOverlap
		}
		if strings.Contains(content, word) {
			score += weightWordMatch
		}
		for _, synonym := range querySynonyms[word] {
			if strings.Contains(content, synonym) {
				score += weightSynonym
				break
			}
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// synthesize asks the generation provider for a root cause; on any failure it
// falls back to the static pattern table so the tool never throws past its
// boundary.
func (t *AnalysisTool) synthesize(ctx context.Context, query string, evidence []domain.EvidenceEntry) string {
	lines := make([]string, len(evidence))
	for i, entry := range evidence {
		lines[i] = entry.Content
	}
	joined := strings.Join(lines, "\n")

	if t.llm != nil {
		prompt := fmt.Sprintf(
			"The following log entries were retrieved as evidence for the question %q:\n\n%s\n\n"+
				"State the most likely root cause in one or two sentences. "+
				"Explain the cause, do not restate the symptoms.",
			query, joined,
		)
		answer, err := t.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.2})
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			logger.Warn("Generation failed, using pattern matching: %v", err)
		}
	}

	return matchCause(joined)
}

// contentOf extracts the searchable text of a stored document.
func contentOf(doc domain.VectorDocument) string {
	if v, ok := doc.Metadata["content"].(string); ok && v != "" {
		return v
	}
	if v, ok := doc.Metadata["message"].(string); ok {
		return v
	}
	return ""
}

// tagsOf extracts the tags of a stored document, tolerating both string and
// any-typed slices.
func tagsOf(doc domain.VectorDocument) []string {
	switch tags := doc.Metadata["tags"].(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
