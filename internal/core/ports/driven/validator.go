package driven

import "github.com/custodia-labs/loglens/internal/core/domain"

// AIConfigValidator validates AI provider configurations before they are
// persisted, so a bad endpoint or key is caught at configuration time rather
// than at first query.
type AIConfigValidator interface {
	// ValidateEmbedding checks an embedding configuration by contacting the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks a generation configuration by contacting the provider.
	ValidateLLM(config *domain.LLMSettings) error
}
