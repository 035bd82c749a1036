// Package cli provides the loglens command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loglens/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/loglens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/loglens/internal/adapters/driven/loader/jsonl"
	"github.com/custodia-labs/loglens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loglens/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/loglens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
	"github.com/custodia-labs/loglens/internal/core/services"
	"github.com/custodia-labs/loglens/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Package-level services, wired by setupServices.
var (
	configStore     *configfile.ConfigStore
	vectorStore     driven.VectorStore
	embeddingSvc    driven.EmbeddingService
	llmSvc          driven.LLMService
	indexerService  driving.Indexer
	analysisService driving.AnalysisService
	appSettings     domain.AppSettings
)

var (
	verboseFlag bool
	configDir   string
)

var rootCmd = &cobra.Command{
	Use:   "loglens",
	Short: "Retrieval-augmented log analysis",
	Long: `loglens indexes application logs into a vector store and answers
root-cause questions over them.

Logs are ingested from JSON-lines files, embedded with a configured AI
provider, and queried with semantic search. When embeddings are unavailable
the analysis degrades to keyword search and pattern matching, so a question
always gets a structured answer.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.loglens)")
}

// Execute runs the root command. The version string comes from the build.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer teardownServices()
	return rootCmd.Execute()
}

// setupServices wires the full pipeline from configuration. When requireEmbedding
// is set, a missing or unreachable embedding provider is an error; otherwise the
// pipeline is built without one and analysis degrades to keyword search.
func setupServices(requireEmbedding bool) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if err := openStore(); err != nil {
		return err
	}

	if err := createProviders(requireEmbedding); err != nil {
		return err
	}

	factory := services.NewDocumentFactory()

	var vectorizer *services.Vectorizer
	var retriever *services.Retriever
	if embeddingSvc != nil {
		var opts []services.VectorizerOption
		if limit := configStore.GetFloat("embedding.rate_limit"); limit > 0 {
			opts = append(opts, services.WithRateLimit(limit))
		}
		vectorizer = services.NewVectorizer(embeddingSvc, opts...)
		retriever = services.NewRetriever(factory, vectorizer, vectorStore)
	}

	if vectorizer != nil {
		chunker, err := services.NewChunker(appSettings.Index.ChunkSize, appSettings.Index.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("invalid chunking configuration: %w", err)
		}
		indexerService = services.NewIndexerService(
			factory, chunker, vectorizer, vectorStore, jsonl.NewLoader(), appSettings.Index.Strict,
		)
	}

	analysisService = services.NewAnalysisTool(
		retriever, vectorizer, vectorStore, llmSvc, appSettings.Search,
	)
	return nil
}

// loadConfig opens the config store and materialises application settings.
func loadConfig() error {
	if configStore != nil {
		return nil
	}

	cs, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}
	configStore = cs
	appSettings = settingsFromConfig(cs)
	return nil
}

// openStore creates the configured vector store backend.
func openStore() error {
	if vectorStore != nil {
		return nil
	}

	backend := configStore.GetString("storage.backend")
	switch backend {
	case "", "sqlite":
		store, err := sqlite.NewVectorStore(configStore.GetString("storage.data_dir"))
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		vectorStore = store

	case "memory":
		vectorStore = memory.NewVectorStore()

	case "qdrant":
		dimensions := domain.EmbeddingDimensions()[appSettings.Embedding.Model]
		store, err := qdrant.NewVectorStore(rootCmd.Context(), qdrant.Config{
			URL:        configStore.GetString("storage.qdrant_url"),
			Collection: configStore.GetString("storage.qdrant_collection"),
			APIKey:     configStore.GetString("storage.qdrant_api_key"),
			Dimensions: dimensions,
		})
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		vectorStore = store

	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}
	return nil
}

// createProviders builds the AI services from settings. The embedding service
// is pinged only when required; the analysis path probes empirically instead
// so fallback still works with a dead provider.
func createProviders(requireEmbedding bool) error {
	var err error

	if requireEmbedding {
		embeddingSvc, err = ai.CreateAndValidateEmbeddingService(&appSettings.Embedding)
		if err != nil {
			return err
		}
		if embeddingSvc == nil {
			return errors.New("no embedding provider configured; run 'loglens config set embedding.provider ollama'")
		}
	} else {
		embeddingSvc, err = ai.CreateEmbeddingService(&appSettings.Embedding)
		if err != nil {
			logger.Warn("Embedding provider unavailable: %v", err)
			embeddingSvc = nil
		}
	}

	llmSvc, err = ai.CreateLLMService(&appSettings.LLM)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
		llmSvc = nil
	}
	return nil
}

// teardownServices releases provider and store resources.
func teardownServices() {
	if embeddingSvc != nil {
		embeddingSvc.Close()
		embeddingSvc = nil
	}
	if llmSvc != nil {
		llmSvc.Close()
		llmSvc = nil
	}
	if vectorStore != nil {
		vectorStore.Close()
		vectorStore = nil
	}
}

// settingsFromConfig builds application settings from the config store,
// falling back to documented defaults for anything unset.
func settingsFromConfig(cs driven.ConfigStore) domain.AppSettings {
	settings := domain.DefaultAppSettings()

	if v := cs.GetFloat("search.relevance_threshold"); v > 0 {
		settings.Search.RelevanceThreshold = v
	}
	if v := cs.GetInt("search.max_results"); v > 0 {
		settings.Search.MaxResults = v
	}
	if v := cs.GetInt("search.scan_limit"); v > 0 {
		settings.Search.ScanLimit = v
	}

	if v := cs.GetInt("index.chunk_size"); v > 0 {
		settings.Index.ChunkSize = v
	}
	if v := cs.GetInt("index.chunk_overlap"); v > 0 {
		settings.Index.ChunkOverlap = v
	}
	settings.Index.Strict = cs.GetBool("index.strict")

	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProvider(cs.GetString("embedding.provider")),
		Model:    cs.GetString("embedding.model"),
		BaseURL:  cs.GetString("embedding.base_url"),
		APIKey:   cs.GetString("embedding.api_key"),
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProvider(cs.GetString("llm.provider")),
		Model:    cs.GetString("llm.model"),
		BaseURL:  cs.GetString("llm.base_url"),
		APIKey:   cs.GetString("llm.api_key"),
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings
}
