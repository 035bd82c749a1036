package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/loglens/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage loglens configuration",
	Long: `View and change configuration: AI providers, storage backend, chunking
and search tuning. Values are stored in ~/.loglens/config.toml.

Common keys:
  embedding.provider    "ollama" or "openai"
  embedding.model       embedding model name
  embedding.base_url    API endpoint (Ollama)
  embedding.api_key     API key (OpenAI)
  llm.provider          "ollama" or "openai"
  llm.model             generation model name
  storage.backend       "sqlite" (default), "memory" or "qdrant"
  index.chunk_size      chunk length in characters
  index.chunk_overlap   characters shared between chunks
  search.relevance_threshold  minimum semantic score`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value by key. When setting an API key the value may be
omitted, in which case it is read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the AI provider configuration",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, string(appSettings.Embedding.Provider), appSettings.Embedding.Model,
		appSettings.Embedding.BaseURL, appSettings.Embedding.APIKey, appSettings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, string(appSettings.LLM.Provider), appSettings.LLM.Model,
		appSettings.LLM.BaseURL, appSettings.LLM.APIKey, appSettings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Storage]")
	backend := configStore.GetString("storage.backend")
	if backend == "" {
		backend = "sqlite"
	}
	cmd.Printf("  Backend: %s\n", backend)
	if backend == "qdrant" {
		cmd.Printf("  URL: %s\n", configStore.GetString("storage.qdrant_url"))
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Chunk size: %d\n", appSettings.Index.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", appSettings.Index.ChunkOverlap)
	cmd.Printf("  Strict: %t\n", appSettings.Index.Strict)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Relevance threshold: %.2f\n", appSettings.Search.RelevanceThreshold)
	cmd.Printf("  Max results: %d\n", appSettings.Search.MaxResults)
	cmd.Printf("  Scan limit: %d\n", appSettings.Search.ScanLimit)
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func printProvider(cmd *cobra.Command, provider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		return
	}
	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else if strings.HasSuffix(key, ".api_key") {
		cmd.Print("Enter API key: ")
		value = readSecret()
		cmd.Println()
	} else {
		return fmt.Errorf("no value given for %s", key)
	}

	if err := configStore.Set(key, coerceValue(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if err := configStore.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	validator := ai.NewConfigValidator()
	valid := true

	if err := validator.ValidateEmbedding(&appSettings.Embedding); err != nil {
		cmd.Printf("Embedding: %v\n", err)
		valid = false
	} else {
		cmd.Println("Embedding: ok")
	}

	if err := validator.ValidateLLM(&appSettings.LLM); err != nil {
		cmd.Printf("LLM: %v\n", err)
		valid = false
	} else {
		cmd.Println("LLM: ok")
	}

	if !valid {
		cmd.Println("\nRun 'loglens config set' to fix configuration issues.")
	}
	return nil
}

// coerceValue converts numeric and boolean strings so TOML keeps their type.
func coerceValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
