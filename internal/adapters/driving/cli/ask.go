package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

var (
	askJSON      bool
	askMax       int
	askThreshold float64
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a root-cause question over indexed logs",
	Long: `Analyses indexed logs to answer a question like "why did the payment fail".
Uses semantic search when an embedding provider is available, and degrades to
keyword and pattern matching when it is not. Always returns an answer with the
search method that produced it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	askCmd.Flags().IntVarP(&askMax, "max", "n", 0, "maximum number of evidence entries")
	askCmd.Flags().Float64VarP(&askThreshold, "threshold", "t", 0, "minimum semantic relevance score")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		if err := setupServices(false); err != nil {
			return err
		}
	}
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	opts := domain.AnalysisOptions{
		MaxItems:           askMax,
		RelevanceThreshold: askThreshold,
	}

	result := analysisService.Analyze(cmd.Context(), args[0], opts)

	if askJSON {
		return outputAnalysisJSON(cmd, result)
	}
	return outputAnalysisText(cmd, result)
}

func outputAnalysisJSON(cmd *cobra.Command, result domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysisText(cmd *cobra.Command, result domain.AnalysisResult) error {
	cmd.Println(result.Reason)
	cmd.Println()
	cmd.Printf("Search method: %s\n", result.SearchMethod)

	if len(result.Evidence) == 0 {
		return nil
	}

	cmd.Println("Evidence:")
	for i, entry := range result.Evidence {
		cmd.Printf("  [%d] %s %s %s\n", i+1, entry.Timestamp, entry.Level, entry.Content)
		if entry.Source != "" {
			cmd.Printf("      Source: %s\n", entry.Source)
		}
	}
	return nil
}
