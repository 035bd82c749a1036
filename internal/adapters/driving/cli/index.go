package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loglens/internal/adapters/driven/source/filesystem"
	"github.com/custodia-labs/loglens/internal/logger"
)

var indexWatch bool

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Index JSON-lines log files into the vector store",
	Long: `Reads JSON-lines log files, embeds their contents and stores the vectors
for later analysis. Requires a configured embedding provider.

With --watch, keeps running after the initial pass and re-indexes files as
they change on disk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "watch files and re-index on change")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		if err := setupServices(true); err != nil {
			return err
		}
	}
	if indexerService == nil {
		return errors.New("indexer not configured; set up an embedding provider with 'loglens config'")
	}

	summary, err := indexerService.IndexFiles(cmd.Context(), args)
	printSummary(cmd, summary.Indexed, summary.Failed, summary.Errors)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if !indexWatch {
		return nil
	}
	return watchAndReindex(cmd, args)
}

// watchAndReindex re-indexes files as they change, until the context ends.
func watchAndReindex(cmd *cobra.Command, paths []string) error {
	roots := make(map[string]struct{})
	watched := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		roots[filepath.Dir(abs)] = struct{}{}
		watched[abs] = struct{}{}
	}

	dirs := make([]string, 0, len(roots))
	for dir := range roots {
		dirs = append(dirs, dir)
	}

	watcher := filesystem.NewWatcher(dirs...)
	defer watcher.Close()

	changes, err := watcher.Watch(cmd.Context())
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for change := range changes {
		if change.Type == filesystem.ChangeDeleted {
			continue
		}
		if _, ok := watched[change.Path]; !ok && !strings.HasSuffix(change.Path, ".jsonl") {
			continue
		}

		logger.Info("Change detected: %s", change.Path)
		summary, err := indexerService.IndexFiles(cmd.Context(), []string{change.Path})
		if err != nil {
			logger.Warn("Re-index of %s failed: %v", change.Path, err)
			continue
		}
		printSummary(cmd, summary.Indexed, summary.Failed, summary.Errors)
	}
	return nil
}

func printSummary(cmd *cobra.Command, indexed, failed int, errs []error) {
	cmd.Printf("Indexed %d file(s), %d failed\n", indexed, failed)
	for _, err := range errs {
		cmd.Printf("  error: %v\n", err)
	}
}
