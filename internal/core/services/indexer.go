package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
	"github.com/custodia-labs/loglens/internal/core/ports/driving"
	"github.com/custodia-labs/loglens/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService orchestrates ingestion: record → document → chunks →
// vectors → store. Sources are processed independently; one malformed entry
// never voids the rest of the batch unless strict mode is set.
type IndexerService struct {
	factory    *DocumentFactory
	chunker    *Chunker
	vectorizer *Vectorizer
	store      driven.VectorStore
	loader     driven.RecordLoader
	strict     bool
}

// NewIndexerService creates an indexer. The loader is only needed for
// IndexFiles and may be nil when indexing in-memory records.
func NewIndexerService(
	factory *DocumentFactory,
	chunker *Chunker,
	vectorizer *Vectorizer,
	store driven.VectorStore,
	loader driven.RecordLoader,
	strict bool,
) *IndexerService {
	return &IndexerService{
		factory:    factory,
		chunker:    chunker,
		vectorizer: vectorizer,
		store:      store,
		loader:     loader,
		strict:     strict,
	}
}

// IndexRecords indexes in-memory log records.
// It validates embedding support up front and fails fast with
// domain.ErrEmbeddingUnsupported rather than partially indexing.
// Re-indexing the same records appends new documents; the store does not
// deduplicate, so exactly-once ingestion is the caller's concern.
func (s *IndexerService) IndexRecords(ctx context.Context, records []domain.LogRecord) (driving.IndexSummary, error) {
	logger.Section("Indexing")

	var summary driving.IndexSummary
	if err := s.validate(ctx); err != nil {
		return summary, err
	}
	logger.Info("Indexing %d records", len(records))

	for i, rec := range records {
		if err := s.indexRecord(ctx, rec); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Errorf("record %d: %w", i, err))
			logger.Warn("Record %d failed: %v", i, err)
			if s.strict {
				return summary, fmt.Errorf("record %d: %w", i, err)
			}
			continue
		}
		summary.Indexed++
	}

	logger.Info("Indexed %d records, %d failed", summary.Indexed, summary.Failed)
	return summary, nil
}

// IndexFiles indexes JSON-lines log files. Each file is an isolated source:
// a file that fails to load or index is counted and reported, and the batch
// moves on unless strict mode is set.
func (s *IndexerService) IndexFiles(ctx context.Context, paths []string) (driving.IndexSummary, error) {
	logger.Section("Indexing Files")

	var summary driving.IndexSummary
	if s.loader == nil {
		return summary, fmt.Errorf("index files: %w", domain.ErrInvalidInput)
	}
	if err := s.validate(ctx); err != nil {
		return summary, err
	}

	for _, path := range paths {
		if err := s.indexFile(ctx, path); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Errorf("%s: %w", path, err))
			logger.Warn("File %s failed: %v", path, err)
			if s.strict {
				return summary, fmt.Errorf("%s: %w", path, err)
			}
			continue
		}
		summary.Indexed++
	}

	logger.Info("Indexed %d files, %d failed", summary.Indexed, summary.Failed)
	return summary, nil
}

// indexFile loads and indexes the records of one file.
func (s *IndexerService) indexFile(ctx context.Context, path string) error {
	records, err := s.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	logger.Debug("Loaded %d records from %s", len(records), path)

	for i, rec := range records {
		if err := s.indexRecord(ctx, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// indexRecord runs one record through the full pipeline.
func (s *IndexerService) indexRecord(ctx context.Context, rec domain.LogRecord) error {
	doc := s.factory.FromRecord(rec)
	chunks := s.chunker.Split(doc)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.vectorizer.Vectorize(ctx, chunks)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, vectors); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// validate checks the pipeline is usable before any partial work happens.
func (s *IndexerService) validate(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	if !s.vectorizer.SupportsEmbeddings(ctx) {
		return domain.ErrEmbeddingUnsupported
	}
	return nil
}
