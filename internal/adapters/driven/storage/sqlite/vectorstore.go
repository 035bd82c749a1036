// Package sqlite provides a persistent vector store backed by SQLite.
// Vectors are stored as little-endian float32 blobs and metadata as JSON;
// similarity ranking is computed in-process, which is adequate for the
// corpus sizes a local log index sees.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/loglens/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a SQLite-backed implementation of driven.VectorStore.
type VectorStore struct {
	db   *sql.DB
	path string
}

// NewVectorStore creates a SQLite vector store at the specified data
// directory. If dataDir is empty, defaults to ~/.loglens/data/vectors.db.
func NewVectorStore(dataDir string) (*VectorStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".loglens", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode lets queries run concurrently with indexing writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Save appends documents in a single transaction: either the whole batch is
// stored or none of it.
func (s *VectorStore) Save(ctx context.Context, docs []domain.VectorDocument) error {
	if len(docs) == 0 {
		return nil
	}

	dims, err := s.dimensions(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if !doc.Valid() {
			return fmt.Errorf("%w: id %q", domain.ErrInvalidDocument, doc.ID)
		}
		if dims != 0 && len(doc.Vector) != dims {
			return fmt.Errorf("%w: got %d dimensions, store has %d",
				domain.ErrInvalidDocument, len(doc.Vector), dims)
		}
		if dims == 0 {
			dims = len(doc.Vector)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_documents (id, vector, dimensions, metadata)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, serialiseVector(doc.Vector), len(doc.Vector), string(meta)); err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

// Query loads all stored documents, ranks them by cosine similarity and
// returns the top opts.MaxItems, each annotated with its score.
func (s *VectorStore) Query(ctx context.Context, vector []float32, opts driven.QueryOptions) ([]domain.VectorDocument, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	docs, err := s.load(ctx, 0)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		score := cosineSimilarity(vector, docs[i].Vector)
		docs[i].Score = &score
	}

	// Rowid insertion order is the tie-break; load returns rows in that
	// order, and the sort is stable, so ranking is deterministic.
	sort.SliceStable(docs, func(i, j int) bool {
		return *docs[i].Score > *docs[j].Score
	})

	if opts.MaxItems > 0 && len(docs) > opts.MaxItems {
		docs = docs[:opts.MaxItems]
	}
	return docs, nil
}

// Scan returns up to limit stored documents in insertion order, unscored.
func (s *VectorStore) Scan(ctx context.Context, limit int) ([]domain.VectorDocument, error) {
	return s.load(ctx, limit)
}

// Count returns the number of stored documents.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vector_documents")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// load reads stored documents in insertion order. limit <= 0 reads all.
func (s *VectorStore) load(ctx context.Context, limit int) ([]domain.VectorDocument, error) {
	query := "SELECT id, vector, metadata FROM vector_documents ORDER BY rowid"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.VectorDocument
	for rows.Next() {
		var (
			id   string
			blob []byte
			meta string
		)
		if err := rows.Scan(&id, &blob, &meta); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		doc := domain.VectorDocument{ID: id, Vector: deserialiseVector(blob)}
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// dimensions returns the dimensionality of stored vectors, or 0 when empty.
func (s *VectorStore) dimensions(ctx context.Context) (int, error) {
	var dims sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT dimensions FROM vector_documents LIMIT 1")
	if err := row.Scan(&dims); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("read dimensions: %w", err)
	}
	return int(dims.Int64), nil
}

// migrate applies embedded SQL migrations that have not yet run.
func (s *VectorStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// serialiseVector encodes a vector as a little-endian float32 blob.
func serialiseVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, f := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserialiseVector decodes a little-endian float32 blob.
func deserialiseVector(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
