// Package qdrant provides a vector store backed by a remote Qdrant instance,
// for corpora too large for the embedded backends.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	qd "github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Default configuration values.
const (
	DefaultPort       = 6334
	DefaultCollection = "loglens"
)

// Config holds Qdrant client configuration.
type Config struct {
	// URL is the Qdrant server URL, e.g. "http://localhost:6334".
	URL string

	// Collection is the collection name (default "loglens").
	Collection string

	// APIKey is an optional API key.
	APIKey string

	// Dimensions is the embedding vector size, required to create the
	// collection on first use.
	Dimensions int
}

// VectorStore is a Qdrant-backed implementation of driven.VectorStore.
type VectorStore struct {
	client     *qd.Client
	collection string
	dimensions int
}

// NewVectorStore connects to a Qdrant server and ensures the collection exists.
func NewVectorStore(ctx context.Context, cfg Config) (*VectorStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant vector dimensions are required")
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL: %w", err)
	}
	port := DefaultPort
	if parsed.Port() != "" {
		p, err := strconv.Atoi(parsed.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qd.NewClient(&qd.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	s := &VectorStore{
		client:     client,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}
	if err := s.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// Save validates and upserts documents. IDs must be UUIDs, which the
// chunker's uuid-generated ids guarantee.
func (s *VectorStore) Save(ctx context.Context, docs []domain.VectorDocument) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qd.PointStruct, 0, len(docs))
	for _, doc := range docs {
		if !doc.Valid() {
			return fmt.Errorf("%w: id %q", domain.ErrInvalidDocument, doc.ID)
		}
		if len(doc.Vector) != s.dimensions {
			return fmt.Errorf("%w: got %d dimensions, collection has %d",
				domain.ErrInvalidDocument, len(doc.Vector), s.dimensions)
		}

		points = append(points, &qd.PointStruct{
			Id: &qd.PointId{PointIdOptions: &qd.PointId_Uuid{Uuid: doc.ID}},
			Vectors: &qd.Vectors{
				VectorsOptions: &qd.Vectors_Vector{Vector: &qd.Vector{Data: doc.Vector}},
			},
			Payload: buildPayload(doc.Metadata),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Query runs a nearest-neighbour search in Qdrant and returns score-annotated
// documents.
func (s *VectorStore) Query(ctx context.Context, vector []float32, opts driven.QueryOptions) ([]domain.VectorDocument, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	request := &qd.QueryPoints{
		CollectionName: s.collection,
		Query:          qd.NewQuery(vector...),
		WithPayload:    qd.NewWithPayload(true),
	}
	if opts.MaxItems > 0 {
		limit := uint64(opts.MaxItems)
		request.Limit = &limit
	}

	points, err := s.client.Query(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	docs := make([]domain.VectorDocument, 0, len(points))
	for _, point := range points {
		doc := domain.VectorDocument{
			ID:       pointID(point.Id),
			Metadata: extractPayload(point.Payload),
		}
		docs = append(docs, doc.WithScore(float64(point.Score)))
	}
	return docs, nil
}

// Scan pages through the collection with the scroll API.
func (s *VectorStore) Scan(ctx context.Context, limit int) ([]domain.VectorDocument, error) {
	if limit <= 0 {
		limit = 1000
	}

	scrollLimit := uint32(limit)
	points, err := s.client.Scroll(ctx, &qd.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &scrollLimit,
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll: %w", err)
	}

	docs := make([]domain.VectorDocument, 0, len(points))
	for _, point := range points {
		docs = append(docs, domain.VectorDocument{
			ID:       pointID(point.Id),
			Metadata: extractPayload(point.Payload),
		})
	}
	return docs, nil
}

// Count returns the number of points in the collection.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qd.CountPoints{CollectionName: s.collection})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(count), nil
}

// Close releases the underlying gRPC connection.
func (s *VectorStore) Close() error {
	return s.client.Close()
}

// ensureCollection creates the collection if it does not exist.
func (s *VectorStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     uint64(s.dimensions),
			Distance: qd.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	return nil
}

// pointID extracts a document id from a Qdrant point id.
func pointID(id *qd.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// buildPayload converts document metadata to the Qdrant payload format.
func buildPayload(meta map[string]any) map[string]*qd.Value {
	payload := make(map[string]*qd.Value, len(meta))
	for key, value := range meta {
		switch v := value.(type) {
		case string:
			payload[key] = qd.NewValueString(v)
		case int:
			payload[key] = qd.NewValueInt(int64(v))
		case int64:
			payload[key] = qd.NewValueInt(v)
		case float64:
			payload[key] = qd.NewValueDouble(v)
		case bool:
			payload[key] = qd.NewValueBool(v)
		case time.Time:
			payload[key] = qd.NewValueString(v.Format(time.RFC3339))
		case []string:
			payload[key] = listValue(v)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				} else {
					items = append(items, fmt.Sprintf("%v", item))
				}
			}
			payload[key] = listValue(items)
		default:
			payload[key] = qd.NewValueString(fmt.Sprintf("%v", v))
		}
	}
	return payload
}

// listValue builds a Qdrant list payload value from string items.
func listValue(items []string) *qd.Value {
	values := make([]*qd.Value, 0, len(items))
	for _, item := range items {
		values = append(values, qd.NewValueString(item))
	}
	return &qd.Value{Kind: &qd.Value_ListValue{ListValue: &qd.ListValue{Values: values}}}
}

// extractPayload converts a Qdrant payload back to flat metadata.
func extractPayload(payload map[string]*qd.Value) map[string]any {
	meta := make(map[string]any, len(payload))
	for key, value := range payload {
		switch kind := value.GetKind().(type) {
		case *qd.Value_StringValue:
			meta[key] = kind.StringValue
		case *qd.Value_IntegerValue:
			meta[key] = kind.IntegerValue
		case *qd.Value_DoubleValue:
			meta[key] = kind.DoubleValue
		case *qd.Value_BoolValue:
			meta[key] = kind.BoolValue
		case *qd.Value_ListValue:
			var items []any
			for _, item := range kind.ListValue.GetValues() {
				if s := item.GetStringValue(); s != "" {
					items = append(items, s)
				}
			}
			meta[key] = items
		}
	}
	return meta
}
