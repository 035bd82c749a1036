package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

// segmentSeparator joins the labelled segments of a document's content.
const segmentSeparator = " | "

// Context keys recognised by the content assembler.
const (
	keyHTTPMethod       = "http_method"
	keyURL              = "url"
	keyRoute            = "route"
	keyStatusCode       = "status_code"
	keyRequestID        = "request_id"
	keyUserID           = "user_id"
	keyUserName         = "user_name"
	keyUserRoles        = "user_roles"
	keyExceptionClass   = "exception_class"
	keyExceptionMessage = "exception_message"
	keyExceptionFile    = "exception_file"
	keyExceptionLine    = "exception_line"
	keyStackTrace       = "stack_trace"
	keyPreviousError    = "previous_exception"
	keyQuery            = "query"
	keyDuration         = "duration"
	keyMemoryUsage      = "memory_usage"
	keyCPUUsage         = "cpu_usage"
)

// DocumentFactory builds SemanticDocuments from log records and query strings.
// It is stateless; the same record always yields the same content.
type DocumentFactory struct{}

// NewDocumentFactory creates a new document factory.
func NewDocumentFactory() *DocumentFactory {
	return &DocumentFactory{}
}

// FromRecord builds a semantic document from a log record. The content is a
// fixed-order concatenation of labelled segments: message, severity, channel
// and timestamp always; HTTP, request, user, exception, database-query and
// performance blocks only when their fields are present; then one labelled
// entry per enriched value and per non-duplicate extra scalar.
// A zero timestamp falls back to the current time; this never fails.
func (f *DocumentFactory) FromRecord(rec domain.LogRecord) domain.SemanticDocument {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	channel := rec.Channel
	if channel == "" {
		channel = domain.DefaultChannel
	}

	segments := []string{
		"Log Message: " + rec.Message,
		"Severity: " + strings.ToUpper(rec.Level.String()),
		"Channel: " + channel,
		"Timestamp: " + ts.Format(time.RFC3339),
	}
	segments = append(segments, httpSegments(rec.Context)...)
	segments = append(segments, userSegments(rec.Context)...)
	segments = append(segments, exceptionSegments(rec.Context)...)
	segments = append(segments, querySegments(rec.Context)...)
	segments = append(segments, performanceSegments(rec.Context)...)
	segments = append(segments, labelledEntries(rec.Enriched, nil)...)
	segments = append(segments, labelledEntries(rec.Extra, rec.Context)...)

	return domain.SemanticDocument{
		ID:       uuid.New().String(),
		Content:  strings.Join(segments, segmentSeparator),
		Metadata: buildMetadata(rec, ts),
	}
}

// FromString wraps a raw query string with minimal metadata so queries travel
// the same vectorization path as indexed logs.
func (f *DocumentFactory) FromString(text string) domain.SemanticDocument {
	return domain.SemanticDocument{
		ID:      uuid.New().String(),
		Content: text,
		Metadata: map[string]any{
			"source":     "string",
			"created_at": time.Now().Format(time.RFC3339),
			"text":       text,
		},
	}
}

// httpSegments emits the HTTP request block when any HTTP field is present,
// followed by the request id.
func httpSegments(ctx map[string]any) []string {
	var segments []string

	method := stringValue(ctx[keyHTTPMethod])
	url := stringValue(ctx[keyURL])
	route := stringValue(ctx[keyRoute])
	status := stringValue(ctx[keyStatusCode])
	if method != "" || url != "" || route != "" || status != "" {
		var b strings.Builder
		b.WriteString("HTTP Request: ")
		b.WriteString(strings.TrimSpace(method + " " + url))
		if route != "" {
			b.WriteString(" route=" + route)
		}
		if status != "" {
			b.WriteString(" status=" + status)
		}
		segments = append(segments, b.String())
	}

	if id := stringValue(ctx[keyRequestID]); id != "" {
		segments = append(segments, "Request ID: "+id)
	}
	return segments
}

// userSegments emits the user block when any user field is present.
func userSegments(ctx map[string]any) []string {
	id := stringValue(ctx[keyUserID])
	name := stringValue(ctx[keyUserName])
	roles := stringValue(ctx[keyUserRoles])
	if id == "" && name == "" && roles == "" {
		return nil
	}

	var parts []string
	if id != "" {
		parts = append(parts, "id="+id)
	}
	if name != "" {
		parts = append(parts, "name="+name)
	}
	if roles != "" {
		parts = append(parts, "roles="+roles)
	}
	return []string{"User: " + strings.Join(parts, " ")}
}

// exceptionSegments emits the exception block when a class or message is present.
func exceptionSegments(ctx map[string]any) []string {
	class := stringValue(ctx[keyExceptionClass])
	message := stringValue(ctx[keyExceptionMessage])
	if class == "" && message == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString("Exception: ")
	if class != "" {
		b.WriteString(class)
	}
	if message != "" {
		if class != "" {
			b.WriteString(": ")
		}
		b.WriteString(message)
	}
	if file := stringValue(ctx[keyExceptionFile]); file != "" {
		b.WriteString(" at " + file)
		if line := stringValue(ctx[keyExceptionLine]); line != "" {
			b.WriteString(":" + line)
		}
	}
	if boolValue(ctx[keyStackTrace]) {
		b.WriteString(" (stack trace captured)")
	}
	if boolValue(ctx[keyPreviousError]) {
		b.WriteString(" (has previous)")
	}
	return []string{b.String()}
}

// querySegments emits the database query block.
func querySegments(ctx map[string]any) []string {
	if q := stringValue(ctx[keyQuery]); q != "" {
		return []string{"Database Query: " + q}
	}
	return nil
}

// performanceSegments emits the performance block when any metric is present.
func performanceSegments(ctx map[string]any) []string {
	duration := stringValue(ctx[keyDuration])
	memory := stringValue(ctx[keyMemoryUsage])
	cpu := stringValue(ctx[keyCPUUsage])
	if duration == "" && memory == "" && cpu == "" {
		return nil
	}

	var parts []string
	if duration != "" {
		parts = append(parts, "duration="+duration)
	}
	if memory != "" {
		parts = append(parts, "memory="+memory)
	}
	if cpu != "" {
		parts = append(parts, "cpu="+cpu)
	}
	return []string{"Performance: " + strings.Join(parts, " ")}
}

// labelledEntries emits one "Key: value" segment per scalar or flat-array
// value, in sorted key order for determinism. Keys already present in seen
// are skipped so extra fields never duplicate context fields.
func labelledEntries(fields, seen map[string]any) []string {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if seen != nil {
			if _, dup := seen[k]; dup {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	segments := make([]string, 0, len(keys))
	for _, k := range keys {
		v := scalarOrFlatArray(fields[k])
		if v == "" {
			continue
		}
		segments = append(segments, labelFor(k)+": "+v)
	}
	return segments
}

// labelFor turns a snake_case key into a title-case label.
func labelFor(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// buildMetadata merges context, extra and enriched fields with the canonical
// base fields, time-derived fields and presence flags. Base fields always win
// over identically named record fields.
func buildMetadata(rec domain.LogRecord, ts time.Time) map[string]any {
	meta := make(map[string]any, len(rec.Context)+len(rec.Extra)+len(rec.Enriched)+16)

	for k, v := range rec.Context {
		meta[k] = v
	}
	for k, v := range rec.Extra {
		if _, exists := meta[k]; !exists {
			meta[k] = v
		}
	}
	for k, v := range rec.Enriched {
		if _, exists := meta[k]; !exists {
			meta[k] = v
		}
	}

	// Canonical base fields always come from the record itself.
	meta["level"] = rec.Level.String()
	channel := rec.Channel
	if channel == "" {
		channel = domain.DefaultChannel
	}
	meta["channel"] = channel
	meta["message"] = rec.Message
	meta["timestamp"] = ts.Format(time.RFC3339)

	// Time-derived fields.
	meta["hour_of_day"] = ts.Hour()
	meta["day_of_week"] = strings.ToLower(ts.Weekday().String())
	meta["is_weekend"] = ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday
	meta["month"] = int(ts.Month())
	meta["year"] = ts.Year()

	// Presence flags.
	meta["has_exception"] = stringValue(rec.Context[keyExceptionClass]) != "" ||
		stringValue(rec.Context[keyExceptionMessage]) != ""
	meta["has_stack_trace"] = boolValue(rec.Context[keyStackTrace])
	meta["has_request_context"] = stringValue(rec.Context[keyRequestID]) != "" ||
		stringValue(rec.Context[keyHTTPMethod]) != "" || stringValue(rec.Context[keyURL]) != ""
	meta["has_user_context"] = stringValue(rec.Context[keyUserID]) != "" ||
		stringValue(rec.Context[keyUserName]) != ""
	meta["has_performance_data"] = stringValue(rec.Context[keyDuration]) != "" ||
		stringValue(rec.Context[keyMemoryUsage]) != "" || stringValue(rec.Context[keyCPUUsage]) != ""
	meta["has_database_query"] = stringValue(rec.Context[keyQuery]) != ""

	return meta
}

// stringValue renders a scalar metadata value as a string; nil and empty
// values render as "".
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers decode as float64; render integers without a fraction.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case int, int32, int64:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// boolValue interprets a metadata value as a boolean flag.
func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

// scalarOrFlatArray renders scalars and flat arrays; nested structures are
// skipped to keep content readable.
func scalarOrFlatArray(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if _, nested := item.(map[string]any); nested {
				continue
			}
			if _, nested := item.([]any); nested {
				continue
			}
			parts = append(parts, stringValue(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return stringValue(v)
	}
}
