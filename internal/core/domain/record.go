package domain

import "time"

// DefaultChannel is used when a log record does not name a channel.
const DefaultChannel = "app"

// LogLevel is the severity of a log record.
type LogLevel string

// Recognised log levels.
const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelNotice   LogLevel = "notice"
	LevelWarning  LogLevel = "warning"
	LevelError    LogLevel = "error"
	LevelCritical LogLevel = "critical"
)

// String returns the string representation.
func (l LogLevel) String() string {
	return string(l)
}

// LogRecord is a single raw log entry.
// Records are immutable after construction: enrichment methods return a new
// record with merged maps rather than mutating in place, so a record can be
// shared across concurrent readers safely.
type LogRecord struct {
	// Message is the free-text log message.
	Message string

	// Level is the severity (error, warning, info, ...).
	Level LogLevel

	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Channel is the logical log channel (default "app").
	Channel string

	// Context holds structured fields attached at log time
	// (request_id, user_id, exception_class, query, duration, ...).
	Context map[string]any

	// Extra holds supplementary fields.
	Extra map[string]any

	// Enriched holds business-domain annotations added after ingestion.
	Enriched map[string]any
}

// NewLogRecord builds a record with defaults applied: a zero timestamp becomes
// the ingestion time and an empty channel becomes "app".
func NewLogRecord(message string, level LogLevel, timestamp time.Time, channel string) LogRecord {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return LogRecord{
		Message:   message,
		Level:     level,
		Timestamp: timestamp,
		Channel:   channel,
	}
}

// WithContext returns a copy of the record with the given fields merged into
// Context. Later values win on key collision within Context.
func (r LogRecord) WithContext(fields map[string]any) LogRecord {
	r.Context = mergeMaps(r.Context, fields)
	return r
}

// WithExtra returns a copy of the record with the given fields merged into Extra.
func (r LogRecord) WithExtra(fields map[string]any) LogRecord {
	r.Extra = mergeMaps(r.Extra, fields)
	return r
}

// WithEnriched returns a copy of the record with the given fields merged into
// Enriched.
func (r LogRecord) WithEnriched(fields map[string]any) LogRecord {
	r.Enriched = mergeMaps(r.Enriched, fields)
	return r
}

// mergeMaps copies base and overlays fields, never mutating either argument.
func mergeMaps(base, fields map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
