// Package jsonl loads log records from JSON-lines files, one record per line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/loglens/internal/core/domain"
	"github.com/custodia-labs/loglens/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.RecordLoader = (*Loader)(nil)

// maxLineSize is the scanner buffer limit. Stack traces in context fields can
// push a single line well past the bufio default.
const maxLineSize = 1 << 20

// Loader reads log records from a JSON-lines file.
type Loader struct{}

// NewLoader creates a new JSON-lines record loader.
func NewLoader() *Loader {
	return &Loader{}
}

// line is the wire format of a single record.
type line struct {
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Timestamp string         `json:"timestamp"`
	Channel   string         `json:"channel"`
	Context   map[string]any `json:"context"`
	Extra     map[string]any `json:"extra"`
}

// timestampFormats are tried in order when parsing record timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Load parses all records from the file. On a malformed line it returns the
// records parsed so far together with an error naming the offending line.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.LogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []domain.LogRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		if err := ctx.Err(); err != nil {
			return records, err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		record, err := parseLine(text)
		if err != nil {
			return records, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// parseLine decodes one JSON object into a log record.
func parseLine(text string) (domain.LogRecord, error) {
	var raw line
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.LogRecord{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if raw.Message == "" {
		return domain.LogRecord{}, fmt.Errorf("%w: missing message", domain.ErrInvalidInput)
	}

	record := domain.NewLogRecord(
		raw.Message,
		parseLevel(raw.Level),
		parseTimestamp(raw.Timestamp),
		raw.Channel,
	)
	if len(raw.Context) > 0 {
		record = record.WithContext(raw.Context)
	}
	if len(raw.Extra) > 0 {
		record = record.WithExtra(raw.Extra)
	}
	return record, nil
}

// parseLevel normalises a level string, defaulting to info.
func parseLevel(s string) domain.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return domain.LevelDebug
	case "info", "":
		return domain.LevelInfo
	case "notice":
		return domain.LevelNotice
	case "warning", "warn":
		return domain.LevelWarning
	case "error", "err":
		return domain.LevelError
	case "critical", "crit", "fatal", "alert", "emergency":
		return domain.LevelCritical
	default:
		return domain.LogLevel(strings.ToLower(strings.TrimSpace(s)))
	}
}

// parseTimestamp tries the known formats, returning zero time on failure so
// NewLogRecord falls back to the ingestion time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
