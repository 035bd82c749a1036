package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loglens/internal/core/domain"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_Load_ParsesRecords(t *testing.T) {
	path := writeFixture(t, `{"message":"Payment gateway timeout","level":"error","timestamp":"2026-08-01T10:30:00Z","channel":"payments","context":{"request_id":"req-1"}}
{"message":"User login","level":"info","channel":"auth"}
`)

	loader := NewLoader()
	records, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Payment gateway timeout", records[0].Message)
	assert.Equal(t, domain.LevelError, records[0].Level)
	assert.Equal(t, "payments", records[0].Channel)
	assert.Equal(t, "req-1", records[0].Context["request_id"])
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), records[0].Timestamp)

	assert.Equal(t, domain.LevelInfo, records[1].Level)
	assert.Equal(t, "auth", records[1].Channel)
}

func TestLoader_Load_AppliesDefaults(t *testing.T) {
	path := writeFixture(t, `{"message":"no level or channel"}`+"\n")

	loader := NewLoader()
	records, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.LevelInfo, records[0].Level)
	assert.Equal(t, domain.DefaultChannel, records[0].Channel)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestLoader_Load_SkipsBlankLines(t *testing.T) {
	path := writeFixture(t, "\n"+`{"message":"first"}`+"\n\n"+`{"message":"second"}`+"\n\n")

	loader := NewLoader()
	records, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoader_Load_MalformedLineReturnsPartial(t *testing.T) {
	path := writeFixture(t, `{"message":"good"}
not valid json
{"message":"never reached"}
`)

	loader := NewLoader()
	records, err := loader.Load(context.Background(), path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 2")
	// Lines before the failure are still returned.
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Message)
}

func TestLoader_Load_MissingMessage(t *testing.T) {
	path := writeFixture(t, `{"level":"error"}`+"\n")

	loader := NewLoader()
	_, err := loader.Load(context.Background(), path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.jsonl"))

	require.Error(t, err)
}

func TestLoader_Load_CancelledContext(t *testing.T) {
	path := writeFixture(t, `{"message":"one"}`+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader()
	_, err := loader.Load(ctx, path)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want domain.LogLevel
	}{
		{"error", domain.LevelError},
		{"ERROR", domain.LevelError},
		{"warn", domain.LevelWarning},
		{"fatal", domain.LevelCritical},
		{"", domain.LevelInfo},
		{"custom", domain.LogLevel("custom")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestParseTimestamp_Formats(t *testing.T) {
	want := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, want, parseTimestamp("2026-08-01T10:30:00Z"))
	assert.Equal(t, want, parseTimestamp("2026-08-01 10:30:00"))
	assert.True(t, parseTimestamp("not a time").IsZero())
	assert.True(t, parseTimestamp("").IsZero())
}
