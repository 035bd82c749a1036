package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Watch_DetectsCreate(t *testing.T) {
	tempDir := t.TempDir()

	w := NewWatcher(tempDir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	testFile := filepath.Join(tempDir, "app.jsonl")
	require.NoError(t, os.WriteFile(testFile, []byte(`{"message":"x"}`+"\n"), 0644))

	select {
	case change := <-changes:
		assert.Equal(t, testFile, change.Path)
		assert.Contains(t, []ChangeType{ChangeCreated, ChangeModified}, change.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_Watch_DetectsModify(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "app.jsonl")
	require.NoError(t, os.WriteFile(testFile, []byte("initial\n"), 0644))

	w := NewWatcher(tempDir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	f, err := os.OpenFile(testFile, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("more\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case change := <-changes:
		assert.Equal(t, testFile, change.Path)
		assert.Equal(t, ChangeModified, change.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_Watch_MissingRoot(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"))

	changes, err := w.Watch(context.Background())

	assert.Error(t, err)
	assert.Nil(t, changes)
	assert.Contains(t, err.Error(), "root path error")
}

func TestWatcher_Watch_ClosesOnContextCancel(t *testing.T) {
	tempDir := t.TempDir()

	w := NewWatcher(tempDir)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	cancel()

	select {
	case _, open := <-changes:
		assert.False(t, open, "channel should be closed after cancel")
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestWatcher_Watch_AfterClose(t *testing.T) {
	w := NewWatcher(t.TempDir())
	require.NoError(t, w.Close())

	changes, err := w.Watch(context.Background())

	assert.Error(t, err)
	assert.Nil(t, changes)
}

func TestWatcher_Close_Idempotent(t *testing.T) {
	w := NewWatcher(t.TempDir())

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestTranslateEvent(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "visible.jsonl")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	tests := []struct {
		name         string
		event        fsnotify.Event
		wantRelevant bool
		wantType     ChangeType
	}{
		{
			name:         "create file",
			event:        fsnotify.Event{Name: existing, Op: fsnotify.Create},
			wantRelevant: true,
			wantType:     ChangeCreated,
		},
		{
			name:         "write file",
			event:        fsnotify.Event{Name: existing, Op: fsnotify.Write},
			wantRelevant: true,
			wantType:     ChangeModified,
		},
		{
			name:         "remove file",
			event:        fsnotify.Event{Name: existing, Op: fsnotify.Remove},
			wantRelevant: true,
			wantType:     ChangeDeleted,
		},
		{
			name:         "rename file",
			event:        fsnotify.Event{Name: existing, Op: fsnotify.Rename},
			wantRelevant: true,
			wantType:     ChangeDeleted,
		},
		{
			name:         "hidden file ignored",
			event:        fsnotify.Event{Name: filepath.Join(tempDir, ".hidden"), Op: fsnotify.Write},
			wantRelevant: false,
		},
		{
			name:         "chmod ignored",
			event:        fsnotify.Event{Name: existing, Op: fsnotify.Chmod},
			wantRelevant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, relevant := translateEvent(tt.event)
			assert.Equal(t, tt.wantRelevant, relevant)
			if tt.wantRelevant {
				assert.Equal(t, tt.wantType, change.Type)
				assert.Equal(t, tt.event.Name, change.Path)
			}
		})
	}
}

func TestTranslateEvent_CreatedDirectoryIgnored(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0755))

	_, relevant := translateEvent(fsnotify.Event{Name: subDir, Op: fsnotify.Create})

	assert.False(t, relevant)
}
