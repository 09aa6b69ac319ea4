package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "docs", "paper.pdf")

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{name: "write", event: fsnotify.Event{Name: path, Op: fsnotify.Write}, expected: true},
		{name: "create after rename", event: fsnotify.Event{Name: path, Op: fsnotify.Create}, expected: true},
		{name: "chmod ignored", event: fsnotify.Event{Name: path, Op: fsnotify.Chmod}, expected: false},
		{name: "remove ignored", event: fsnotify.Event{Name: path, Op: fsnotify.Remove}, expected: false},
		{
			name:     "other file ignored",
			event:    fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.pdf"), Op: fsnotify.Write},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, handleEvent(tt.event, path))
		})
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	assert.Equal(t, DefaultDebounce, New(0).debounce)
	assert.Equal(t, time.Second, New(time.Second).debounce)
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w := New(20 * time.Millisecond)
	t.Cleanup(func() { _ = w.Close() })

	var calls atomic.Int32
	require.NoError(t, w.Watch(context.Background(), path, func(string) { calls.Add(1) }))

	// A burst of writes collapses into one notification.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))
	}
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load())
}

func TestWatcher_CloseStopsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w := New(10 * time.Millisecond)
	var calls atomic.Int32
	require.NoError(t, w.Watch(context.Background(), path, func(string) { calls.Add(1) }))
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())

	// Close is idempotent.
	assert.NoError(t, w.Close())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(0)
	err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "paper.pdf"), func(string) {})
	assert.Error(t, err)
}
