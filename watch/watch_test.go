package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New(path, 20*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return &calls
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	calls := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": {}}`), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresSameContentAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	calls := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))
	assert.Never(t, func() bool { return calls.Load() > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestSyncAcceptsOwnSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	var calls atomic.Int32
	w, err := New(path, 50*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"saved": {}}`), 0o644))
	w.Sync()
	assert.Never(t, func() bool { return calls.Load() > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "story.json"), time.Millisecond, func() {}, nil)
	assert.Error(t, err)
}

func TestNoChangeReportedAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	var calls atomic.Int32
	w, err := New(path, time.Hour, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {}}`), 0o644))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	w.check()
	assert.Zero(t, calls.Load())
}

func TestCloseWaitsForRunningCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	started := make(chan struct{})
	release := make(chan struct{})
	w, err := New(path, time.Hour, func() {
		close(started)
		<-release
	}, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {}}`), 0o644))

	go w.check()
	<-started

	closed := make(chan struct{})
	go func() {
		w.Close()
		close(closed)
	}()
	assert.Never(t, func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 10*time.Millisecond)

	close(release)
	assert.Eventually(t, func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
