package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/linuxstory/internal/env"
)

func testConfig() Config {
	return Config{Settle: 30 * time.Millisecond, MaxSettle: 300 * time.Millisecond, MaxContent: 16}
}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(root, testConfig(), nil)
	require.NoError(t, err)
	w.Start(context.Background())
	t.Cleanup(func() { w.Close() })
	return w
}

// collect drains until pred holds for the accumulated final state.
func collect(t *testing.T, w *Watcher, pred func(map[string]env.FileChange) bool) map[string]env.FileChange {
	t.Helper()
	var delta env.Delta
	final := map[string]env.FileChange{}
	require.Eventually(t, func() bool {
		delta = append(delta, w.Drain()...)
		final = map[string]env.FileChange{}
		for _, c := range delta.Final() {
			final[c.Path] = c
		}
		return pred(final)
	}, 3*time.Second, 10*time.Millisecond)
	return final
}

func TestDrainRecordsCreateWithContent(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644))

	final := collect(t, w, func(m map[string]env.FileChange) bool {
		return string(m["notes.txt"].Content) == "hello"
	})
	assert.Equal(t, env.OpCreated, final["notes.txt"].Op)

	// Drained changes are not reported twice.
	assert.Empty(t, w.Drain())
}

func TestDrainCapsContent(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "big"), []byte("0123456789abcdefXYZ"), 0o644))

	final := collect(t, w, func(m map[string]env.FileChange) bool {
		return len(m["big"].Content) > 0
	})
	assert.Equal(t, "0123456789abcdef", string(final["big"].Content))
}

func TestDrainRecordsRemove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "dog")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	w := startWatcher(t, root)

	require.NoError(t, os.Remove(path))

	final := collect(t, w, func(m map[string]env.FileChange) bool {
		return m["dog"].Op == env.OpRemoved
	})
	assert.Empty(t, env.Delta{final["dog"]}.Present())
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "town", ".hidden-shelter"), 0o755))
	collect(t, w, func(m map[string]env.FileChange) bool {
		_, ok := m["town/.hidden-shelter"]
		return ok
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, "town", ".hidden-shelter", "dog"), []byte("ruff"), 0o644))
	collect(t, w, func(m map[string]env.FileChange) bool {
		return string(m["town/.hidden-shelter/dog"].Content) == "ruff"
	})
}

func TestDiscard(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "setup"), []byte("x"), 0o644))
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending) > 0
	}, 3*time.Second, 10*time.Millisecond)

	w.Discard()
	assert.Empty(t, w.Drain())
}

func TestCloseStopsGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	w, err := New(root, testConfig(), nil)
	require.NoError(t, err)
	w.Start(context.Background())
	w.Start(context.Background())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestCloseWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), testConfig(), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
