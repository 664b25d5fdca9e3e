package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToKey(t *testing.T) {
	c := New(map[string]string{"intro.title": "Waking Up"})

	assert.Equal(t, "Waking Up", c.Resolve("intro.title"))
	assert.Equal(t, "town.title", c.Resolve("town.title"))
	assert.True(t, c.Has("intro.title"))
	assert.False(t, c.Has("town.title"))
}

func TestNewCopiesBase(t *testing.T) {
	base := map[string]string{"k": "v"}
	c := New(base)
	base["k"] = "changed"
	assert.Equal(t, "v", c.Resolve("k"))
}

func TestMergeOverrides(t *testing.T) {
	c := New(map[string]string{"a": "1", "b": "2"})
	c.Merge(map[string]string{"b": "two", "c": "3"})

	assert.Equal(t, "1", c.Resolve("a"))
	assert.Equal(t, "two", c.Resolve("b"))
	assert.Equal(t, "3", c.Resolve("c"))
	assert.Equal(t, 3, c.Len())
}

func TestMissing(t *testing.T) {
	c := New(map[string]string{"a": "1"})
	assert.Equal(t, []string{"b", "c"}, c.Missing([]string{"c", "a", "b", "c"}))
	assert.Empty(t, c.Missing([]string{"a"}))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intro.title: Réveil\ntown.title: \"En ville\"\n"), 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"intro.title": "Réveil", "town.title": "En ville"}, got)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- just\n- a list\n"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "parse strings file")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
