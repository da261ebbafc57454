package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branch/diagram"
	"branch/export"
	"branch/importer"
)

func sampleGraph() *diagram.Graph {
	g := diagram.NewGraph(nil)
	a := g.Insert(diagram.Node{ID: "start", X: 30, Y: 30, Width: 120, Height: 160, Prompt: "Hi", Response: "Hello"})
	b := g.Insert(diagram.Node{ID: "next", X: 180, Y: 30, Width: 120, Height: 160, Prompt: "Go on", Response: "Done"})
	g.Connect(a, b)
	return g
}

func TestCheckExtension(t *testing.T) {
	assert.NoError(t, CheckExtension("story.json"))
	assert.NoError(t, CheckExtension("/tmp/dir.json/story.json"))

	for _, path := range []string{"story.txt", "story.JSON", "story.json.bak", "json"} {
		err := CheckExtension(path)
		assert.ErrorIs(t, err, diagram.ErrInvalidFormat, path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	store := New(importer.Options{})

	require.NoError(t, store.Save(path, sampleGraph()))

	g, err := store.Load(path)
	require.NoError(t, err)
	assert.False(t, g.Modified())

	want, err := export.EncodeJSON(sampleGraph())
	require.NoError(t, err)
	got, err := export.EncodeJSON(g)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	store := New(importer.Options{})

	t.Run("wrong extension is rejected before reading", func(t *testing.T) {
		_, err := store.Load(filepath.Join(dir, "missing.txt"))
		assert.ErrorIs(t, err, diagram.ErrInvalidFormat)
		assert.NotErrorIs(t, err, diagram.ErrIOFailure)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.json")
		_, err := store.Load(path)
		assert.ErrorIs(t, err, diagram.ErrIOFailure)
		assert.ErrorIs(t, err, os.ErrNotExist)

		var fileErr *diagram.FileError
		require.True(t, errors.As(err, &fileErr))
		assert.Equal(t, path, fileErr.Path)
		assert.Equal(t, "open", fileErr.Op)
	})

	t.Run("bad content", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("[1, 2]"), 0o644))
		_, err := store.Load(path)
		assert.ErrorIs(t, err, diagram.ErrInvalidFormat)
	})

	t.Run("empty file names the kind once", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err := store.Load(path)
		assert.ErrorIs(t, err, diagram.ErrInvalidFormat)
		assert.Equal(t, 1, strings.Count(err.Error(), diagram.ErrInvalidFormat.Error()), err.Error())
		assert.True(t, strings.HasPrefix(err.Error(), "open "+path+": "), err.Error())
	})
}

func TestSaveErrors(t *testing.T) {
	store := New(importer.Options{})
	path := filepath.Join(t.TempDir(), "no-such-dir", "story.json")

	err := store.Save(path, sampleGraph())
	assert.ErrorIs(t, err, diagram.ErrIOFailure)
}

func TestExport(t *testing.T) {
	store := New(importer.Options{})
	dir := t.TempDir()

	path := filepath.Join(dir, "story.mmd")
	require.NoError(t, store.Export(path, sampleGraph(), export.NewMermaidExporter()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "start --> next")

	err = store.Export(filepath.Join(dir, "empty.png"), diagram.NewGraph(nil), export.NewPNGExporter(0))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "empty.png"))
	assert.True(t, os.IsNotExist(statErr))
}
