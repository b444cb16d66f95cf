package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.Base(e.Path)
	}
	return out
}

func TestWalkFlatDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.csv"))
	touch(t, filepath.Join(dir, "b.CSV"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "c.csv"))

	entries, err := New(CSVExtensions, false).Walk(dir)
	require.NoError(t, err)

	// Extension matching is case-insensitive; subdirectories are
	// skipped without recursion.
	assert.ElementsMatch(t, []string{"a.csv", "b.CSV"}, names(entries))
	for _, e := range entries {
		assert.Equal(t, ".csv", e.Ext)
	}
}

func TestWalkRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.csv"))
	touch(t, filepath.Join(dir, "nested", "deeper", "c.csv"))

	entries, err := New(CSVExtensions, true).Walk(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "c.csv"}, names(entries))
}

func TestWalkSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.csv")
	touch(t, path)

	entries, err := New(CSVExtensions, false).Walk(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".csv", entries[0].Ext)
}

func TestWalkSingleFileWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.md")
	touch(t, path)

	_, err := New(CSVExtensions, false).Walk(path)
	assert.Error(t, err)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := New(CSVExtensions, false).Walk(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
