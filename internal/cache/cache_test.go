package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loclint/internal/locfile"
)

func TestScanCache(t *testing.T) {
	c := NewScanCache()
	f := &locfile.File{Path: "a.csv", Hash: "h1"}

	_, ok := c.Get("a.csv", "h1")
	assert.False(t, ok)

	c.Put("a.csv", "h1", f)
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get("a.csv", "h1")
	require.True(t, ok)
	assert.Same(t, f, got)

	// A different content hash is a miss: the file changed on disk.
	_, ok = c.Get("a.csv", "h2")
	assert.False(t, ok)
}

func TestScanCacheInvalidate(t *testing.T) {
	c := NewScanCache()
	c.Put("a.csv", "h1", &locfile.File{Path: "a.csv"})
	c.Put("b.csv", "h2", &locfile.File{Path: "b.csv"})

	c.Invalidate("a.csv")

	_, ok := c.Get("a.csv", "h1")
	assert.False(t, ok)
	_, ok = c.Get("b.csv", "h2")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}
