package cache

import (
	"sync"

	"loclint/internal/locfile"
)

// ScanCache keeps parsed localisation files keyed by path and content
// hash, so watch-mode rescans only re-parse files that actually changed.
type ScanCache struct {
	mu    sync.RWMutex
	files map[string]cachedFile
}

type cachedFile struct {
	hash string
	file *locfile.File
}

// NewScanCache creates an empty cache.
func NewScanCache() *ScanCache {
	return &ScanCache{files: make(map[string]cachedFile)}
}

// Get returns the cached parse of path if its content hash still
// matches.
func (c *ScanCache) Get(path, hash string) (*locfile.File, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.files[path]
	if !ok || entry.hash != hash {
		return nil, false
	}
	return entry.file, true
}

// Put stores a parsed file under its path and content hash.
func (c *ScanCache) Put(path, hash string, f *locfile.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = cachedFile{hash: hash, file: f}
}

// Invalidate drops the cached parse for path, if any. The repairer calls
// this after rewriting a file.
func (c *ScanCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

// Len returns the number of cached files.
func (c *ScanCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}
