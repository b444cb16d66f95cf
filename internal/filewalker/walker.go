package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// CSVExtensions selects localisation corpus files.
var CSVExtensions = map[string]bool{
	".csv": true,
}

// ScriptExtensions selects game-script source files.
var ScriptExtensions = map[string]bool{
	".txt": true,
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	Ext  string
}

// Walker discovers files with a fixed extension set under a root.
type Walker struct {
	extensions map[string]bool
	recursive  bool
}

// New creates a Walker. With recursive false only the root directory
// itself is searched.
func New(extensions map[string]bool, recursive bool) *Walker {
	return &Walker{extensions: extensions, recursive: recursive}
}

// Walk discovers all matching files under root. Root may also be a
// single file, which is returned as the only entry if its extension
// matches. Unreadable paths are logged and skipped, never fatal.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		ext := strings.ToLower(filepath.Ext(root))
		if !w.extensions[ext] {
			return nil, fmt.Errorf("unsupported file type: %s", root)
		}
		return []FileEntry{{Path: root, Ext: ext}}, nil
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			if !w.recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !w.extensions[ext] {
			return nil
		}

		entries = append(entries, FileEntry{Path: path, Ext: ext})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Debug().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}
