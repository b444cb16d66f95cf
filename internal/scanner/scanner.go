// Package scanner builds the corpus view every other tool consumes: all
// parsed localisation files in engine load order, plus the key index.
package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"loclint/internal/cache"
	"loclint/internal/filewalker"
	"loclint/internal/locfile"
	"loclint/internal/textutil"
	"loclint/internal/worker"
)

// Options control a corpus scan.
type Options struct {
	// Recursive walks subdirectories; the engine's localisation dir is
	// flat, so this defaults off.
	Recursive bool
	// Workers bounds concurrent file parsing, one file per task.
	Workers int
	// Cache, when set, skips re-parsing files whose content is unchanged.
	Cache *cache.ScanCache
}

// Corpus is the result of one scan pass. Files are in load order; the
// index insertion order follows it, so the last occurrence of any key is
// the effective one.
type Corpus struct {
	Root  string
	Files []*locfile.File
	Index *locfile.KeyIndex
	// Errors holds per-file failures (undecodable or unreadable files).
	// Those files are skipped; the rest of the corpus still scans.
	Errors []error
}

// Scan walks root (a directory, or a single CSV file), parses every
// localisation file, and assembles the corpus. Read-only: a scan never
// touches the files.
func Scan(ctx context.Context, root string, opts Options) (*Corpus, error) {
	w := filewalker.New(filewalker.CSVExtensions, opts.Recursive)
	entries, err := w.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	paths = locfile.LoadOrder(paths)

	pool := worker.NewPool[string, *locfile.File](opts.Workers,
		func(ctx context.Context, path string) (*locfile.File, error) {
			return parseOne(path, opts.Cache)
		},
	)
	tasks := pool.Execute(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := &Corpus{
		Root:  root,
		Index: locfile.NewKeyIndex(),
	}

	for _, task := range tasks {
		if task.Err != nil {
			log.Warn().Err(task.Err).Str("file", task.Input).Msg("Skipping file")
			corpus.Errors = append(corpus.Errors, task.Err)
			continue
		}
		if task.Result == nil {
			continue
		}
		corpus.Files = append(corpus.Files, task.Result)
	}

	// Tasks come back in input order, which is load order, so a plain
	// append builds the index with the correct winner semantics.
	for _, f := range corpus.Files {
		for _, e := range f.Entries {
			corpus.Index.Add(e.Key, locfile.Occurrence{
				File:  f.Path,
				Line:  e.Line,
				Value: e.Value(),
			})
		}
	}

	log.Debug().
		Int("files", len(corpus.Files)).
		Int("keys", corpus.Index.Len()).
		Int("skipped", len(corpus.Errors)).
		Msg("Scan complete")

	return corpus, nil
}

func parseOne(path string, c *cache.ScanCache) (*locfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read localisation file: %w", err)
	}

	if c != nil {
		hash := textutil.Hash(data)
		if f, ok := c.Get(path, hash); ok {
			return f, nil
		}
		f, err := locfile.Parse(path, data)
		if err != nil {
			return nil, err
		}
		c.Put(path, hash, f)
		return f, nil
	}

	return locfile.Parse(path, data)
}

// EntryCount sums loaded entries across the corpus.
func (c *Corpus) EntryCount() int {
	n := 0
	for _, f := range c.Files {
		n += len(f.Entries)
	}
	return n
}

// ParseViolationCount sums parse-level violations across the corpus.
func (c *Corpus) ParseViolationCount() int {
	n := 0
	for _, f := range c.Files {
		n += len(f.Violations)
	}
	return n
}

// FileNames returns the corpus file paths in load order.
func (c *Corpus) FileNames() []string {
	names := make([]string, len(c.Files))
	for i, f := range c.Files {
		names[i] = f.Path
	}
	return names
}
