package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"loclint/internal/duplicates"
	"loclint/internal/locfile"
	"loclint/internal/report"
	"loclint/internal/validate"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-check the corpus whenever a localisation file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(a, targetPath(a, args))
		},
	}
}

// runWatch handles the `watch` command. It never exits on its own;
// stop it with SIGINT or SIGTERM.
func runWatch(a *app, path string) error {
	ctx, cancel := setupContext()
	defer cancel()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, abs, a.cfg.Recursive); err != nil {
		return err
	}

	debounce := time.Duration(a.cfg.WatchDebounceMS) * time.Millisecond
	rescan := make(chan struct{}, 1)
	var mu sync.Mutex
	var timer *time.Timer

	// Editors fire bursts of events per save; collapse each burst
	// into one rescan.
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			select {
			case rescan <- struct{}{}:
			default:
			}
		})
	}

	log.Info().Str("path", abs).Dur("debounce", debounce).Msg("Watching for changes")
	watchPass(ctx, a, abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 && a.cfg.Recursive {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watcher.Add(ev.Name); err != nil {
						log.Warn().Err(err).Str("dir", ev.Name).Msg("Failed to watch new directory")
					}
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Change detected")
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		case <-rescan:
			watchPass(ctx, a, abs)
		}
	}
}

// addWatchDirs registers the corpus root, and every subdirectory when
// recursive, with the watcher.
func addWatchDirs(watcher *fsnotify.Watcher, root string, recursive bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}
	if !info.IsDir() {
		// Watching a single file misses editors that replace it;
		// watch its directory instead.
		root = filepath.Dir(root)
	}

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !recursive {
		return nil
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable directory")
			return nil
		}
		if !info.IsDir() || path == root {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			log.Warn().Err(err).Str("dir", path).Msg("Failed to watch directory")
		}
		return nil
	})
}

// watchPass runs one scan + check + duplicates cycle. Failures are
// logged and the watch continues.
func watchPass(ctx context.Context, a *app, path string) {
	start := time.Now()

	corpus, err := a.scanCorpus(ctx, path)
	if err != nil {
		log.Error().Err(err).Msg("Rescan failed")
		return
	}

	vcfg := a.validateConfig()
	var violations []locfile.Violation
	for _, f := range corpus.Files {
		violations = append(violations, validate.Check(f, vcfg)...)
	}
	dupReport := duplicates.Detect(corpus.Index)

	out, format, err := a.openReport()
	if err != nil {
		log.Error().Err(err).Msg("Report destination unavailable")
		return
	}
	defer out.Close()
	rep := report.New(out, format)
	rep.Summary(corpus)
	rep.Violations(violations)
	rep.Duplicates(dupReport)

	log.Info().
		Int("files", len(corpus.Files)).
		Int("violations", len(violations)).
		Int("duplicate_keys", len(dupReport.WithinFile)+len(dupReport.CrossFile)).
		Dur("took", time.Since(start)).
		Msg("Corpus checked")
}
