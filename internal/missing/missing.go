// Package missing cross-references game-script sources against the
// localisation key index and reports referenced keys with no CSV entry.
// Scripts are read for their lexical reference conventions only, never
// parsed for meaning.
package missing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"loclint/internal/filewalker"
	"loclint/internal/locfile"
	"loclint/internal/worker"
)

// Category buckets a key by the naming convention it follows.
type Category string

const (
	CategoryEvent    Category = "event"
	CategoryDecision Category = "decision"
	CategoryModifier Category = "modifier"
	CategoryOther    Category = "other"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryEvent, CategoryDecision, CategoryModifier, CategoryOther}

// Reference is one localisation key referenced from script source.
type Reference struct {
	Key      string
	File     string
	Line     int
	Category Category
}

// Report lists referenced keys missing from the corpus.
type Report struct {
	Missing []Reference
	// ScriptFiles is the number of script files read.
	ScriptFiles int
	// References is the number of distinct keys the scripts reference.
	References int
}

// Empty reports whether no referenced key is missing.
func (r *Report) Empty() bool {
	return len(r.Missing) == 0
}

// Script reference conventions. Values of title/desc are always keys;
// option names only when identifier-shaped (free-text names exist too).
var (
	titleRe = regexp.MustCompile(`\btitle\s*=\s*"([^"]+)"`)
	descRe  = regexp.MustCompile(`\bdesc\s*=\s*"([^"]+)"`)
	nameRe  = regexp.MustCompile(`\bname\s*=\s*"([^"]+)"`)
	blockRe = regexp.MustCompile(`^\s*([a-z_][a-z0-9_]*)\s*=\s*\{`)
	// topBlockRe matches only unindented blocks; unit files localise
	// their top-level block names directly.
	topBlockRe = regexp.MustCompile(`^([a-z_][a-z0-9_]*)\s*=\s*\{`)
	identRe    = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// structuralBlocks open grouping scopes in script files without naming a
// decision or modifier.
var structuralBlocks = map[string]bool{
	"country_decisions":    true,
	"political_decisions":  true,
	"economic_decisions":   true,
	"military_decisions":   true,
	"diplomatic_decisions": true,
	"internal_decisions":   true,
	"country_event":        true,
	"province_event":       true,
	"option":               true,
	"trigger":              true,
	"potential":            true,
	"allow":                true,
	"effect":               true,
	"ai_will_do":           true,
	"mean_time_to_happen":  true,
	"modifier":             true,
	"limit":                true,
	"picture":              true,
	"alert":                true,
}

// Scan walks scriptsDir, extracts every referenced localisation key, and
// diffs the set against idx. Files extract concurrently, one per task.
func Scan(ctx context.Context, scriptsDir string, idx *locfile.KeyIndex, workers int) (*Report, error) {
	w := filewalker.New(filewalker.ScriptExtensions, true)
	entries, err := w.Walk(scriptsDir)
	if err != nil {
		return nil, fmt.Errorf("walk scripts: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, []Reference](workers,
		func(ctx context.Context, entry filewalker.FileEntry) ([]Reference, error) {
			return ExtractFile(entry.Path)
		},
	)
	tasks := pool.Execute(ctx, entries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	seen := make(map[string]bool)
	missingSeen := make(map[string]bool)

	for _, task := range tasks {
		if task.Err != nil {
			log.Warn().Err(task.Err).Str("file", task.Input.Path).Msg("Skipping script file")
			continue
		}
		report.ScriptFiles++
		for _, ref := range task.Result {
			if !seen[ref.Key] {
				seen[ref.Key] = true
				report.References++
			}
			if idx.Has(ref.Key) || missingSeen[ref.Key] {
				continue
			}
			missingSeen[ref.Key] = true
			report.Missing = append(report.Missing, ref)
		}
	}

	sort.Slice(report.Missing, func(i, j int) bool {
		a, b := report.Missing[i], report.Missing[j]
		if a.Category != b.Category {
			return categoryRank(a.Category) < categoryRank(b.Category)
		}
		return a.Key < b.Key
	})

	return report, nil
}

// ExtractFile pulls every localisation reference out of one script file.
func ExtractFile(path string) ([]Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}
	return Extract(path, data), nil
}

// Extract applies the reference conventions to script content. Deviating
// text is simply invisible, never an error.
func Extract(path string, data []byte) []Reference {
	inDecisions := pathHints(path, "decision")
	inModifiers := pathHints(path, "modifier")
	inUnits := pathHints(path, "units")

	var refs []Reference
	add := func(key string, line int, cat Category) {
		refs = append(refs, Reference{Key: key, File: path, Line: line, Category: cat})
	}

	for i, lineText := range strings.Split(string(data), "\n") {
		n := i + 1
		lineText = strings.TrimRight(lineText, "\r")

		for _, m := range titleRe.FindAllStringSubmatch(lineText, -1) {
			add(m[1], n, Classify(m[1]))
		}
		for _, m := range descRe.FindAllStringSubmatch(lineText, -1) {
			add(m[1], n, Classify(m[1]))
		}
		for _, m := range nameRe.FindAllStringSubmatch(lineText, -1) {
			if identRe.MatchString(m[1]) {
				add(m[1], n, Classify(m[1]))
			}
		}

		if inUnits {
			if m := topBlockRe.FindStringSubmatch(lineText); m != nil && !structuralBlocks[m[1]] {
				add(m[1], n, CategoryOther)
			}
		}

		if !inDecisions && !inModifiers {
			continue
		}
		m := blockRe.FindStringSubmatch(lineText)
		if m == nil || structuralBlocks[m[1]] {
			continue
		}
		if inDecisions {
			add(m[1]+"_title", n, CategoryDecision)
			add(m[1]+"_desc", n, CategoryDecision)
		}
		if inModifiers {
			add(m[1], n, CategoryModifier)
			add("desc_"+m[1], n, CategoryModifier)
		}
	}

	return refs
}

// Classify infers a key's category from its naming convention.
func Classify(key string) Category {
	switch {
	case strings.HasPrefix(key, "EVT"):
		return CategoryEvent
	case strings.HasSuffix(key, "_title"), strings.HasSuffix(key, "_desc"):
		return CategoryDecision
	case strings.HasPrefix(key, "desc_"):
		return CategoryModifier
	default:
		return CategoryOther
	}
}

func categoryRank(c Category) int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return len(Categories)
}

func pathHints(path, hint string) bool {
	return strings.Contains(strings.ToLower(filepath.ToSlash(path)), hint)
}

// WriteStubs writes suggested rows for every missing key, grouped by
// category: key, empty language columns, end marker, in the engine's
// encoding and line endings. The output file is a generated artifact and
// is overwritten freely.
func WriteStubs(path string, report *Report, columns int) error {
	var b strings.Builder
	b.WriteString("# Suggested localisation stubs\n")
	b.WriteString(fmt.Sprintf("# %d missing keys\n", len(report.Missing)))

	byCategory := make(map[Category][]Reference)
	for _, ref := range report.Missing {
		byCategory[ref.Category] = append(byCategory[ref.Category], ref)
	}

	for _, cat := range Categories {
		refs := byCategory[cat]
		if len(refs) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n# %s (%d)\n", cat, len(refs)))
		for _, ref := range refs {
			b.WriteString(StubRow(ref.Key, columns))
			b.WriteString("\n")
		}
	}

	content := locfile.EncodeWindows1252(b.String())
	content = locfile.NormalizeLineEndings(content)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write stub file: %w", err)
	}
	return nil
}

// StubRow renders one stub entry at the target row width.
func StubRow(key string, columns int) string {
	if columns < 2 {
		columns = 2
	}
	fields := make([]string, columns)
	fields[0] = key
	fields[columns-1] = locfile.EndMarker
	return strings.Join(fields, locfile.Delimiter)
}
