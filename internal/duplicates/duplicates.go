// Package duplicates partitions repeated localisation keys into
// within-file and cross-file conflicts and resolves which occurrence the
// engine actually uses.
package duplicates

import (
	"path/filepath"
	"sort"
	"strings"

	"loclint/internal/locfile"
)

// WithinFile is a key repeated inside one file. The engine keeps the
// last row, so every earlier occurrence is removable.
type WithinFile struct {
	File      string
	Key       string
	Keep      locfile.Occurrence
	Removable []locfile.Occurrence
}

// CrossFile is a key defined by two or more files. The winner is the
// last-loaded file's effective row; each other file's effective row is
// shadowed. Intentional marks winners whose file name carries an
// override marker; the classification is advisory, these conflicts are
// never auto-resolved.
type CrossFile struct {
	Key         string
	Winner      locfile.Occurrence
	Shadowed    []locfile.Occurrence
	Intentional bool
}

// Report holds every duplicate key found in one corpus.
type Report struct {
	WithinFile []WithinFile
	CrossFile  []CrossFile
}

// Empty reports whether no duplicates were found.
func (r *Report) Empty() bool {
	return len(r.WithinFile) == 0 && len(r.CrossFile) == 0
}

// Detect partitions the duplicate occurrences of every key in idx. The
// index's insertion order is load order, so the last occurrence of a key
// is always its winner.
func Detect(idx *locfile.KeyIndex) *Report {
	report := &Report{}

	for _, key := range idx.Keys() {
		occs := idx.Get(key)
		if len(occs) < 2 {
			continue
		}

		byFile := make(map[string][]locfile.Occurrence)
		var fileOrder []string
		for _, occ := range occs {
			if _, seen := byFile[occ.File]; !seen {
				fileOrder = append(fileOrder, occ.File)
			}
			byFile[occ.File] = append(byFile[occ.File], occ)
		}

		for _, file := range fileOrder {
			inFile := byFile[file]
			if len(inFile) < 2 {
				continue
			}
			report.WithinFile = append(report.WithinFile, WithinFile{
				File:      file,
				Key:       key,
				Keep:      inFile[len(inFile)-1],
				Removable: inFile[:len(inFile)-1],
			})
		}

		if len(fileOrder) < 2 {
			continue
		}

		winner := occs[len(occs)-1]
		var shadowed []locfile.Occurrence
		for _, file := range fileOrder {
			if file == winner.File {
				continue
			}
			inFile := byFile[file]
			shadowed = append(shadowed, inFile[len(inFile)-1])
		}
		report.CrossFile = append(report.CrossFile, CrossFile{
			Key:         key,
			Winner:      winner,
			Shadowed:    shadowed,
			Intentional: Intentional(winner.File),
		})
	}

	sort.Slice(report.WithinFile, func(i, j int) bool {
		a, b := report.WithinFile[i], report.WithinFile[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Key < b.Key
	})
	sort.Slice(report.CrossFile, func(i, j int) bool {
		return report.CrossFile[i].Key < report.CrossFile[j].Key
	})

	return report
}

// overrideMarkers are file-name fragments that signal a deliberate
// override file.
var overrideMarkers = []string{"fix", "patch", "override", "hotfix"}

// Intentional reports whether a file name looks like a deliberate
// override: a leading-zero load-order prefix or a recognized marker
// fragment.
func Intentional(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(name, "0") {
		return true
	}
	for _, marker := range overrideMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
