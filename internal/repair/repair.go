// Package repair rewrites localisation files to satisfy the structural
// rules: row width, end marker, encoding, line endings, blank rows, and
// within-file duplicate removal. Cross-file conflicts are reported by
// the duplicate detector but never auto-resolved here.
package repair

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"loclint/internal/cache"
	"loclint/internal/locfile"
	"loclint/internal/validate"
)

// BackupSuffix is appended to the original path before a rewrite.
const BackupSuffix = ".bak"

// RepairableKinds lists every violation kind the repairer can fix.
var RepairableKinds = []locfile.ViolationKind{
	locfile.ColumnCountMismatch,
	locfile.MissingEndMarker,
	locfile.BadEncoding,
	locfile.BadLineEnding,
	locfile.EmptyLine,
	locfile.DuplicateKeyWithinFile,
}

// Options control what a Repairer fixes and how.
type Options struct {
	// Columns is the target row width, key and end marker included.
	Columns int
	// Kinds selects the violation kinds to fix. Empty means every
	// repairable kind.
	Kinds map[locfile.ViolationKind]bool
	// DryRun computes every change and returns the summary without
	// touching disk.
	DryRun bool
	// NoBackup skips the backup copy. Off by default; repairs are
	// destructive without it.
	NoBackup bool
	// Cache, when set, is invalidated for every rewritten file.
	Cache *cache.ScanCache
}

// Action describes one change made (or planned, in dry-run) to a file.
// Line 0 means the action covers the whole file.
type Action struct {
	Line   int
	Kind   locfile.ViolationKind
	Detail string
}

// Result summarizes the repair of one file. Changed false means the
// file already satisfied every selected rule and nothing was written.
type Result struct {
	Path    string
	Actions []Action
	Changed bool
	Backup  string
	DryRun  bool
}

// Repairer applies the selected fixes file by file.
type Repairer struct {
	opts Options
}

// New creates a Repairer. A zero column target falls back to the
// project standard.
func New(opts Options) *Repairer {
	if opts.Columns <= 0 {
		opts.Columns = validate.DefaultColumns
	}
	if len(opts.Kinds) == 0 {
		opts.Kinds = make(map[locfile.ViolationKind]bool, len(RepairableKinds))
		for _, k := range RepairableKinds {
			opts.Kinds[k] = true
		}
	}
	return &Repairer{opts: opts}
}

func (r *Repairer) want(kind locfile.ViolationKind) bool {
	return r.opts.Kinds[kind]
}

// Repair rewrites one file in place. Running it again on its own output
// is a no-op. The original is copied to a .bak sibling first; an
// existing backup fails the file with BackupExistsError and leaves the
// original untouched.
func (r *Repairer) Repair(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out, actions, err := r.rewrite(data)
	if err != nil {
		if encErr, ok := err.(*locfile.UnsupportedEncodingError); ok {
			encErr.File = path
		}
		return nil, err
	}

	result := &Result{
		Path:    path,
		Actions: actions,
		Changed: !bytes.Equal(out, data),
		DryRun:  r.opts.DryRun,
	}
	if !result.Changed || r.opts.DryRun {
		return result, nil
	}

	if !r.opts.NoBackup {
		backup := path + BackupSuffix
		if _, err := os.Stat(backup); err == nil {
			return nil, &locfile.BackupExistsError{File: path, Backup: backup}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat backup %s: %w", backup, err)
		}
		if err := os.WriteFile(backup, data, 0o644); err != nil {
			return nil, fmt.Errorf("write backup %s: %w", backup, err)
		}
		result.Backup = backup
	}

	if err := writeFileAtomic(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if r.opts.Cache != nil {
		r.opts.Cache.Invalidate(path)
	}
	return result, nil
}

// rewrite computes the repaired content for raw file bytes.
func (r *Repairer) rewrite(data []byte) ([]byte, []Action, error) {
	enc := locfile.DetectEncoding(data)
	if enc == locfile.EncodingUnknown {
		return nil, nil, &locfile.UnsupportedEncodingError{Detail: "binary content"}
	}

	fixEncoding := r.want(locfile.BadEncoding)
	fixEndings := r.want(locfile.BadLineEnding)
	fixColumns := r.want(locfile.ColumnCountMismatch) || r.want(locfile.MissingEndMarker)
	fixEmpty := r.want(locfile.EmptyLine)
	fixDuplicates := r.want(locfile.DuplicateKeyWithinFile)

	// Line endings alone need no decoding at all: normalize terminators
	// on the raw bytes and leave every content byte exactly as found.
	if fixEndings && !fixEncoding && !fixColumns && !fixEmpty && !fixDuplicates {
		out := locfile.NormalizeLineEndings(data)
		if len(out) > 0 && !bytes.HasSuffix(out, []byte("\n")) {
			out = append(out, locfile.LineEndingCRCRLF.Terminator()...)
		}
		var actions []Action
		if !bytes.Equal(out, data) {
			actions = append(actions, Action{Kind: locfile.BadLineEnding, Detail: "normalized line terminators"})
		}
		return out, actions, nil
	}

	f, err := locfile.Parse("", data)
	if err != nil {
		return nil, nil, err
	}

	var actions []Action

	// Within-file duplicates: the engine keeps the last row, so every
	// earlier row with the same key becomes a comment marker.
	duplicateOf := make(map[int]duplicateNote)
	if fixDuplicates {
		lastLine := make(map[string]int)
		for _, e := range f.Entries {
			lastLine[e.Key] = e.Line
		}
		for _, e := range f.Entries {
			if keep := lastLine[e.Key]; keep != e.Line {
				duplicateOf[e.Line] = duplicateNote{key: e.Key, keep: keep}
			}
		}
	}

	writeBOM := enc == locfile.EncodingUTF8BOM && !fixEncoding
	endingsChanged := 0
	encodedRows := 0

	var out bytes.Buffer
	if writeBOM {
		out.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	for i, line := range f.Lines {
		n := i + 1

		ending := line.Ending
		if fixEndings {
			ending = locfile.LineEndingCRCRLF
		}
		if ending != line.Ending {
			endingsChanged++
		}

		if line.DecodeErr && !fixEncoding {
			// Untrustworthy bytes stay verbatim unless we are allowed to
			// transcode them.
			out.Write(line.Raw)
			out.Write(ending.Terminator())
			continue
		}

		text := line.Text
		fields := locfile.SplitRow(text)
		contentChanged := line.DecodeErr

		switch {
		case locfile.IsBlankRow(fields):
			if fixEmpty {
				actions = append(actions, Action{
					Line:   n,
					Kind:   locfile.EmptyLine,
					Detail: "removed blank row",
				})
				continue
			}
		case locfile.IsCommentRow(text):
			// Comments pass through untouched.
		default:
			if note, dup := duplicateOf[n]; dup {
				text = fmt.Sprintf("# %s removed - duplicate of line %d", note.key, note.keep)
				contentChanged = true
				actions = append(actions, Action{
					Line:   n,
					Kind:   locfile.DuplicateKeyWithinFile,
					Detail: fmt.Sprintf("%s duplicates line %d", note.key, note.keep),
				})
			} else if fixColumns {
				fixed, kind, changed := fixRowColumns(fields, r.opts.Columns)
				if changed {
					detail := fmt.Sprintf("row width %d adjusted to %d", len(fields), r.opts.Columns)
					if kind == locfile.MissingEndMarker {
						detail = "end marker restored"
					}
					actions = append(actions, Action{Line: n, Kind: kind, Detail: detail})
					text = strings.Join(fixed, locfile.Delimiter)
					contentChanged = true
				}
			}
		}

		var content []byte
		switch {
		case fixEncoding:
			content = locfile.EncodeWindows1252(text)
			if line.DecodeErr {
				encodedRows++
			}
		case contentChanged:
			content = encodeAs(text, enc)
		default:
			content = line.Raw
		}

		out.Write(content)
		out.Write(ending.Terminator())
	}

	if fixEncoding && enc != locfile.EncodingWindows1252 {
		detail := fmt.Sprintf("re-encoded %s content to %s", enc, locfile.EncodingWindows1252)
		if encodedRows > 0 {
			detail = fmt.Sprintf("%s (%d rows with replacement characters)", detail, encodedRows)
		}
		actions = append(actions, Action{Kind: locfile.BadEncoding, Detail: detail})
	}
	if endingsChanged > 0 {
		actions = append(actions, Action{
			Kind:   locfile.BadLineEnding,
			Detail: fmt.Sprintf("normalized %d line terminators", endingsChanged),
		})
	}
	if fixEndings {
		b := out.Bytes()
		if len(b) > 0 && !bytes.HasSuffix(b, []byte("\n")) {
			out.Write(locfile.LineEndingCRCRLF.Terminator())
		}
	}

	return out.Bytes(), actions, nil
}

type duplicateNote struct {
	key  string
	keep int
}

// encodeAs renders decoded text back under the file's own encoding, for
// rewrites that are not re-encoding the file.
func encodeAs(text string, enc locfile.Encoding) []byte {
	if enc == locfile.EncodingWindows1252 {
		return locfile.EncodeWindows1252(text)
	}
	return []byte(text)
}

// fixRowColumns adjusts one data row to the target width. Width already
// right: restore the end marker if it is missing. Too wide: truncate and
// terminate. Too narrow: drop a trailing marker if present, pad with
// empty fields, re-append the marker.
func fixRowColumns(fields []string, target int) ([]string, locfile.ViolationKind, bool) {
	switch {
	case len(fields) == target:
		if last, _ := locfile.LastMeaningfulField(fields); last == locfile.EndMarker {
			return fields, "", false
		}
		fixed := make([]string, target)
		copy(fixed, fields)
		fixed[target-1] = locfile.EndMarker
		return fixed, locfile.MissingEndMarker, true

	case len(fields) > target:
		fixed := make([]string, target)
		copy(fixed, fields[:target])
		fixed[target-1] = locfile.EndMarker
		return fixed, locfile.ColumnCountMismatch, true

	default:
		trimmed := fields
		if strings.TrimSpace(fields[len(fields)-1]) == locfile.EndMarker {
			trimmed = fields[:len(fields)-1]
		}
		fixed := make([]string, 0, target)
		fixed = append(fixed, trimmed...)
		for len(fixed) < target-1 {
			fixed = append(fixed, "")
		}
		fixed = append(fixed, locfile.EndMarker)
		return fixed, locfile.ColumnCountMismatch, true
	}
}
