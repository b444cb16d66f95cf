// Package report renders human-readable plain text and Markdown reports
// for every tool in the kit.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"loclint/internal/duplicates"
	"loclint/internal/locfile"
	"loclint/internal/missing"
	"loclint/internal/repair"
	"loclint/internal/scanner"
	"loclint/internal/textutil"
	"loclint/internal/validate"
)

// Format selects a rendering style.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Writer renders report sections to one destination.
type Writer struct {
	w      io.Writer
	format Format
}

// New creates a report writer.
func New(w io.Writer, format Format) *Writer {
	if format == "" {
		format = FormatText
	}
	return &Writer{w: w, format: format}
}

// Summary renders the corpus overview.
func (w *Writer) Summary(c *scanner.Corpus) {
	w.heading("Corpus summary")
	w.table(
		[]string{"Files", "Entries", "Keys", "Skipped"},
		[][]string{{
			fmt.Sprintf("%d", len(c.Files)),
			fmt.Sprintf("%d", c.EntryCount()),
			fmt.Sprintf("%d", c.Index.Len()),
			fmt.Sprintf("%d", len(c.Errors)),
		}},
	)
	for _, err := range c.Errors {
		fmt.Fprintf(w.w, "skipped: %v\n", err)
	}
	if len(c.Errors) > 0 {
		fmt.Fprintln(w.w)
	}
}

// Files renders per-file detail for verbose scans.
func (w *Writer) Files(c *scanner.Corpus) {
	w.heading("Files")
	rows := make([][]string, 0, len(c.Files))
	for _, f := range c.Files {
		rows = append(rows, []string{
			f.Path,
			fmt.Sprintf("%d", len(f.Entries)),
			fmt.Sprintf("%d", f.DeclaredColumns),
			f.Encoding.String(),
			f.LineEnding.String(),
		})
	}
	w.table([]string{"File", "Entries", "Columns", "Encoding", "Line ending"}, rows)
}

// LoadOrder renders corpus files by override priority. The first file
// listed wins every key conflict.
func (w *Writer) LoadOrder(names []string) {
	w.heading("Load order (override priority, winner first)")
	for i, name := range names {
		fmt.Fprintf(w.w, "%3d. %s\n", i+1, name)
	}
	fmt.Fprintln(w.w)
}

// Violations renders the rule-check results: a per-kind table followed
// by every finding.
func (w *Writer) Violations(violations []locfile.Violation) {
	w.heading("Violations")
	if len(violations) == 0 {
		fmt.Fprintln(w.w, "No violations found.")
		fmt.Fprintln(w.w)
		return
	}

	counts := validate.CountByKind(violations)
	files := make(map[locfile.ViolationKind]map[string]bool)
	for _, v := range violations {
		if files[v.Kind] == nil {
			files[v.Kind] = make(map[string]bool)
		}
		files[v.Kind][v.File] = true
	}

	var rows [][]string
	for _, kind := range locfile.Kinds {
		if counts[kind] == 0 {
			continue
		}
		rows = append(rows, []string{
			string(kind),
			fmt.Sprintf("%d", counts[kind]),
			fmt.Sprintf("%d", len(files[kind])),
		})
	}
	w.table([]string{"Kind", "Count", "Files"}, rows)

	for _, v := range violations {
		fmt.Fprintf(w.w, "%s: %s: %s\n", w.loc(v.File, v.Line), v.Kind, v.Detail)
	}
	fmt.Fprintln(w.w)
}

// Duplicates renders within-file and cross-file duplicate keys with the
// resolved winner of every conflict.
func (w *Writer) Duplicates(rep *duplicates.Report) {
	w.heading("Duplicate keys")
	if rep.Empty() {
		fmt.Fprintln(w.w, "No duplicate keys found.")
		fmt.Fprintln(w.w)
		return
	}

	if len(rep.WithinFile) > 0 {
		rows := make([][]string, 0, len(rep.WithinFile))
		for _, d := range rep.WithinFile {
			removable := make([]string, len(d.Removable))
			for i, occ := range d.Removable {
				removable[i] = fmt.Sprintf("%d", occ.Line)
			}
			rows = append(rows, []string{
				d.Key,
				d.File,
				fmt.Sprintf("%d", d.Keep.Line),
				strings.Join(removable, ", "),
			})
		}
		w.subheading(fmt.Sprintf("Within-file (%d)", len(rep.WithinFile)))
		w.table([]string{"Key", "File", "Keeps line", "Removable lines"}, rows)
	}

	if len(rep.CrossFile) > 0 {
		rows := make([][]string, 0, len(rep.CrossFile))
		for _, d := range rep.CrossFile {
			shadowed := make([]string, len(d.Shadowed))
			for i, occ := range d.Shadowed {
				shadowed[i] = w.loc(occ.File, occ.Line)
			}
			class := "accidental"
			if d.Intentional {
				class = "intentional"
			}
			rows = append(rows, []string{
				d.Key,
				w.loc(d.Winner.File, d.Winner.Line),
				textutil.Truncate(d.Winner.Value, 40),
				strings.Join(shadowed, ", "),
				class,
			})
		}
		w.subheading(fmt.Sprintf("Cross-file (%d, never auto-resolved)", len(rep.CrossFile)))
		w.table([]string{"Key", "Winner", "Effective value", "Shadowed", "Looks"}, rows)
	}
}

// Missing renders referenced keys with no corpus entry, grouped by
// category.
func (w *Writer) Missing(rep *missing.Report) {
	w.heading("Missing localisation keys")
	fmt.Fprintf(w.w, "%d script files, %d referenced keys, %d missing\n\n",
		rep.ScriptFiles, rep.References, len(rep.Missing))
	if rep.Empty() {
		return
	}

	rows := make([][]string, 0, len(rep.Missing))
	for _, ref := range rep.Missing {
		rows = append(rows, []string{
			string(ref.Category),
			ref.Key,
			w.loc(ref.File, ref.Line),
		})
	}
	w.table([]string{"Category", "Key", "Referenced at"}, rows)
}

// Repairs renders what the repairer did, or would do in dry-run.
func (w *Writer) Repairs(results []*repair.Result) {
	w.heading("Repairs")

	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
	}
	fmt.Fprintf(w.w, "%d files examined, %d needing changes\n\n", len(results), changed)

	for _, res := range results {
		if !res.Changed {
			continue
		}
		verb := "applied"
		if res.DryRun {
			verb = "planned (dry-run)"
		}
		fmt.Fprintf(w.w, "%s: %d changes %s\n", res.Path, len(res.Actions), verb)
		if res.Backup != "" {
			fmt.Fprintf(w.w, "  backup: %s\n", res.Backup)
		}
		for _, a := range res.Actions {
			if a.Line > 0 {
				fmt.Fprintf(w.w, "  line %d: %s: %s\n", a.Line, a.Kind, a.Detail)
			} else {
				fmt.Fprintf(w.w, "  %s: %s\n", a.Kind, a.Detail)
			}
		}
	}
	if changed > 0 {
		fmt.Fprintln(w.w)
	}
}

func (w *Writer) heading(text string) {
	if w.format == FormatMarkdown {
		fmt.Fprintf(w.w, "## %s\n\n", text)
		return
	}
	fmt.Fprintf(w.w, "%s\n%s\n", text, strings.Repeat("=", len(text)))
}

func (w *Writer) subheading(text string) {
	if w.format == FormatMarkdown {
		fmt.Fprintf(w.w, "### %s\n\n", text)
		return
	}
	fmt.Fprintf(w.w, "%s\n", text)
}

func (w *Writer) table(headers []string, rows [][]string) {
	if w.format == FormatMarkdown {
		fmt.Fprintf(w.w, "| %s |\n", strings.Join(headers, " | "))
		fmt.Fprintf(w.w, "|%s\n", strings.Repeat(" --- |", len(headers)))
		for _, row := range rows {
			fmt.Fprintf(w.w, "| %s |\n", strings.Join(row, " | "))
		}
		fmt.Fprintln(w.w)
		return
	}

	tw := tabwriter.NewWriter(w.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
	fmt.Fprintln(w.w)
}

func (w *Writer) loc(file string, line int) string {
	if line <= 0 {
		return file
	}
	return fmt.Sprintf("%s:%d", file, line)
}
