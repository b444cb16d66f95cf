// Package validate applies the structural rules of the localisation
// format to parsed files. Purely analytical; violations are reported,
// never fixed here.
package validate

import (
	"fmt"

	"loclint/internal/locfile"
)

// DefaultColumns is the project's adopted standard row width, key and
// end marker included. The corpus has carried two conflicting historical
// conventions (14 and 19), which is why the target is always explicit
// configuration and never inferred from a file.
const DefaultColumns = 14

// Config fixes the structural targets rows are checked against.
type Config struct {
	Columns    int
	Encoding   locfile.Encoding
	LineEnding locfile.LineEnding
}

// DefaultConfig returns the engine's canonical targets.
func DefaultConfig() Config {
	return Config{
		Columns:    DefaultColumns,
		Encoding:   locfile.EncodingWindows1252,
		LineEnding: locfile.LineEndingCRCRLF,
	}
}

// Check applies every rule to f and returns all violations found,
// including the parse-level findings recorded by the scanner. Rules are
// independent: one row can break several at once.
func Check(f *locfile.File, cfg Config) []locfile.Violation {
	var out []locfile.Violation
	out = append(out, f.Violations...)

	if f.Encoding != cfg.Encoding {
		out = append(out, locfile.Violation{
			Kind:   locfile.BadEncoding,
			File:   f.Path,
			Detail: fmt.Sprintf("file encoding is %s, target is %s", f.Encoding, cfg.Encoding),
		})
	}

	for i, line := range f.Lines {
		n := i + 1

		if line.Ending != cfg.LineEnding {
			detail := fmt.Sprintf("line ending is %s, target is %s", line.Ending, cfg.LineEnding)
			if line.Ending == locfile.LineEndingNone {
				detail = "missing line terminator"
			}
			out = append(out, locfile.Violation{
				Kind:   locfile.BadLineEnding,
				File:   f.Path,
				Line:   n,
				Detail: detail,
			})
		}

		if line.DecodeErr {
			// Already reported as a parse violation; the row's content
			// is not trustworthy enough for field checks.
			continue
		}
		if locfile.IsCommentRow(line.Text) {
			continue
		}

		fields := locfile.SplitRow(line.Text)
		if locfile.IsBlankRow(fields) {
			out = append(out, locfile.Violation{
				Kind:   locfile.EmptyLine,
				File:   f.Path,
				Line:   n,
				Detail: "row has no content; blank rows shift key positions in the loader",
			})
			continue
		}

		if len(fields) != cfg.Columns {
			out = append(out, locfile.Violation{
				Kind:   locfile.ColumnCountMismatch,
				File:   f.Path,
				Line:   n,
				Detail: fmt.Sprintf("row has %d fields, target is %d", len(fields), cfg.Columns),
			})
		}

		if last, _ := locfile.LastMeaningfulField(fields); last != locfile.EndMarker {
			out = append(out, locfile.Violation{
				Kind:   locfile.MissingEndMarker,
				File:   f.Path,
				Line:   n,
				Detail: fmt.Sprintf("last field is %q, expected %q", last, locfile.EndMarker),
			})
		}
	}

	return out
}

// CountByKind tallies violations for summary reporting.
func CountByKind(violations []locfile.Violation) map[locfile.ViolationKind]int {
	counts := make(map[locfile.ViolationKind]int)
	for _, v := range violations {
		counts[v.Kind]++
	}
	return counts
}
