package locfile

import (
	"fmt"
	"os"
	"strings"

	"loclint/internal/textutil"
)

// Delimiter splits fields. The format has no quoting; a semicolon is
// always a field boundary.
const Delimiter = ";"

// EndMarker is the literal terminating each row.
const EndMarker = "x"

// ParseFile reads and parses a single localisation CSV file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read localisation file: %w", err)
	}
	return Parse(path, data)
}

// Parse parses raw localisation CSV content. Undecodable rows are
// recorded as violations and skipped; the rest of the file still parses.
// Content that decodes under no candidate encoding fails with
// UnsupportedEncodingError.
func Parse(path string, data []byte) (*File, error) {
	enc := DetectEncoding(data)
	if enc == EncodingUnknown {
		return nil, &UnsupportedEncodingError{File: path, Detail: "binary content"}
	}

	body := data
	if enc == EncodingUTF8BOM {
		body = textutil.StripBOM(data)
	}

	f := &File{
		Path:     path,
		Encoding: enc,
		Hash:     textutil.Hash(data),
		Lines:    SplitLines(body),
	}
	f.LineEnding = DetectLineEnding(f.Lines)

	for i := range f.Lines {
		line := &f.Lines[i]
		text, ok := DecodeLine(line.Raw, enc)
		line.Text = text
		if !ok {
			line.DecodeErr = true
			perr := &ParseError{File: path, Line: i + 1, Reason: "row is not valid " + enc.String()}
			f.Violations = append(f.Violations, Violation{
				Kind:   BadEncoding,
				File:   path,
				Line:   i + 1,
				Detail: perr.Reason,
			})
			continue
		}

		fields := SplitRow(text)
		if IsBlankRow(fields) || IsCommentRow(text) {
			continue
		}
		if f.DeclaredColumns == 0 {
			f.DeclaredColumns = len(fields)
		}

		key := strings.TrimSpace(fields[0])
		if key == "" {
			// A row with values but no key never loads; nothing to index.
			continue
		}
		f.Entries = append(f.Entries, Entry{
			Key:    key,
			Values: languageValues(fields),
			File:   path,
			Line:   i + 1,
		})
	}

	return f, nil
}

// SplitRow splits a decoded row into fields.
func SplitRow(text string) []string {
	return strings.Split(text, Delimiter)
}

// IsCommentRow reports whether a row is a comment the engine ignores.
func IsCommentRow(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "#")
}

// IsBlankRow reports whether every field is empty or whitespace. Blank
// rows still shift key positions in the engine's loader, which is why
// the validator flags them.
func IsBlankRow(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// LastMeaningfulField returns the trimmed value and index of the last
// non-blank field, or ("", -1) for a blank row. The engine expects this
// field to be the end marker.
func LastMeaningfulField(fields []string) (string, int) {
	for i := len(fields) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(fields[i]); v != "" {
			return v, i
		}
	}
	return "", -1
}

// languageValues extracts the language columns: everything between the
// key and the end marker. When the end marker is absent the trailing
// fields are kept as values.
func languageValues(fields []string) []string {
	last, idx := LastMeaningfulField(fields)
	if last == EndMarker && idx >= 1 {
		return fields[1:idx]
	}
	return fields[1:]
}
