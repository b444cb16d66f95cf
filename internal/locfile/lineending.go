package locfile

import "bytes"

// LineEnding names a line terminator style. The host engine expects the
// doubled terminator CR CR LF on every line of a localisation file.
type LineEnding string

const (
	LineEndingCRCRLF LineEnding = "crcrlf"
	LineEndingCRLF   LineEnding = "crlf"
	LineEndingLF     LineEnding = "lf"
	// LineEndingNone marks a final line with no terminator at all.
	LineEndingNone LineEnding = "none"
	// LineEndingMixed is a file-level style for files using more than one
	// terminator.
	LineEndingMixed LineEnding = "mixed"
)

// Terminator returns the byte sequence for a concrete line ending.
func (le LineEnding) Terminator() []byte {
	switch le {
	case LineEndingCRCRLF:
		return []byte("\r\r\n")
	case LineEndingCRLF:
		return []byte("\r\n")
	case LineEndingLF:
		return []byte("\n")
	default:
		return nil
	}
}

func (le LineEnding) String() string {
	return string(le)
}

// SplitLines splits raw file content into lines, recording the terminator
// each line actually carried. The final segment, if unterminated, is
// returned with LineEndingNone. Content bytes never include terminators.
func SplitLines(data []byte) []Line {
	var lines []Line
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		end := i
		ending := LineEndingLF
		if end >= start+2 && data[end-1] == '\r' && data[end-2] == '\r' {
			end -= 2
			ending = LineEndingCRCRLF
		} else if end >= start+1 && data[end-1] == '\r' {
			end--
			ending = LineEndingCRLF
		}
		lines = append(lines, Line{Raw: data[start:end], Ending: ending})
		start = i + 1
	}
	if start < len(data) {
		lines = append(lines, Line{Raw: data[start:], Ending: LineEndingNone})
	}
	return lines
}

// DetectLineEnding reports the file-level terminator style: the single
// style used throughout, or LineEndingMixed when lines disagree. A final
// unterminated line does not count as a style of its own.
func DetectLineEnding(lines []Line) LineEnding {
	seen := make(map[LineEnding]bool)
	for _, l := range lines {
		if l.Ending == LineEndingNone {
			continue
		}
		seen[l.Ending] = true
	}
	switch len(seen) {
	case 0:
		return LineEndingCRCRLF
	case 1:
		for le := range seen {
			return le
		}
	}
	return LineEndingMixed
}

// NormalizeLineEndings rewrites every terminator in data to CR CR LF.
// The three-step rewrite is idempotent: already-doubled terminators come
// out unchanged.
func NormalizeLineEndings(data []byte) []byte {
	out := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\r\n"))
	return bytes.ReplaceAll(out, []byte("\r\r\r\n"), []byte("\r\r\n"))
}
