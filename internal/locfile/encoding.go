package locfile

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"loclint/internal/textutil"
)

// Encoding names a character encoding as detected on a localisation file.
// The engine expects Windows-1252; UTF-8 content is a violation the
// repairer can transcode away.
type Encoding string

const (
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF8BOM     Encoding = "utf-8-bom"
	EncodingUnknown     Encoding = "unknown"
)

func (e Encoding) String() string {
	return string(e)
}

// windows1252Encoder replaces unmappable runes rather than failing, the
// same lossy conversion the engine's own tools perform.
var windows1252Encoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

var windows1252Decoder = charmap.Windows1252.NewDecoder()

// DetectEncoding classifies raw file bytes. Preference order: UTF-8 with
// byte-order mark, valid UTF-8 containing non-ASCII, Windows-1252
// fallback. Pure ASCII counts as Windows-1252 since the two agree on
// those bytes. Content with NUL bytes is EncodingUnknown (binary).
func DetectEncoding(data []byte) Encoding {
	if bytes.IndexByte(data, 0x00) >= 0 {
		return EncodingUnknown
	}
	if textutil.HasBOM(data) {
		return EncodingUTF8BOM
	}
	if utf8.Valid(data) {
		if isASCII(data) {
			return EncodingWindows1252
		}
		return EncodingUTF8
	}
	return EncodingWindows1252
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// Windows1252Valid reports whether every byte is defined under
// Windows-1252. Five code points in the C1 range are unassigned.
func Windows1252Valid(data []byte) bool {
	for _, b := range data {
		switch b {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return false
		}
	}
	return true
}

// DecodeLine decodes one line's bytes under the detected file encoding.
// The second return is false when the bytes are invalid under that
// encoding; the returned string is then a lossy replacement rendering so
// callers still have something to report.
func DecodeLine(raw []byte, enc Encoding) (string, bool) {
	switch enc {
	case EncodingUTF8, EncodingUTF8BOM:
		if utf8.Valid(raw) {
			return string(raw), true
		}
		return string(bytes.ToValidUTF8(raw, []byte("�"))), false
	default:
		decoded, err := windows1252Decoder.Bytes(raw)
		if err != nil {
			return string(bytes.ToValidUTF8(raw, []byte("�"))), false
		}
		return string(decoded), Windows1252Valid(raw)
	}
}

// EncodeWindows1252 converts decoded text to the target code page,
// replacing anything unmappable.
func EncodeWindows1252(s string) []byte {
	out, err := windows1252Encoder.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported never errors on invalid runes; keep the
		// input bytes if the transform fails some other way.
		return []byte(s)
	}
	return out
}
