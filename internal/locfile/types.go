// Package locfile models the host engine's localisation CSV format:
// semicolon-delimited rows, no quoting, a key in the first field, language
// columns after it, and a literal "x" end marker in the last meaningful field.
package locfile

// ViolationKind identifies one structural rule a row or file can break.
type ViolationKind string

const (
	ColumnCountMismatch    ViolationKind = "column-count-mismatch"
	MissingEndMarker       ViolationKind = "missing-end-marker"
	BadEncoding            ViolationKind = "bad-encoding"
	BadLineEnding          ViolationKind = "bad-line-ending"
	EmptyLine              ViolationKind = "empty-line"
	DuplicateKeyWithinFile ViolationKind = "duplicate-key-within-file"
)

// Kinds lists every violation kind in report order.
var Kinds = []ViolationKind{
	ColumnCountMismatch,
	MissingEndMarker,
	BadEncoding,
	BadLineEnding,
	EmptyLine,
	DuplicateKeyWithinFile,
}

// Violation records one broken rule, attributable to a file and, where
// meaningful, a 1-based line. Line 0 means the violation is file-level.
type Violation struct {
	Kind   ViolationKind
	File   string
	Line   int
	Detail string
}

// Entry is one localisation row: a key and its language column values.
// Values excludes the key and the end marker. Entries are immutable
// snapshots from a scan pass.
type Entry struct {
	Key    string
	Values []string
	File   string
	Line   int
}

// Value returns the primary (first) language column, the text most
// reports care about.
func (e Entry) Value() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}

// Line is one physical line of a localisation file, decoded where
// possible but with the original bytes preserved for faithful rewrites.
type Line struct {
	// Raw holds the original line bytes without the terminator.
	Raw []byte
	// Text is the decoded line content. For lines that failed to decode
	// it holds a lossy replacement rendering.
	Text string
	// Ending is the terminator actually present on this line.
	Ending LineEnding
	// DecodeErr is set when the line bytes were invalid under the file's
	// detected encoding.
	DecodeErr bool
}

// File is the parsed form of one localisation CSV file.
type File struct {
	Path string
	// DeclaredColumns is the field count of the first data row. Recorded
	// for diagnostics only; validation always compares rows against the
	// configured target, never against this.
	DeclaredColumns int
	Encoding        Encoding
	LineEnding      LineEnding
	Entries         []Entry
	Lines           []Line
	// Violations holds parse-level findings (undecodable rows). Rule
	// checks add to these separately.
	Violations []Violation
	// Hash is the SHA-256 of the raw file bytes, used by the scan cache.
	Hash string
}

// Occurrence is one place a key appears in the corpus.
type Occurrence struct {
	File  string
	Line  int
	Value string
}

// KeyIndex maps each key to its occurrences across the corpus, in load
// order: files in engine read order, lines in file order. The last
// occurrence of a key is the effective one; all earlier occurrences are
// shadowed.
type KeyIndex struct {
	occurrences map[string][]Occurrence
	keys        []string
}

// NewKeyIndex returns an empty index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{occurrences: make(map[string][]Occurrence)}
}

// Add appends an occurrence for key. Callers must insert in load order.
func (idx *KeyIndex) Add(key string, occ Occurrence) {
	if _, seen := idx.occurrences[key]; !seen {
		idx.keys = append(idx.keys, key)
	}
	idx.occurrences[key] = append(idx.occurrences[key], occ)
}

// Get returns the occurrences of key in load order, or nil.
func (idx *KeyIndex) Get(key string) []Occurrence {
	return idx.occurrences[key]
}

// Has reports whether key appears anywhere in the corpus.
func (idx *KeyIndex) Has(key string) bool {
	_, ok := idx.occurrences[key]
	return ok
}

// Effective returns the winning occurrence of key, the last one in load
// order.
func (idx *KeyIndex) Effective(key string) (Occurrence, bool) {
	occs := idx.occurrences[key]
	if len(occs) == 0 {
		return Occurrence{}, false
	}
	return occs[len(occs)-1], true
}

// Keys returns all keys in first-seen order.
func (idx *KeyIndex) Keys() []string {
	return idx.keys
}

// Len returns the number of distinct keys.
func (idx *KeyIndex) Len() int {
	return len(idx.keys)
}
