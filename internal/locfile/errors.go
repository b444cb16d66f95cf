package locfile

import "fmt"

// ParseError reports a single malformed row. It is recoverable: the scan
// records it and continues with the rest of the file.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// UnsupportedEncodingError reports a file whose bytes decode under no
// candidate encoding. The file is skipped; the run continues.
type UnsupportedEncodingError struct {
	File   string
	Detail string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("%s: unsupported encoding: %s", e.File, e.Detail)
}

// BackupExistsError reports a repair refused because a backup sibling is
// already present. The original file is left untouched.
type BackupExistsError struct {
	File   string
	Backup string
}

func (e *BackupExistsError) Error() string {
	return fmt.Sprintf("%s: backup already exists at %s", e.File, e.Backup)
}
