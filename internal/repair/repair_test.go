package repair

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loclint/internal/locfile"
)

func writeLoc(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func readBack(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestRepairPadsNarrowRows(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "short.csv", []byte("KEY;short;x\r\r\n"))

	r := New(Options{Columns: 5})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, []byte("KEY;short;;;x\r\r\n"), readBack(t, path))

	require.Len(t, res.Actions, 1)
	assert.Equal(t, locfile.ColumnCountMismatch, res.Actions[0].Kind)
	assert.Equal(t, 1, res.Actions[0].Line)

	// The original survives as a sibling backup.
	assert.Equal(t, path+BackupSuffix, res.Backup)
	assert.Equal(t, []byte("KEY;short;x\r\r\n"), readBack(t, res.Backup))
}

func TestRepairTruncatesWideRows(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "wide.csv", []byte("KEY;a;b;c;d;e;f\r\r\n"))

	r := New(Options{Columns: 5, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, []byte("KEY;a;b;c;x\r\r\n"), readBack(t, path))
}

func TestRepairRestoresEndMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "marker.csv", []byte("KEY;a;b;c;y\r\r\n"))

	r := New(Options{Columns: 5, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.Equal(t, []byte("KEY;a;b;c;x\r\r\n"), readBack(t, path))
	require.Len(t, res.Actions, 1)
	assert.Equal(t, locfile.MissingEndMarker, res.Actions[0].Kind)
	assert.Equal(t, "end marker restored", res.Actions[0].Detail)
}

func TestRepairNormalizesLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "endings.csv", []byte("A;v;x\r\nB;v;x"))

	r := New(Options{Columns: 3, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, []byte("A;v;x\r\r\nB;v;x\r\r\n"), readBack(t, path))
}

func TestRepairRemovesBlankRows(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "blank.csv", []byte("A;v;x\r\r\n;;\r\r\nB;v;x\r\r\n"))

	r := New(Options{Columns: 3, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, []byte("A;v;x\r\r\nB;v;x\r\r\n"), readBack(t, path))

	require.Len(t, res.Actions, 1)
	assert.Equal(t, locfile.EmptyLine, res.Actions[0].Kind)
	assert.Equal(t, 2, res.Actions[0].Line)
}

func TestRepairCommentsOutDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "dup.csv", []byte("GREETING;old;x\r\r\nGREETING;new;x\r\r\n"))

	r := New(Options{Columns: 3, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t,
		[]byte("# GREETING removed - duplicate of line 2\r\r\nGREETING;new;x\r\r\n"),
		readBack(t, path))

	require.Len(t, res.Actions, 1)
	assert.Equal(t, locfile.DuplicateKeyWithinFile, res.Actions[0].Kind)
	assert.Equal(t, 1, res.Actions[0].Line)
}

func TestRepairTranscodesUTF8(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "utf8.csv", []byte("CAFE;caf\xc3\xa9;x\r\r\n"))

	r := New(Options{Columns: 3, NoBackup: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	out := readBack(t, path)
	assert.Equal(t, []byte("CAFE;caf\xe9;x\r\r\n"), out)
	assert.Equal(t, locfile.EncodingWindows1252, locfile.DetectEncoding(out))
}

func TestRepairKeepsBOMWhenNotFixingEncoding(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "bom.csv", []byte("\xef\xbb\xbfKEY;v;x\n"))

	r := New(Options{
		Columns:  5,
		NoBackup: true,
		Kinds: map[locfile.ViolationKind]bool{
			locfile.ColumnCountMismatch: true,
			locfile.MissingEndMarker:    true,
		},
	})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	// Width fixed; byte-order mark, encoding, and line ending all kept.
	assert.Equal(t, []byte("\xef\xbb\xbfKEY;v;;;x\n"), readBack(t, path))
}

func TestRepairSelectiveKindsLeaveRestAlone(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "partial.csv", []byte("KEY;too;short\nOTHER;row\n"))

	r := New(Options{
		Columns:  5,
		NoBackup: true,
		Kinds:    map[locfile.ViolationKind]bool{locfile.BadLineEnding: true},
	})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	// Terminators doubled, row widths untouched.
	assert.Equal(t, []byte("KEY;too;short\r\r\nOTHER;row\r\r\n"), readBack(t, path))
}

func TestRepairIdempotent(t *testing.T) {
	dir := t.TempDir()
	mess := []byte("GREETING;h\xc3\xa9llo;x\r\n;;;;\nGREETING;updated\nWIDE;a;b;c;d;e;f;g\r\r\n")
	path := writeLoc(t, dir, "mess.csv", mess)

	r := New(Options{Columns: 5, NoBackup: true})

	first, err := r.Repair(path)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	once := readBack(t, path)

	second, err := r.Repair(path)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Empty(t, second.Actions)
	assert.Equal(t, once, readBack(t, path))
}

func TestRepairDryRun(t *testing.T) {
	dir := t.TempDir()
	original := []byte("KEY;short;x\r\n")
	path := writeLoc(t, dir, "dry.csv", original)

	r := New(Options{Columns: 5, DryRun: true})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.True(t, res.DryRun)
	assert.NotEmpty(t, res.Actions)

	// Nothing on disk moved: no rewrite, no backup.
	assert.Equal(t, original, readBack(t, path))
	_, err = os.Stat(path + BackupSuffix)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRepairBackupExists(t *testing.T) {
	dir := t.TempDir()
	original := []byte("KEY;short;x\r\r\n")
	path := writeLoc(t, dir, "guarded.csv", original)
	writeLoc(t, dir, "guarded.csv"+BackupSuffix, []byte("previous backup"))

	r := New(Options{Columns: 5})
	_, err := r.Repair(path)
	require.Error(t, err)

	var backupErr *locfile.BackupExistsError
	require.True(t, errors.As(err, &backupErr))
	assert.Equal(t, path, backupErr.File)
	assert.Equal(t, path+BackupSuffix, backupErr.Backup)

	// Both the original and the stale backup are left untouched.
	assert.Equal(t, original, readBack(t, path))
	assert.Equal(t, []byte("previous backup"), readBack(t, path+BackupSuffix))
}

func TestRepairCleanFileUntouched(t *testing.T) {
	dir := t.TempDir()
	clean := []byte("KEY;a;b;c;x\r\r\n")
	path := writeLoc(t, dir, "clean.csv", clean)

	r := New(Options{Columns: 5})
	res, err := r.Repair(path)
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Empty(t, res.Backup)
	assert.Equal(t, clean, readBack(t, path))
	_, err = os.Stat(path + BackupSuffix)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRepairRejectsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := writeLoc(t, dir, "binary.csv", []byte("KEY;\x00\x00;x"))

	r := New(Options{Columns: 5})
	_, err := r.Repair(path)
	require.Error(t, err)

	var encErr *locfile.UnsupportedEncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, path, encErr.File)
}

func TestFixRowColumns(t *testing.T) {
	tests := []struct {
		name        string
		fields      []string
		target      int
		want        []string
		wantKind    locfile.ViolationKind
		wantChanged bool
	}{
		{
			name:        "already correct",
			fields:      []string{"KEY", "v", "x"},
			target:      3,
			want:        []string{"KEY", "v", "x"},
			wantChanged: false,
		},
		{
			name:        "right width wrong marker",
			fields:      []string{"KEY", "v", "y"},
			target:      3,
			want:        []string{"KEY", "v", "x"},
			wantKind:    locfile.MissingEndMarker,
			wantChanged: true,
		},
		{
			name:        "too wide",
			fields:      []string{"KEY", "a", "b", "c", "d"},
			target:      3,
			want:        []string{"KEY", "a", "x"},
			wantKind:    locfile.ColumnCountMismatch,
			wantChanged: true,
		},
		{
			name:        "too narrow with marker",
			fields:      []string{"KEY", "v", "x"},
			target:      5,
			want:        []string{"KEY", "v", "", "", "x"},
			wantKind:    locfile.ColumnCountMismatch,
			wantChanged: true,
		},
		{
			name:        "too narrow without marker",
			fields:      []string{"KEY", "v"},
			target:      5,
			want:        []string{"KEY", "v", "", "", "x"},
			wantKind:    locfile.ColumnCountMismatch,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind, changed := fixRowColumns(tt.fields, tt.target)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}
