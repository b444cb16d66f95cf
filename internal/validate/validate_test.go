package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loclint/internal/locfile"
)

// wellFormedRow builds a row with the target field count, a key, and the
// end marker in the last field.
func wellFormedRow(key string, columns int) string {
	fields := make([]string, columns)
	fields[0] = key
	for i := 1; i < columns-1; i++ {
		fields[i] = "value"
	}
	fields[columns-1] = "x"
	return strings.Join(fields, ";")
}

func parse(t *testing.T, data string) *locfile.File {
	t.Helper()
	f, err := locfile.Parse("test.csv", []byte(data))
	require.NoError(t, err)
	return f
}

func kinds(violations []locfile.Violation) []locfile.ViolationKind {
	out := make([]locfile.ViolationKind, len(violations))
	for i, v := range violations {
		out[i] = v.Kind
	}
	return out
}

func TestCheckCleanFile(t *testing.T) {
	f := parse(t, wellFormedRow("GREETING", DefaultColumns)+"\r\r\n")
	assert.Empty(t, Check(f, DefaultConfig()))
}

func TestCheckDeclaredColumnsMatchTargetWhenClean(t *testing.T) {
	f := parse(t, wellFormedRow("A", DefaultColumns)+"\r\r\n"+wellFormedRow("B", DefaultColumns)+"\r\r\n")

	violations := Check(f, DefaultConfig())
	counts := CountByKind(violations)

	assert.Zero(t, counts[locfile.ColumnCountMismatch])
	assert.Equal(t, DefaultColumns, f.DeclaredColumns)
}

func TestCheckColumnCount(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want []locfile.ViolationKind
	}{
		{
			name: "too few fields",
			row:  "KEY;value;x",
			want: []locfile.ViolationKind{locfile.ColumnCountMismatch},
		},
		{
			name: "too many fields",
			row:  wellFormedRow("KEY", DefaultColumns+3),
			want: []locfile.ViolationKind{locfile.ColumnCountMismatch},
		},
		{
			name: "right width but no marker",
			row:  strings.TrimSuffix(wellFormedRow("KEY", DefaultColumns), "x") + "y",
			want: []locfile.ViolationKind{locfile.MissingEndMarker},
		},
		{
			name: "wrong width and no marker",
			row:  "KEY;value",
			want: []locfile.ViolationKind{locfile.ColumnCountMismatch, locfile.MissingEndMarker},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.row+"\r\r\n")
			violations := Check(f, DefaultConfig())
			assert.Equal(t, tt.want, kinds(violations))
		})
	}
}

func TestCheckDelimiterOnlyRowIsEmptyLineOnly(t *testing.T) {
	// A row of nothing but semicolons is an empty line regardless of
	// how many fields it would split into.
	for _, row := range []string{";;;;;;;;;;;;;", ";;;", ";"} {
		f := parse(t, row+"\r\r\n")
		violations := Check(f, DefaultConfig())
		assert.Equal(t, []locfile.ViolationKind{locfile.EmptyLine}, kinds(violations), "row %q", row)
	}
}

func TestCheckLineEndings(t *testing.T) {
	f := parse(t, wellFormedRow("A", DefaultColumns)+"\r\n"+wellFormedRow("B", DefaultColumns))

	violations := Check(f, DefaultConfig())
	require.Len(t, violations, 2)

	assert.Equal(t, locfile.BadLineEnding, violations[0].Kind)
	assert.Equal(t, 1, violations[0].Line)
	assert.Contains(t, violations[0].Detail, "crlf")

	assert.Equal(t, locfile.BadLineEnding, violations[1].Kind)
	assert.Equal(t, 2, violations[1].Line)
	assert.Equal(t, "missing line terminator", violations[1].Detail)
}

func TestCheckFileEncoding(t *testing.T) {
	fields := make([]string, DefaultColumns)
	fields[0] = "GREETING"
	fields[1] = "café"
	fields[DefaultColumns-1] = "x"
	f := parse(t, strings.Join(fields, ";")+"\r\r\n")
	require.Equal(t, locfile.EncodingUTF8, f.Encoding)

	violations := Check(f, DefaultConfig())
	require.Len(t, violations, 1)
	assert.Equal(t, locfile.BadEncoding, violations[0].Kind)
	assert.Zero(t, violations[0].Line)
	assert.Contains(t, violations[0].Detail, "utf-8")
}

func TestCheckCommentRowsExempt(t *testing.T) {
	f := parse(t, "# just a note\r\r\n")
	assert.Empty(t, Check(f, DefaultConfig()))
}

func TestCheckIncludesParseViolations(t *testing.T) {
	// Line two carries a byte with no Windows-1252 assignment.
	f := parse(t, wellFormedRow("GOOD", DefaultColumns)+"\r\r\nBAD;\x81;x\r\r\n")

	violations := Check(f, DefaultConfig())
	counts := CountByKind(violations)
	assert.Equal(t, 1, counts[locfile.BadEncoding])
	// The undecodable row is excused from field checks.
	assert.Zero(t, counts[locfile.ColumnCountMismatch])
}

func TestCountByKind(t *testing.T) {
	violations := []locfile.Violation{
		{Kind: locfile.EmptyLine},
		{Kind: locfile.EmptyLine},
		{Kind: locfile.MissingEndMarker},
	}
	counts := CountByKind(violations)
	assert.Equal(t, 2, counts[locfile.EmptyLine])
	assert.Equal(t, 1, counts[locfile.MissingEndMarker])
	assert.Zero(t, counts[locfile.BadEncoding])
}
