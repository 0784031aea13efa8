package generation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestFileCSVWithHeader(t *testing.T) {
	path := writeFile(t, "people.csv", []byte("name,city,city\nKim,Seoul,Busan\nLee,Daegu,Incheon\n"))
	cache := NewFileCache()

	parsed, err := cache.Load(FileMeta{Path: path, HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "city", "city_2"}, parsed.Headers)
	assert.Len(t, parsed.Records, 2)

	gen := &FileGenerator{Column: "city_2", Meta: FileMeta{Path: path, HasHeader: true}, Cache: cache}
	assert.Equal(t, []string{"Busan", "Incheon"}, collectStrings(t, gen.Generate(context.Background(), 2, ColumnConstraint{})))
}

func TestFileWithoutHeader(t *testing.T) {
	path := writeFile(t, "codes.tsv", []byte("a\t1\nb\t2\nc\t3\n"))
	cache := NewFileCache()

	parsed, err := cache.Load(FileMeta{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"col1", "col2"}, parsed.Headers)

	gen := &FileGenerator{Column: "code", Meta: FileMeta{Path: path, ColumnName: "col2"}, Cache: cache}
	assert.Equal(t, []string{"1", "2"}, collectStrings(t, gen.Generate(context.Background(), 2, ColumnConstraint{})))
}

func TestFileCustomSeparator(t *testing.T) {
	path := writeFile(t, "pipes.txt", []byte("id|label\n1|one\n"))
	gen := &FileGenerator{Column: "label", Meta: FileMeta{Path: path, Format: "csv", Separator: "|", HasHeader: true}, Cache: NewFileCache()}
	assert.Equal(t, []string{"one"}, collectStrings(t, gen.Generate(context.Background(), 1, ColumnConstraint{})))
}

func TestFileJSONRecords(t *testing.T) {
	path := writeFile(t, "items.json", []byte(`[
		{"sku": "A-1", "price": 12.5, "tags": ["x", "y"]},
		{"sku": "A-2", "price": null, "active": true}
	]`))
	cache := NewFileCache()

	parsed, err := cache.Load(FileMeta{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "price", "tags", "active"}, parsed.Headers)
	assert.Equal(t, []string{"A-1", "12.5", `["x","y"]`, ""}, parsed.Records[0])
	assert.Equal(t, []string{"A-2", "", "", "true"}, parsed.Records[1])
}

func TestFileColumnIndexWins(t *testing.T) {
	path := writeFile(t, "p.csv", []byte("name,email\nKim,kim@example.com\n"))
	gen := &FileGenerator{
		Column: "name",
		Meta:   FileMeta{Path: path, HasHeader: true, ColumnName: "name", ColumnIndex: intPtr(1)},
		Cache:  NewFileCache(),
	}
	assert.Equal(t, []string{"kim@example.com"}, collectStrings(t, gen.Generate(context.Background(), 1, ColumnConstraint{})))

	// out of range index falls back to the name, case-insensitively
	gen.Meta.ColumnIndex = intPtr(9)
	gen.Meta.ColumnName = "NAME"
	assert.Equal(t, []string{"Kim"}, collectStrings(t, gen.Generate(context.Background(), 1, ColumnConstraint{})))
}

func TestFileMappingError(t *testing.T) {
	path := writeFile(t, "p.csv", []byte("name\nKim\n"))
	gen := &FileGenerator{Column: "phone", Meta: FileMeta{Path: path, HasHeader: true}, Cache: NewFileCache()}

	_, err := gen.Generate(context.Background(), 1, ColumnConstraint{}).Next(context.Background())
	var mapping *MappingError
	require.True(t, errors.As(err, &mapping))
	assert.Equal(t, "phone", mapping.Column)
}

func TestFileOverrunIsError(t *testing.T) {
	path := writeFile(t, "p.csv", []byte("name\nKim\nLee\n"))
	gen := &FileGenerator{Column: "name", Meta: FileMeta{Path: path, HasHeader: true}, Cache: NewFileCache()}

	_, err := gen.Generate(context.Background(), 3, ColumnConstraint{}).Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 2 records but 3 were requested")
}

func TestFileCacheReadsOnce(t *testing.T) {
	path := writeFile(t, "p.csv", []byte("name,email\nKim,k@x.io\n"))
	cache := NewFileCache()

	a, err := cache.Load(FileMeta{Path: path, HasHeader: true, ColumnName: "name"})
	require.NoError(t, err)
	b, err := cache.Load(FileMeta{Path: path, HasHeader: true, ColumnName: "email"})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.EqualValues(t, 1, cache.Reads())

	_, err = cache.Load(FileMeta{Path: path, HasHeader: false})
	require.NoError(t, err)
	assert.EqualValues(t, 2, cache.Reads(), "different options are a different entry")
}

func TestFileCacheDoesNotKeepFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.csv")
	cache := NewFileCache()

	_, err := cache.Load(FileMeta{Path: path})
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
	parsed, err := cache.Load(FileMeta{Path: path})
	require.NoError(t, err)
	assert.Len(t, parsed.Records, 1)
}

func TestFileDecodesEncoding(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("이름\n김철수\n"))
	require.NoError(t, err)
	path := writeFile(t, "names.csv", encoded)

	gen := &FileGenerator{Column: "이름", Meta: FileMeta{Path: path, HasHeader: true, Encoding: "euc-kr"}, Cache: NewFileCache()}
	assert.Equal(t, []string{"김철수"}, collectStrings(t, gen.Generate(context.Background(), 1, ColumnConstraint{})))
}

func TestFileStripsBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", append([]byte("\uFEFF"), []byte("id\n7\n")...))
	parsed, err := NewFileCache().Load(FileMeta{Path: path, HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, parsed.Headers)
}

func TestFileUnsupportedFormat(t *testing.T) {
	_, err := NewFileCache().Load(FileMeta{Path: "x.xml", Format: "xml"})
	assert.Error(t, err)
}

func TestFileRowCount(t *testing.T) {
	path := writeFile(t, "p.csv", []byte("name\nA\nB\nC\n"))
	n, err := NewFileCache().RowCount(FileMeta{Path: path, HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
