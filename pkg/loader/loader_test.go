package loader

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/apperrors"
	"github.com/tabulon-ai/tabulon-engine/pkg/config"
)

func testLoader(t *testing.T) *Loader {
	t.Helper()
	cfg := config.LoaderConfig{
		Encodings:               []string{"utf-8", "latin-1", "iso-8859-1", "windows-1252", "utf-16"},
		LargeFileThresholdBytes: 500_000_000,
	}
	return New(cfg, 4, zap.NewNop())
}

func TestLoadCSV(t *testing.T) {
	data := []byte("name,age,city\nAlice,30,Austin\nBob,25,Boston\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "people.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 3, tbl.ColumnCount())
	assert.Equal(t, "Alice", tbl.Column("name").StringAt(0))
	assert.Equal(t, "25", tbl.Column("age").StringAt(1))
}

func TestLoadTSV(t *testing.T) {
	data := []byte("a\tb\n1\t2\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "data.tsv")
	require.NoError(t, err)
	assert.Equal(t, "2", tbl.Column("b").StringAt(0))
}

func TestLoadEncodingFallback(t *testing.T) {
	// "café" in Latin-1; the 0xE9 byte is invalid UTF-8.
	data := []byte("word\ncaf\xe9\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "words.csv")
	require.NoError(t, err)
	assert.Equal(t, "café", tbl.Column("word").StringAt(0))
}

func TestLoadEmptyCells(t *testing.T) {
	data := []byte("a,b\n1,\n,2\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "gaps.csv")
	require.NoError(t, err)

	assert.True(t, tbl.Column("b").IsNull(0))
	assert.True(t, tbl.Column("a").IsNull(1))
	assert.Equal(t, "2", tbl.Column("b").StringAt(1))
}

func TestLoadRaggedRows(t *testing.T) {
	data := []byte("a,b,c\n1,2\n1,2,3,4\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "ragged.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 3, tbl.ColumnCount(), "extra cells are dropped")
	assert.True(t, tbl.Column("c").IsNull(0), "short rows pad with nulls")
	assert.Equal(t, "3", tbl.Column("c").StringAt(1))
}

func TestLoadHeaderCleanup(t *testing.T) {
	data := []byte("a,,a\n1,2,3\n")
	tbl, err := testLoader(t).Load(context.Background(), data, "dups.csv")
	require.NoError(t, err)

	assert.NotNil(t, tbl.Column("a"))
	assert.NotNil(t, tbl.Column("column_2"), "empty header gets a positional name")
	assert.NotNil(t, tbl.Column("a_1"), "duplicate header gets a numeric suffix")
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := testLoader(t).Load(context.Background(), nil, "empty.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEmptyFile))

	var loadErr *apperrors.LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "empty.csv", loadErr.Filename)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := testLoader(t).Load(context.Background(), []byte("x"), "data.parquet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"name", "score"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Alice", 90}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Bob", 85}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	tbl, err := testLoader(t).Load(context.Background(), buf.Bytes(), "scores.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, "Alice", tbl.Column("name").StringAt(0))
	assert.Equal(t, "85", tbl.Column("score").StringAt(1))
}

func TestPartitionedMatchesSinglePass(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 0; i < 1000; i++ {
		b.WriteString("1,alpha\n")
	}
	data := []byte(b.String())

	l := testLoader(t)
	single, err := l.loadDelimited(context.Background(), data, ',')
	require.NoError(t, err)
	parallel, err := l.loadPartitioned(context.Background(), data, ',')
	require.NoError(t, err)

	require.Equal(t, single.RowCount(), parallel.RowCount())
	require.Equal(t, single.ColumnCount(), parallel.ColumnCount())
	for _, col := range single.Columns() {
		other := parallel.Column(col.Name())
		require.NotNil(t, other)
		for i := 0; i < col.Len(); i++ {
			assert.Equal(t, col.StringAt(i), other.StringAt(i))
		}
	}
}

func TestSplitAtNewlines(t *testing.T) {
	data := []byte("aa\nbb\ncc\ndd\n")
	parts := splitAtNewlines(data, 3)

	var joined []byte
	for _, p := range parts {
		joined = append(joined, p...)
	}
	assert.Equal(t, data, joined, "partitions reassemble exactly")
	for _, p := range parts {
		assert.Equal(t, byte('\n'), p[len(p)-1], "cuts land on newlines")
	}
}
