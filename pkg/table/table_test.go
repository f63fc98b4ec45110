package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStringColumn(t *testing.T, name string, values []string, nulls []bool) *Column {
	t.Helper()
	col, err := NewStringColumn(name, values, nulls)
	require.NoError(t, err)
	return col
}

func TestNewStringColumn(t *testing.T) {
	col := mustStringColumn(t, "city", []string{"Austin", "", "Boston"}, []bool{false, true, false})

	assert.Equal(t, "city", col.Name())
	assert.Equal(t, KindString, col.Kind())
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, 1, col.NullCount())
	assert.Equal(t, 2, col.NonNullCount())
	assert.True(t, col.IsNull(1))
	assert.Equal(t, "Austin", col.StringAt(0))
	assert.Equal(t, "", col.Display(1))
}

func TestNewStringColumnLengthMismatch(t *testing.T) {
	_, err := NewStringColumn("x", []string{"a"}, []bool{false, true})
	assert.Error(t, err)
}

func TestColumnRewritePreservesRowCount(t *testing.T) {
	col := mustStringColumn(t, "n", []string{"1", "2", "3"}, make([]bool, 3))

	require.NoError(t, col.SetInts([]int64{1, 2, 3}, make([]bool, 3)))
	assert.Equal(t, KindInt, col.Kind())
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, int64(2), col.IntAt(1))

	// Wrong length is rejected and the column is left unchanged.
	assert.Error(t, col.SetFloats([]float64{1}, []bool{false}))
	assert.Equal(t, KindInt, col.Kind())
}

func TestIntRange(t *testing.T) {
	col := mustStringColumn(t, "n", []string{"", "", ""}, []bool{true, true, true})
	_, _, ok := col.IntRange()
	assert.False(t, ok, "all-null column has no range")

	col = mustStringColumn(t, "n", []string{"-5", "", "12"}, []bool{false, true, false})
	require.NoError(t, col.SetInts([]int64{-5, 0, 12}, []bool{false, true, false}))
	minVal, maxVal, ok := col.IntRange()
	require.True(t, ok)
	assert.Equal(t, int64(-5), minVal)
	assert.Equal(t, int64(12), maxVal)
}

func TestDisplayAndValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	col := mustStringColumn(t, "when", []string{"x", ""}, []bool{false, true})
	require.NoError(t, col.SetTimes([]time.Time{ts, {}}, []bool{false, true}))

	assert.Equal(t, "2024-03-01 12:30:00", col.Display(0))
	assert.Equal(t, "", col.Display(1))
	assert.Equal(t, ts, col.Value(0))
	assert.Nil(t, col.Value(1))
}

func TestFloatAtCoercesInts(t *testing.T) {
	col := mustStringColumn(t, "n", []string{"7"}, []bool{false})
	require.NoError(t, col.SetInts([]int64{7}, []bool{false}))
	assert.Equal(t, 7.0, col.FloatAt(0))
}

func TestTableValidation(t *testing.T) {
	a := mustStringColumn(t, "a", []string{"1", "2"}, make([]bool, 2))
	b := mustStringColumn(t, "b", []string{"1"}, make([]bool, 1))
	_, err := New([]*Column{a, b})
	assert.Error(t, err, "ragged columns rejected")

	dup := mustStringColumn(t, "a", []string{"1", "2"}, make([]bool, 2))
	_, err = New([]*Column{a, dup})
	assert.Error(t, err, "duplicate names rejected")
}

func TestTableAccessorsAndSizing(t *testing.T) {
	a := mustStringColumn(t, "a", []string{"hello", "world"}, make([]bool, 2))
	b := mustStringColumn(t, "b", []string{"1", "2"}, make([]bool, 2))
	tbl, err := New([]*Column{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 2, tbl.ColumnCount())
	assert.Equal(t, a, tbl.Column("a"))
	assert.Nil(t, tbl.Column("missing"))
	assert.Positive(t, tbl.EstimateRowBytes())
	assert.Positive(t, tbl.EstimateTotalBytes())
}
