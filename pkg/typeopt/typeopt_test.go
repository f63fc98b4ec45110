package typeopt

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

func testConfig() config.ProfileConfig {
	return config.ProfileConfig{
		TemporalParseThreshold: 0.5,
		CategoricalMaxRatio:    0.05,
		CategoricalMaxDistinct: 50,
	}
}

func optimize(t *testing.T, values []string) *table.Column {
	t.Helper()
	nulls := make([]bool, len(values))
	for i, v := range values {
		nulls[i] = v == ""
	}
	col, err := table.NewStringColumn("c", values, nulls)
	require.NoError(t, err)
	require.NoError(t, New(testConfig(), zap.NewNop()).Optimize(context.Background(), col))
	return col
}

func TestOptimizeTemporal(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   table.Kind
	}{
		{
			name:   "majority of values parse as dates",
			values: []string{"2024-01-05", "2024-02-10", "2024-03-15", "not a date", "2024-04-20"},
			want:   table.KindTime,
		},
		{
			name:   "half or fewer parseable stays text",
			values: []string{"2024-01-05", "2024-02-10", "north", "south", "east", "west"},
			want:   table.KindString,
		},
		{
			name:   "slash format accepted",
			values: []string{"01/15/2024", "02/20/2024", "03/25/2024"},
			want:   table.KindTime,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := optimize(t, tt.values)
			assert.Equal(t, tt.want, col.Kind())
		})
	}
}

func TestOptimizeTemporalUnparseableBecomesNull(t *testing.T) {
	col := optimize(t, []string{"2024-01-05", "2024-02-10", "2024-03-15", "garbage"})
	require.Equal(t, table.KindTime, col.Kind())
	assert.True(t, col.IsNull(3))
	assert.Equal(t, 1, col.NullCount())
}

func TestOptimizeInteger(t *testing.T) {
	col := optimize(t, []string{"100", "", "250"})
	require.Equal(t, table.KindInt, col.Kind())
	assert.Equal(t, int64(250), col.IntAt(2))
	assert.True(t, col.IsNull(1))
}

func TestOptimizeIntegerNarrowing(t *testing.T) {
	tests := []struct {
		values []string
		want   table.IntWidth
	}{
		{[]string{"0", "200"}, table.WidthUint8},
		{[]string{"0", "40000"}, table.WidthUint16},
		{[]string{"0", "3000000000"}, table.WidthUint32},
		{[]string{"-5", "100"}, table.WidthInt8},
		{[]string{"-200", "30000"}, table.WidthInt16},
		{[]string{"-100000", "100000"}, table.WidthInt32},
		{[]string{"-3000000000", "0"}, table.WidthInt64},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.values), func(t *testing.T) {
			col := optimize(t, tt.values)
			require.Equal(t, table.KindInt, col.Kind())
			assert.Equal(t, tt.want, col.Width())
		})
	}
}

func TestOptimizeFloat(t *testing.T) {
	col := optimize(t, []string{"1.5", "2.75", "3"})
	require.Equal(t, table.KindFloat, col.Kind())
	assert.Equal(t, 2.75, col.FloatAt(1))
}

func TestOptimizeBoolean(t *testing.T) {
	col := optimize(t, []string{"yes", "no", "Yes", ""})
	require.Equal(t, table.KindBool, col.Kind())
	assert.True(t, col.BoolAt(0))
	assert.False(t, col.BoolAt(1))
	assert.True(t, col.BoolAt(2))
	assert.True(t, col.IsNull(3))
}

func TestOptimizeZeroOneIsIntegerNotBoolean(t *testing.T) {
	// The numeric check runs before the boolean check, so {0,1} columns
	// stay integer.
	col := optimize(t, []string{"0", "1", "1", "0"})
	assert.Equal(t, table.KindInt, col.Kind())
}

func TestOptimizeMixedStaysText(t *testing.T) {
	col := optimize(t, []string{"abc", "123", "def"})
	assert.Equal(t, table.KindString, col.Kind())
}

func TestOptimizeAllNullStaysText(t *testing.T) {
	col := optimize(t, []string{"", "", ""})
	assert.Equal(t, table.KindString, col.Kind())
}

func TestCategoricalFlag(t *testing.T) {
	// Three distinct values is under the distinct-count cutoff.
	col := optimize(t, []string{"red", "green", "blue", "red", "green"})
	assert.True(t, col.IsCategorical())

	// Booleans are never categorical even at two distinct values.
	col = optimize(t, []string{"yes", "no", "yes"})
	assert.Equal(t, table.KindBool, col.Kind())
	assert.False(t, col.IsCategorical())
}

func TestCategoricalHighCardinality(t *testing.T) {
	values := make([]string, 200)
	for i := range values {
		values[i] = fmt.Sprintf("user-%d", i)
	}
	col := optimize(t, values)
	assert.False(t, col.IsCategorical(), "all-distinct column is not categorical")
}

func TestCategoricalRatioCountsNullRows(t *testing.T) {
	// 400 distinct codes over 10000 rows is a 4% distinct ratio; the
	// ratio is over all rows, so heavy sparsity does not disqualify.
	values := make([]string, 10000)
	for i := 0; i < 600; i++ {
		values[i] = fmt.Sprintf("code-%d", i%400)
	}
	col := optimize(t, values)
	assert.True(t, col.IsCategorical())
}

func TestSemanticTypeOf(t *testing.T) {
	assert.Equal(t, models.SemanticInteger, SemanticTypeOf(optimize(t, []string{"1", "2"})))
	assert.Equal(t, models.SemanticFloat, SemanticTypeOf(optimize(t, []string{"1.5"})))
	assert.Equal(t, models.SemanticBoolean, SemanticTypeOf(optimize(t, []string{"true", "false"})))
	assert.Equal(t, models.SemanticDate, SemanticTypeOf(optimize(t, []string{"2024-01-01"})))
	assert.Equal(t, models.SemanticText, SemanticTypeOf(optimize(t, []string{"hello"})))
}
