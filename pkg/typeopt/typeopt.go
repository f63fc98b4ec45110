// Package typeopt infers a concrete type for each raw string column. The
// checks run in a fixed order: temporal, integer, float, boolean, and
// finally text. A column is rewritten in place the first time a check
// accepts it, so earlier checks win ties ({0,1} becomes INTEGER, not
// BOOLEAN). Integer columns are narrowed to the smallest width that holds
// their range, and low-cardinality columns are flagged categorical.
package typeopt

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// Optimizer rewrites raw string columns into typed columns.
type Optimizer struct {
	cfg    config.ProfileConfig
	logger *zap.Logger
}

func New(cfg config.ProfileConfig, logger *zap.Logger) *Optimizer {
	return &Optimizer{cfg: cfg, logger: logger.Named("typeopt")}
}

// Optimize infers and applies the best type for col. Identical input
// columns always produce identical results.
func (o *Optimizer) Optimize(ctx context.Context, col *table.Column) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if col.Kind() == table.KindString {
		switch {
		case o.applyTemporal(col):
		case o.applyInteger(col):
		case o.applyFloat(col):
		case o.applyBoolean(col):
		}
	}

	o.markCategorical(col)

	o.logger.Debug("Optimized column",
		zap.String("column", col.Name()),
		zap.String("kind", col.Kind().String()),
		zap.Bool("categorical", col.IsCategorical()))
	return nil
}

// applyTemporal converts the column to timestamps when more than the
// configured fraction of non-null values parse as dates. Values that do
// not parse become nulls.
func (o *Optimizer) applyTemporal(col *table.Column) bool {
	n := col.Len()
	times := make([]time.Time, n)
	nulls := make([]bool, n)
	parsed, nonNull := 0, 0

	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			nulls[i] = true
			continue
		}
		nonNull++
		t, ok := parseTemporal(col.StringAt(i))
		if !ok {
			nulls[i] = true
			continue
		}
		times[i] = t
		parsed++
	}

	if nonNull == 0 || float64(parsed)/float64(nonNull) <= o.cfg.TemporalParseThreshold {
		return false
	}
	return col.SetTimes(times, nulls) == nil
}

// applyInteger requires every non-null value to parse as an integer, then
// narrows the column to the smallest width holding its range.
func (o *Optimizer) applyInteger(col *table.Column) bool {
	if col.NonNullCount() == 0 {
		return false
	}
	n := col.Len()
	ints := make([]int64, n)
	nulls := make([]bool, n)

	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			nulls[i] = true
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(col.StringAt(i)), 10, 64)
		if err != nil {
			return false
		}
		ints[i] = v
	}

	if col.SetInts(ints, nulls) != nil {
		return false
	}
	if min, max, ok := col.IntRange(); ok {
		col.SetWidth(narrowWidth(min, max))
	}
	return true
}

func (o *Optimizer) applyFloat(col *table.Column) bool {
	if col.NonNullCount() == 0 {
		return false
	}
	n := col.Len()
	floats := make([]float64, n)
	nulls := make([]bool, n)

	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			nulls[i] = true
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(col.StringAt(i)), 64)
		if err != nil {
			return false
		}
		floats[i] = v
	}
	return col.SetFloats(floats, nulls) == nil
}

// booleanDomains are the accepted value sets. A column qualifies when its
// distinct lowercase values are a non-empty subset of one domain.
var booleanDomains = []map[string]bool{
	{"true": true, "false": false},
	{"yes": true, "no": false},
	{"y": true, "n": false},
	{"1": true, "0": false},
}

func (o *Optimizer) applyBoolean(col *table.Column) bool {
	n := col.Len()
	distinct := make(map[string]struct{}, 4)
	lowered := make([]string, n)
	nulls := make([]bool, n)

	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			nulls[i] = true
			continue
		}
		v := strings.ToLower(strings.TrimSpace(col.StringAt(i)))
		lowered[i] = v
		distinct[v] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	if len(distinct) == 0 {
		return false
	}

	for _, domain := range booleanDomains {
		if !subsetOf(distinct, domain) {
			continue
		}
		bools := make([]bool, n)
		for i := 0; i < n; i++ {
			if !nulls[i] {
				bools[i] = domain[lowered[i]]
			}
		}
		return col.SetBools(bools, nulls) == nil
	}
	return false
}

func subsetOf(set map[string]struct{}, domain map[string]bool) bool {
	for v := range set {
		if _, ok := domain[v]; !ok {
			return false
		}
	}
	return true
}

// markCategorical flags integer, float and text columns whose distinct
// ratio is under the configured maximum or whose distinct count is small.
// Temporal and boolean columns are never categorical.
func (o *Optimizer) markCategorical(col *table.Column) {
	switch col.Kind() {
	case table.KindTime, table.KindBool:
		col.SetCategorical(false)
		return
	}

	if col.NonNullCount() == 0 {
		col.SetCategorical(false)
		return
	}

	distinct := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			distinct[col.Display(i)] = struct{}{}
		}
	}

	// Ratio is over all rows, nulls included, so sparse columns with few
	// distinct values still qualify.
	ratio := float64(len(distinct)) / float64(col.Len())
	col.SetCategorical(ratio < o.cfg.CategoricalMaxRatio || len(distinct) < o.cfg.CategoricalMaxDistinct)
}

// narrowWidth picks the smallest integer width covering [min, max],
// preferring unsigned widths for non-negative ranges.
func narrowWidth(min, max int64) table.IntWidth {
	if min >= 0 {
		switch {
		case max <= 255:
			return table.WidthUint8
		case max <= 65535:
			return table.WidthUint16
		case max <= 4294967295:
			return table.WidthUint32
		}
		return table.WidthInt64
	}
	switch {
	case min >= -128 && max <= 127:
		return table.WidthInt8
	case min >= -32768 && max <= 32767:
		return table.WidthInt16
	case min >= -2147483648 && max <= 2147483647:
		return table.WidthInt32
	}
	return table.WidthInt64
}

// SemanticTypeOf maps a column's storage kind to its semantic type.
func SemanticTypeOf(col *table.Column) models.SemanticType {
	switch col.Kind() {
	case table.KindInt:
		return models.SemanticInteger
	case table.KindFloat:
		return models.SemanticFloat
	case table.KindBool:
		return models.SemanticBoolean
	case table.KindTime:
		return models.SemanticDate
	default:
		return models.SemanticText
	}
}
