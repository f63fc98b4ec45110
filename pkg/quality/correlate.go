package quality

import (
	"math"

	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// Correlations builds a Pearson correlation matrix over the table's
// integer and float columns. A matrix needs at least two numeric columns;
// otherwise nil. Each pair is computed over the rows where both values are
// present; pairs with fewer than two such rows or with a constant side are
// omitted from the matrix. The diagonal is always 1.
func Correlations(tbl *table.ColumnarTable) map[string]map[string]float64 {
	var numeric []*table.Column
	for _, col := range tbl.Columns() {
		if col.Kind() == table.KindInt || col.Kind() == table.KindFloat {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) < 2 {
		return nil
	}

	matrix := make(map[string]map[string]float64, len(numeric))
	for _, col := range numeric {
		matrix[col.Name()] = map[string]float64{col.Name(): 1}
	}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r, ok := pearson(numeric[i], numeric[j])
			if !ok {
				continue
			}
			matrix[numeric[i].Name()][numeric[j].Name()] = r
			matrix[numeric[j].Name()][numeric[i].Name()] = r
		}
	}
	return matrix
}

func pearson(a, b *table.Column) (float64, bool) {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) || b.IsNull(i) {
			continue
		}
		xs = append(xs, a.FloatAt(i))
		ys = append(ys, b.FloatAt(i))
	}
	if len(xs) < 2 {
		return 0, false
	}

	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
