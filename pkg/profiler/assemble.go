package profiler

import (
	"sort"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/schema"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
	"github.com/tabulon-ai/tabulon-engine/pkg/typeopt"
)

const (
	maxSampleValues = 5
	maxTopValues    = 10
)

// buildColumnProfile merges the typed column, its quality stats and its
// sanitized name into one profile. Sample values are the first non-null
// values in row order so repeated runs agree.
func buildColumnProfile(col *table.Column, name string, stats *models.ColumnStats) *models.ColumnProfile {
	p := &models.ColumnProfile{
		Name:          name,
		SourceName:    col.Name(),
		SemanticType:  typeopt.SemanticTypeOf(col),
		SQLType:       schema.SQLTypeFor(col),
		Nullable:      col.NullCount() > 0,
		IsCategorical: col.IsCategorical(),
		SampleValues:  sampleValues(col),
	}

	if stats != nil {
		p.UniqueCount = stats.UniqueCount
		p.NullCount = stats.MissingCount
		p.Min = stats.Min
		p.Max = stats.Max
		p.Mean = stats.Mean
		p.Median = stats.Median
		p.StdDev = stats.StdDev
		p.SpecialPattern = stats.SpecialPattern
		p.AnalysisError = stats.Error
	}

	if col.IsCategorical() {
		p.EnumValues = enumValues(col)
		p.TopValues = topValues(col)
	}
	return p
}

func sampleValues(col *table.Column) []string {
	out := make([]string, 0, maxSampleValues)
	for i := 0; i < col.Len() && len(out) < maxSampleValues; i++ {
		if !col.IsNull(i) {
			out = append(out, col.Display(i))
		}
	}
	return out
}

func enumValues(col *table.Column) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Display(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// topValues returns the most frequent values, highest count first, ties
// broken by first appearance in the column.
func topValues(col *table.Column) []models.ValueCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Display(i)
		if counts[v] == 0 {
			firstSeen[v] = i
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	if len(order) > maxTopValues {
		order = order[:maxTopValues]
	}
	out := make([]models.ValueCount, len(order))
	for i, v := range order {
		out[i] = models.ValueCount{Value: v, Count: counts[v]}
	}
	return out
}
