// Package quality computes per-column data quality statistics: null and
// distinct counts, numeric summary statistics, outlier counts, and special
// value patterns such as emails or URLs. A bounded cache keyed by the
// sampled-values tuple keeps repeated pattern matching cheap across
// columns that share samples.
package quality

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/apperrors"
	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
)

// Analyzer produces ColumnStats for typed columns. It is safe for
// concurrent use; the pattern cache is the only shared state.
type Analyzer struct {
	cfg    config.ProfileConfig
	cache  *patternCache
	logger *zap.Logger
}

func New(cfg config.ProfileConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		cache:  newPatternCache(cfg.PatternCacheSize),
		logger: logger.Named("quality"),
	}
}

// AnalyzeColumn computes the quality statistics for one column. A failure
// is recorded on the stats rather than returned, so one bad column never
// aborts the rest of the table.
func (a *Analyzer) AnalyzeColumn(ctx context.Context, col *table.Column, rowCount int) (stats *models.ColumnStats) {
	stats = &models.ColumnStats{}
	defer func() {
		if r := recover(); r != nil {
			err := &apperrors.AnalysisError{Column: col.Name(), Err: fmt.Errorf("panic: %v", r)}
			stats.Error = err.Error()
			a.logger.Error("Column analysis failed",
				zap.String("column", col.Name()),
				zap.Any("panic", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		stats.Error = (&apperrors.AnalysisError{Column: col.Name(), Err: err}).Error()
		return stats
	}

	stats.MissingCount = col.NullCount()
	if rowCount > 0 {
		stats.MissingPct = float64(stats.MissingCount) / float64(rowCount) * 100
	}

	distinct := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			distinct[col.Display(i)] = struct{}{}
		}
	}
	stats.UniqueCount = len(distinct)
	if rowCount > 0 {
		stats.UniquePct = float64(stats.UniqueCount) / float64(rowCount) * 100
	}

	switch col.Kind() {
	case table.KindInt, table.KindFloat:
		a.numericStats(col, stats)
	case table.KindString:
		stats.SpecialPattern = a.DetectPattern(col)
	}
	return stats
}

func (a *Analyzer) numericStats(col *table.Column, stats *models.ColumnStats) {
	var values []float64
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			values = append(values, col.FloatAt(i))
		}
	}
	if len(values) == 0 {
		return
	}

	m := mean(values)
	stats.Min = ptr(minOf(values))
	stats.Max = ptr(maxOf(values))
	stats.Mean = ptr(m)
	stats.Median = ptr(median(values))
	stats.StdDev = ptr(sampleStdDev(values, m))
	stats.Outliers = countOutliers(values, a.cfg.OutlierThreshold)
}

// DetectPattern samples up to the configured number of non-null values and
// returns the majority special pattern, or "" when no pattern dominates.
func (a *Analyzer) DetectPattern(col *table.Column) string {
	sample := make([]string, 0, a.cfg.PatternSampleSize)
	for i := 0; i < col.Len() && len(sample) < a.cfg.PatternSampleSize; i++ {
		if !col.IsNull(i) {
			sample = append(sample, col.StringAt(i))
		}
	}
	return detectPattern(a.cache, sample, a.cfg.PatternMatchThreshold)
}

// CachedSamples reports how many distinct sample tuples the pattern cache
// holds.
func (a *Analyzer) CachedSamples() int {
	return a.cache.len()
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func ptr(v float64) *float64 { return &v }
