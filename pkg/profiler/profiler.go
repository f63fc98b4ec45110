// Package profiler orchestrates a profiling run end to end: load, type
// optimization, quality analysis, schema synthesis, metadata enrichment
// and optional persistence. Per-column work in the optimization and
// analysis stages fans out over a bounded worker pool and joins before the
// next stage starts.
package profiler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/apperrors"
	"github.com/tabulon-ai/tabulon-engine/pkg/config"
	"github.com/tabulon-ai/tabulon-engine/pkg/enrich"
	"github.com/tabulon-ai/tabulon-engine/pkg/loader"
	"github.com/tabulon-ai/tabulon-engine/pkg/models"
	"github.com/tabulon-ai/tabulon-engine/pkg/quality"
	"github.com/tabulon-ai/tabulon-engine/pkg/schema"
	"github.com/tabulon-ai/tabulon-engine/pkg/store"
	"github.com/tabulon-ai/tabulon-engine/pkg/table"
	"github.com/tabulon-ai/tabulon-engine/pkg/typeopt"
	"github.com/tabulon-ai/tabulon-engine/pkg/workpool"
)

// Engine runs profiling pipelines. Safe for concurrent Profile calls; all
// per-run state lives on the stack.
type Engine struct {
	cfg      *config.Config
	loader   *loader.Loader
	opt      *typeopt.Optimizer
	analyzer *quality.Analyzer
	synth    *schema.Synthesizer
	enricher *enrich.Enricher
	pool     *workpool.Pool
	store    store.Store
	logger   *zap.Logger
}

// New wires an Engine from configuration. st may be nil, in which case
// results are returned but not persisted.
func New(cfg *config.Config, st store.Store, logger *zap.Logger) *Engine {
	workers := cfg.Profile.Workers()
	return &Engine{
		cfg:      cfg,
		loader:   loader.New(cfg.Loader, workers, logger),
		opt:      typeopt.New(cfg.Profile, logger),
		analyzer: quality.New(cfg.Profile, logger),
		synth:    schema.New(logger),
		enricher: enrich.New(logger),
		pool:     workpool.New(workers, logger),
		store:    st,
		logger:   logger.Named("profiler"),
	}
}

// Profile executes the full pipeline over one file. onProgress may be nil.
// On failure the returned error wraps the failing stage; the progress
// callback sees a terminal "failed" report first.
func (e *Engine) Profile(ctx context.Context, data []byte, filename string, onProgress ProgressFunc) (*models.DatasetProfile, error) {
	r := newRun(onProgress)
	start := time.Now()

	fail := func(stage Stage, err error) (*models.DatasetProfile, error) {
		r.fail(err.Error())
		e.logger.Error("Profiling failed",
			zap.String("filename", filename),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return nil, &apperrors.ProfilingError{Stage: string(stage), Err: err}
	}

	// Load.
	r.report(StageLoading, 5, "Loading file")
	tbl, err := e.loader.Load(ctx, data, filename)
	if err != nil {
		return fail(StageLoading, err)
	}
	r.report(StageLoading, 10, fmt.Sprintf("Loaded %d rows, %d columns", tbl.RowCount(), tbl.ColumnCount()))

	// Optimize types, one task per column.
	if err := e.optimizeColumns(ctx, r, tbl); err != nil {
		return fail(StageOptimizing, err)
	}

	// Quality analysis, one task per column, then correlations.
	statsByCol, err := e.analyzeColumns(ctx, r, tbl)
	if err != nil {
		return fail(StageAnalyzing, err)
	}
	correlations := quality.Correlations(tbl)
	r.report(StageAnalyzing, 55, "Quality analysis complete")

	if err := ctx.Err(); err != nil {
		return fail(StageSynthesizing, err)
	}

	// Schema.
	doc, err := e.synth.Synthesize(filename, tbl)
	if err != nil {
		return fail(StageSynthesizing, err)
	}
	r.report(StageSynthesizing, 75, fmt.Sprintf("Synthesized table %s", doc.TableName))

	// Assemble and enrich.
	profile := e.assemble(tbl, doc, statsByCol, correlations, filename)
	for _, p := range profile.Columns {
		if err := e.enricher.Enrich(ctx, p, doc.TableName); err != nil {
			return fail(StageEnriching, err)
		}
	}
	r.report(StageEnriching, 90, "Metadata enrichment complete")

	// Persist.
	if e.store != nil {
		chunk := e.chunkRows(tbl.EstimateRowBytes())
		r.report(StagePersisting, 92, fmt.Sprintf("Persisting in chunks of %d rows", chunk))
		if err := e.store.ReplaceTable(ctx, doc, tbl, chunk); err != nil {
			return fail(StagePersisting, err)
		}
		if err := e.store.SaveProfile(ctx, profile); err != nil {
			return fail(StagePersisting, err)
		}
		r.report(StagePersisting, 95, "Persisted")
	}

	r.report(StageDone, 100, "Profile complete")
	e.logger.Info("Profiling complete",
		zap.String("filename", filename),
		zap.String("table", doc.TableName),
		zap.Int("rows", profile.RowCount),
		zap.Duration("elapsed", time.Since(start)))
	return profile, nil
}

func (e *Engine) optimizeColumns(ctx context.Context, r *run, tbl *table.ColumnarTable) error {
	cols := tbl.Columns()
	tasks := make([]workpool.Task[struct{}], len(cols))
	for i, col := range cols {
		tasks[i] = workpool.Task[struct{}]{
			ID: col.Name(),
			Execute: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, e.opt.Optimize(ctx, col)
			},
		}
	}

	results := workpool.Run(ctx, e.pool, tasks, func(completed, total int) {
		r.report(StageOptimizing, 10+20*completed/total, fmt.Sprintf("Optimized %d/%d columns", completed, total))
	})
	return firstError(results)
}

func (e *Engine) analyzeColumns(ctx context.Context, r *run, tbl *table.ColumnarTable) (map[string]*models.ColumnStats, error) {
	cols := tbl.Columns()
	rows := tbl.RowCount()
	tasks := make([]workpool.Task[*models.ColumnStats], len(cols))
	for i, col := range cols {
		tasks[i] = workpool.Task[*models.ColumnStats]{
			ID: col.Name(),
			Execute: func(ctx context.Context) (*models.ColumnStats, error) {
				return e.analyzer.AnalyzeColumn(ctx, col, rows), nil
			},
		}
	}

	results := workpool.Run(ctx, e.pool, tasks, func(completed, total int) {
		r.report(StageAnalyzing, 30+20*completed/total, fmt.Sprintf("Analyzed %d/%d columns", completed, total))
	})
	if err := firstError(results); err != nil {
		return nil, err
	}

	stats := make(map[string]*models.ColumnStats, len(results))
	for _, res := range results {
		stats[res.ID] = res.Value
	}
	return stats, nil
}

func (e *Engine) assemble(tbl *table.ColumnarTable, doc *models.SchemaDocument, statsByCol map[string]*models.ColumnStats, correlations map[string]map[string]float64, filename string) *models.DatasetProfile {
	cols := tbl.Columns()
	profiles := make([]*models.ColumnProfile, len(cols))
	for i, col := range cols {
		profiles[i] = buildColumnProfile(col, doc.ColumnNames[i], statsByCol[col.Name()])
	}

	return &models.DatasetProfile{
		ID:             uuid.New(),
		TableName:      doc.TableName,
		SourceFilename: filename,
		RowCount:       tbl.RowCount(),
		ColumnCount:    tbl.ColumnCount(),
		Columns:        profiles,
		Quality: &models.QualityReport{
			ColumnStats:    statsByCol,
			RowCount:       tbl.RowCount(),
			TotalSizeBytes: tbl.EstimateTotalBytes(),
			Correlations:   correlations,
		},
		Schema:    doc,
		CreatedAt: time.Now().UTC(),
	}
}

func firstError[T any](results []workpool.Result[T]) error {
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("column %s: %w", res.ID, res.Err)
		}
	}
	return nil
}
