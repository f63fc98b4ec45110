package profiler

import "fmt"

// Stage names the phases of a profiling run, in execution order. Failed is
// terminal; a run never leaves it.
type Stage string

const (
	StagePending      Stage = "pending"
	StageLoading      Stage = "loading"
	StageOptimizing   Stage = "optimizing_types"
	StageAnalyzing    Stage = "analyzing_quality"
	StageSynthesizing Stage = "synthesizing_schema"
	StageEnriching    Stage = "enriching_metadata"
	StagePersisting   Stage = "persisting"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

var stageOrder = map[Stage]int{
	StagePending:      0,
	StageLoading:      1,
	StageOptimizing:   2,
	StageAnalyzing:    3,
	StageSynthesizing: 4,
	StageEnriching:    5,
	StagePersisting:   6,
	StageDone:         7,
}

// ProgressFunc receives stage transitions and within-stage progress.
// percent is monotonically non-decreasing over a run, 0 to 100.
type ProgressFunc func(stage Stage, percent int, message string)

// run tracks the state machine for one profiling call. Stages only move
// forward; a backward transition is rejected.
type run struct {
	stage      Stage
	percent    int
	onProgress ProgressFunc
}

func newRun(onProgress ProgressFunc) *run {
	return &run{stage: StagePending, onProgress: onProgress}
}

func (r *run) report(stage Stage, percent int, message string) error {
	if r.stage == StageFailed {
		return fmt.Errorf("run already failed")
	}
	if stageOrder[stage] < stageOrder[r.stage] {
		return fmt.Errorf("stage %s cannot follow %s", stage, r.stage)
	}
	r.stage = stage
	if percent > r.percent {
		r.percent = percent
	}
	if r.onProgress != nil {
		r.onProgress(stage, r.percent, message)
	}
	return nil
}

func (r *run) fail(message string) {
	r.stage = StageFailed
	if r.onProgress != nil {
		r.onProgress(StageFailed, r.percent, message)
	}
}
