package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrEmptyFile         = errors.New("file contains no data")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// LoadError indicates the loader could not turn raw bytes into a columnar
// table. Terminal; never retried.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// AnalysisError indicates a single column's statistics computation failed.
// Isolated to that column; the run continues with the failure recorded in
// the quality report.
type AnalysisError struct {
	Column string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze column %s: %v", e.Column, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// SchemaError indicates identifier sanitization or type mapping failed.
// Terminal: no correct table can be created.
type SchemaError struct {
	Identifier string
	Err        error
}

func (e *SchemaError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("schema synthesis for %q: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("schema synthesis: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ProfilingError is an orchestrator-level failure, tagged with the stage
// that aborted the run.
type ProfilingError struct {
	Stage string
	Err   error
}

func (e *ProfilingError) Error() string {
	return fmt.Sprintf("profiling failed at stage %s: %v", e.Stage, e.Err)
}

func (e *ProfilingError) Unwrap() error { return e.Err }
