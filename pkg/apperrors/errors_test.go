package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	loadErr := &LoadError{Filename: "data.csv", Err: ErrEmptyFile}
	assert.True(t, errors.Is(loadErr, ErrEmptyFile))
	assert.Contains(t, loadErr.Error(), "data.csv")

	profErr := &ProfilingError{Stage: "loading", Err: loadErr}
	assert.True(t, errors.Is(profErr, ErrEmptyFile))

	var target *LoadError
	assert.True(t, errors.As(profErr, &target))
	assert.Equal(t, "data.csv", target.Filename)
}

func TestAnalysisError(t *testing.T) {
	err := &AnalysisError{Column: "age", Err: fmt.Errorf("bad value")}
	assert.Contains(t, err.Error(), "age")
	assert.Contains(t, err.Error(), "bad value")
}
