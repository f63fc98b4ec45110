package profiler

import (
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

// chunkRows sizes ingestion batches to a fraction of available memory,
// clamped to the configured row bounds. A memory probe failure falls back
// to the upper bound.
func (e *Engine) chunkRows(rowBytes int64) int {
	if rowBytes < 1 {
		rowBytes = 1
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		e.logger.Warn("Memory probe failed, using maximum chunk size", zap.Error(err))
		return e.cfg.Profile.MaxChunkRows
	}

	budget := float64(vm.Available) * e.cfg.Profile.MemoryFraction
	rows := int(budget / float64(rowBytes))
	if rows < e.cfg.Profile.MinChunkRows {
		return e.cfg.Profile.MinChunkRows
	}
	if rows > e.cfg.Profile.MaxChunkRows {
		return e.cfg.Profile.MaxChunkRows
	}
	return rows
}
