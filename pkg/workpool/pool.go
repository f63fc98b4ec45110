// Package workpool provides the bounded fan-out primitive used for
// per-column tasks. Both optimizer and analyzer stages submit one task per
// column, then join on the full result set before the next stage begins.
package workpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Pool bounds concurrent task execution with a semaphore. Tasks never block
// on one another; only the join barrier in Run waits.
type Pool struct {
	size   int
	logger *zap.Logger
}

// New creates a pool executing at most size tasks concurrently.
func New(size int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size:   size,
		logger: logger.Named("workpool"),
	}
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Task is a unit of work owned exclusively by its goroutine until the
// result is returned.
type Task[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// Result carries one task's outcome.
type Result[T any] struct {
	ID     string
	Value  T
	Err    error
}

// Run executes all tasks with bounded parallelism and joins on completion.
// The returned slice is indexed by submission order. All tasks run even if
// some fail; a cancelled context short-circuits tasks that have not yet
// acquired a slot. onProgress calls are serialized.
func Run[T any](ctx context.Context, pool *Pool, tasks []Task[T], onProgress func(completed, total int)) []Result[T] {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result[T], len(tasks))
	sem := make(chan struct{}, pool.size)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for i := range tasks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task := tasks[i]

			select {
			case sem <- struct{}{}:
				value, err := task.Execute(ctx)
				<-sem
				results[i] = Result[T]{ID: task.ID, Value: value, Err: err}
			case <-ctx.Done():
				results[i] = Result[T]{ID: task.ID, Err: ctx.Err()}
			}

			mu.Lock()
			completed++
			if onProgress != nil {
				onProgress(completed, len(tasks))
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	return results
}
