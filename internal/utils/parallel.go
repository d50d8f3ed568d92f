package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelTask is one independent unit of work.
type ParallelTask func(ctx context.Context) error

// RunParallelTasks executes tasks concurrently and returns the first error.
// The context passed to the tasks is cancelled as soon as one of them fails.
func RunParallelTasks(ctx context.Context, tasks ...ParallelTask) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			return task(ctx)
		})
	}
	return g.Wait()
}
