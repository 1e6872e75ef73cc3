// Package fanout runs independent units of work concurrently and reports each
// outcome as a value, so one failing unit never cancels its siblings.
package fanout

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of work producing a T.
type Task[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Result is the outcome of one task.
type Result[T any] struct {
	Name  string
	Value T
	Err   error
}

// DefaultLimit bounds the number of tasks running at once.
const DefaultLimit = 16

// Run executes all tasks and returns their results in task order, regardless
// of completion order. A panicking task is reported as a failed result.
// Cancelling ctx cancels every task still running.
func Run[T any](ctx context.Context, tasks ...Task[T]) []Result[T] {
	return RunLimit(ctx, DefaultLimit, tasks...)
}

// RunLimit is Run with at most limit tasks in flight.
func RunLimit[T any](ctx context.Context, limit int, tasks ...Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = run(ctx, task)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func run[T any](ctx context.Context, task Task[T]) (res Result[T]) {
	res.Name = task.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Value, res.Err = task.Run(ctx)
	return res
}

// Successes returns the values of the successful results in order and logs
// every failure as a warning.
func Successes[T any](logger log.Logger, results []Result[T]) []T {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			level.Warn(logger).Log("task", r.Name, "err", r.Err)
			continue
		}
		values = append(values, r.Value)
	}
	return values
}
