package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently and waits for all of them.
// A limit of zero or less runs every task at once; otherwise at most limit
// tasks are in flight. Failures are collected and returned joined, in task
// order, each prefixed with the task name.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "hdpmaster1", Func: bootstrapMaster},
//	    {Name: "hdpworker1", Func: bootstrapWorker},
//	}
//	if err := RunParallel(ctx, tasks, 4); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}

	sem := semaphore.NewWeighted(int64(limit))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			if err := task.Func(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}
