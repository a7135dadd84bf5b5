// Package executor maps task kinds to the providers that run them.
package executor

import (
	"context"
	"fmt"

	"github.com/quantfoundry/vantage/pkg/models"
)

// Request bundles everything a provider sees for one task run.
type Request struct {
	// Task is a copy of the task being executed. Providers must not
	// assume changes to it are observed by the scheduler.
	Task models.Task
	// UserQuery is the original request that started the run.
	UserQuery string
	// Completed holds the results of already-finished tasks, keyed by
	// task id. Dependencies are always present by the time a task runs.
	Completed map[string]string
}

// Provider executes tasks of one or more kinds. Execute either returns
// the task's result text or an error; it must respect ctx cancellation.
type Provider interface {
	Execute(ctx context.Context, req Request) (string, error)
}

// ExecutionError wraps a provider failure with the task that caused it.
type ExecutionError struct {
	TaskID string
	Kind   string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executor %s failed on task %s: %v", e.Kind, e.TaskID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
