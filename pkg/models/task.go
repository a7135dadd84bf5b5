package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not run yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted indicates the task produced a result.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task's executor failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusBlocked indicates the task can never run because a
	// dependency failed or is unreachable.
	TaskStatusBlocked TaskStatus = "blocked"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusFailed, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transition is possible.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusBlocked
}

// RootTaskID is the id of the synthetic coordinator task present in
// every graph. It anchors the dependency tree and never runs an executor.
const RootTaskID = "root"

// Executor kinds understood by the built-in registry.
const (
	KindCoordinator      = "coordinator"
	KindDataCollector    = "data_collector"
	KindTechnicalAnalyst = "technical_analyst"
	KindNewsAnalyst      = "news_analyst"
	KindRiskAssessor     = "risk_assessor"
	KindReportGenerator  = "report_generator"
)

// Task represents a unit of analysis work in a task graph.
type Task struct {
	// ID is the unique identifier for this task within its graph.
	ID string `json:"id"`
	// Name is the short display name of the task.
	Name string `json:"name"`
	// Description provides detailed information about the task.
	Description string `json:"description,omitempty"`
	// ExecutorKind selects the capability provider that handles this task.
	ExecutorKind string `json:"executor_kind"`
	// Dependencies lists task IDs that must complete before this task.
	Dependencies []string `json:"dependencies,omitempty"`
	// Parameters are free-form key/value settings passed to the executor.
	Parameters map[string]string `json:"parameters,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Result holds the executor output on completion, or the error text
	// on failure. Empty while the task is pending or blocked.
	Result string `json:"result,omitempty"`
	// BlockedReason explains why a blocked task can never run.
	BlockedReason string `json:"blocked_reason,omitempty"`
	// Attempts is the number of executor invocations so far.
	Attempts int `json:"attempts,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsRoot returns true for the synthetic coordinator task.
func (t *Task) IsRoot() bool {
	return t.ID == RootTaskID
}
