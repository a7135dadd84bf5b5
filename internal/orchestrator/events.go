// Package orchestrator coordinates one research run end to end: plan
// generation, graph construction, scheduling, and report assembly.
package orchestrator

import (
	"time"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventRunStarted indicates a run has begun planning.
	EventRunStarted EventType = "run_started"
	// EventPlanReady indicates the task graph has been built.
	EventPlanReady EventType = "plan_ready"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed after its attempt budget.
	EventTaskFailed EventType = "task_failed"
	// EventTaskBlocked indicates a task can never run.
	EventTaskBlocked EventType = "task_blocked"
	// EventRunDone indicates the run has finished, cleanly or not.
	EventRunDone EventType = "run_done"
)

// OrchestratorEvent represents an event emitted during a run. Events
// are advisory; dropping one never affects the run itself.
type OrchestratorEvent struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the run that produced the event.
	RunID string
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// TaskName is the display name of the related task, if applicable.
	TaskName string
	// Message provides additional context about the event.
	Message string
	// Result carries the task result for completion events.
	Result string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
