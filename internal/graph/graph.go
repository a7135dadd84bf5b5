// Package graph holds the task dependency graph for a single analysis run.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantfoundry/vantage/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the task graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// StatusChange describes a single task status transition.
type StatusChange struct {
	// TaskID is the ID of the task that changed.
	TaskID string
	// TaskName is the display name of the task.
	TaskName string
	// From is the status before the change.
	From models.TaskStatus
	// To is the status after the change.
	To models.TaskStatus
	// Result carries the executor output or error text, if any.
	Result string
	// Reason explains a blocked transition.
	Reason string
}

// TaskGraph is the owning collection of tasks for one analysis run,
// rooted at the synthetic coordinator task. Topology is fixed after
// construction; only status, result, and blocked-reason fields mutate.
// Mutation is unsynchronized: the scheduling goroutine that owns the
// graph must be its only writer.
type TaskGraph struct {
	// nodes maps task ID to the task itself.
	nodes map[string]*models.Task
	// order holds task IDs in insertion order for stable iteration.
	order []string
	// notify, when set, receives every status transition.
	notify func(StatusChange)
}

// New creates an empty task graph.
func New() *TaskGraph {
	return &TaskGraph{
		nodes: make(map[string]*models.Task),
	}
}

// OnStatusChange registers the observer for status transitions. Set it
// before scheduling starts; the callback runs on the writer goroutine.
func (g *TaskGraph) OnStatusChange(fn func(StatusChange)) {
	g.notify = fn
}

// Add registers a task as a node. Returns an error for an empty or
// duplicate id. Dependency ids are not checked here because plans may
// reference tasks declared later.
func (g *TaskGraph) Add(task *models.Task) error {
	if task.ID == "" {
		return errors.New("task id must not be empty")
	}
	if _, exists := g.nodes[task.ID]; exists {
		return fmt.Errorf("duplicate task id %q", task.ID)
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	g.nodes[task.ID] = task
	g.order = append(g.order, task.ID)
	return nil
}

// Root returns the synthetic coordinator task, or nil if absent.
func (g *TaskGraph) Root() *models.Task {
	return g.nodes[models.RootTaskID]
}

// Task returns the task for a given ID, or nil if not found.
func (g *TaskGraph) Task(id string) *models.Task {
	return g.nodes[id]
}

// Tasks returns all tasks in insertion order.
func (g *TaskGraph) Tasks() []*models.Task {
	tasks := make([]*models.Task, 0, len(g.order))
	for _, id := range g.order {
		tasks = append(tasks, g.nodes[id])
	}
	return tasks
}

// Size returns the number of tasks in the graph, root included.
func (g *TaskGraph) Size() int {
	return len(g.nodes)
}

// Ready returns every pending task whose declared dependencies all map
// to completed tasks. A task with no dependencies is immediately ready.
// A dependency id that does not exist in the graph is unsatisfiable, so
// its dependent never becomes ready. Results are in insertion order.
func (g *TaskGraph) Ready() []*models.Task {
	var ready []*models.Task

	for _, id := range g.order {
		task := g.nodes[id]
		if task.Status != models.TaskStatusPending {
			continue
		}

		allDepsComplete := true
		for _, depID := range task.Dependencies {
			dep, exists := g.nodes[depID]
			if !exists || dep.Status != models.TaskStatusCompleted {
				allDepsComplete = false
				break
			}
		}

		if allDepsComplete {
			ready = append(ready, task)
		}
	}

	return ready
}

// Pending returns tasks that have not reached a terminal state, in
// insertion order.
func (g *TaskGraph) Pending() []*models.Task {
	var pending []*models.Task
	for _, id := range g.order {
		if g.nodes[id].Status == models.TaskStatusPending {
			pending = append(pending, g.nodes[id])
		}
	}
	return pending
}

// Counts returns the number of tasks per status.
func (g *TaskGraph) Counts() map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int)
	for _, task := range g.nodes {
		counts[task.Status]++
	}
	return counts
}

// SetStatus records a status transition for the given task. It is
// idempotent: repeating a call with the same arguments changes nothing
// and emits no event. An unknown id returns an error rather than
// panicking so callers can log and continue. Result is stored only for
// completed and failed transitions. A blocked status is delegated to
// Block with the result text as the reason.
func (g *TaskGraph) SetStatus(id string, status models.TaskStatus, result string) error {
	if status == models.TaskStatusBlocked {
		return g.Block(id, result)
	}

	task, exists := g.nodes[id]
	if !exists {
		return fmt.Errorf("unknown task %q", id)
	}
	if !status.Valid() {
		return fmt.Errorf("invalid status %q for task %q", status, id)
	}
	if task.Status == status && task.Result == result {
		return nil
	}

	from := task.Status
	task.Status = status
	if status == models.TaskStatusCompleted || status == models.TaskStatusFailed {
		task.Result = result
		now := time.Now()
		task.CompletedAt = &now
	}

	g.emit(StatusChange{
		TaskID:   task.ID,
		TaskName: task.Name,
		From:     from,
		To:       status,
		Result:   task.Result,
	})
	return nil
}

// Block marks a pending task as permanently unrunnable with a reason.
// Blocking a task that already reached a terminal state is a no-op.
func (g *TaskGraph) Block(id, reason string) error {
	task, exists := g.nodes[id]
	if !exists {
		return fmt.Errorf("unknown task %q", id)
	}
	if task.Status != models.TaskStatusPending {
		return nil
	}

	from := task.Status
	task.Status = models.TaskStatusBlocked
	task.BlockedReason = reason

	g.emit(StatusChange{
		TaskID:   task.ID,
		TaskName: task.Name,
		From:     from,
		To:       models.TaskStatusBlocked,
		Reason:   reason,
	})
	return nil
}

func (g *TaskGraph) emit(change StatusChange) {
	if g.notify != nil {
		g.notify(change)
	}
}

// Dependents returns the IDs of tasks that directly depend on the given task.
func (g *TaskGraph) Dependents(id string) []string {
	var dependents []string
	for _, candidate := range g.order {
		for _, depID := range g.nodes[candidate].Dependencies {
			if depID == id {
				dependents = append(dependents, candidate)
				break
			}
		}
	}
	return dependents
}

// TransitiveDependents returns the IDs of every task that depends on
// the given task directly or through a chain, in breadth-first order.
func (g *TaskGraph) TransitiveDependents(id string) []string {
	seen := make(map[string]bool)
	var result []string

	queue := g.Dependents(id)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		result = append(result, next)
		queue = append(queue, g.Dependents(next)...)
	}

	return result
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *TaskGraph) HasCycle() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1 // Mark as in progress.

		for _, depID := range g.nodes[id].Dependencies {
			if _, exists := g.nodes[depID]; !exists {
				// Dangling reference, not a cycle.
				continue
			}
			switch colors[depID] {
			case 1:
				// Found a back edge - cycle detected.
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
			// color == 2 means already processed, skip.
		}

		colors[id] = 2 // Mark as done.
		return false
	}

	for _, id := range g.order {
		if colors[id] == 0 {
			if visit(id) {
				return true
			}
		}
	}

	return false
}

// Validate reports structural problems that would starve the scheduler:
// dangling dependency references and circular dependencies. Advisory
// only; the scheduler detects both at run time as starvation.
func (g *TaskGraph) Validate() []string {
	var problems []string

	for _, id := range g.order {
		for _, depID := range g.nodes[id].Dependencies {
			if _, exists := g.nodes[depID]; !exists {
				problems = append(problems, fmt.Sprintf("task %s depends on unknown task %s", id, depID))
			}
		}
	}

	if g.HasCycle() {
		problems = append(problems, ErrCycleDetected.Error())
	}

	return problems
}
