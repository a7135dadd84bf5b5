// Package scheduler drains a task graph by dispatching ready tasks to
// their capability providers until no further progress is possible.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/internal/logging"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Defaults applied when an Options field is zero.
const (
	DefaultMaxParallel = 3
	DefaultMaxAttempts = 2
	DefaultTaskTimeout = 2 * time.Minute
	DefaultRunTimeout  = 10 * time.Minute
)

// Options configure a scheduling run.
type Options struct {
	// MaxParallel caps how many tasks run concurrently.
	MaxParallel int
	// MaxAttempts is the number of executor invocations a task gets
	// before it is marked failed.
	MaxAttempts int
	// TaskTimeout bounds a single executor invocation.
	TaskTimeout time.Duration
	// RunTimeout bounds the whole run on top of the caller's context.
	RunTimeout time.Duration
	// Logger receives per-iteration debug lines. Nil disables.
	Logger *logging.DebugLogger
}

func (o Options) withDefaults() Options {
	if o.MaxParallel <= 0 {
		o.MaxParallel = DefaultMaxParallel
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = DefaultTaskTimeout
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}
	return o
}

// GraphStarvationError reports pending tasks that can never become
// ready because their dependency chains contain a cycle or a dangling
// reference. The graph they belong to holds any work that did finish.
type GraphStarvationError struct {
	// TaskIDs are the starved task ids, in graph insertion order.
	TaskIDs []string
}

func (e *GraphStarvationError) Error() string {
	return fmt.Sprintf("task graph starved: %s can never run", strings.Join(e.TaskIDs, ", "))
}

// Result summarizes one drained graph.
type Result struct {
	Completed int
	Failed    int
	Blocked   int
	Pending   int
	Duration  time.Duration
}

// Scheduler drains one task graph at a time. It owns all graph mutation
// during a run: workers only execute providers and report outcomes over
// the completion channel, so the graph needs no locking.
type Scheduler struct {
	registry *executor.Registry
	opts     Options
}

// New creates a Scheduler dispatching to the given registry.
func New(registry *executor.Registry, opts Options) *Scheduler {
	return &Scheduler{registry: registry, opts: opts.withDefaults()}
}

// completion is the single message a worker sends back to the run loop.
type completion struct {
	taskID   string
	attempts int
	result   string
	err      error
}

// Run executes the graph to quiescence: every task ends completed,
// failed, or blocked, or remains pending only when the run is canceled
// early. Returns a GraphStarvationError when pending tasks remain that
// can never run, and the context error when the run is canceled; both
// come alongside a Result for the work that did finish.
func (s *Scheduler) Run(ctx context.Context, g *graph.TaskGraph, request string) (*Result, error) {
	start := time.Now()

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	inflight := make(map[string]bool)
	completionCh := make(chan completion, s.opts.MaxParallel)
	completed := make(map[string]string)

	for {
		if err := ctx.Err(); err != nil {
			return s.abort(g, err, inflight, completionCh, completed, start)
		}

		ready := s.nextReady(g, inflight)

		// The root anchors the graph and completes without an
		// executor call, which makes its dependents ready.
		rootDone := false
		for _, task := range ready {
			if !task.IsRoot() {
				continue
			}
			s.logf("[scheduler] auto-completing root task")
			if err := g.SetStatus(task.ID, models.TaskStatusCompleted, ""); err != nil {
				log.Printf("[scheduler] complete root: %v", err)
			}
			completed[task.ID] = ""
			rootDone = true
		}
		if rootDone {
			continue
		}

		if len(ready) == 0 && len(inflight) == 0 {
			pending := g.Pending()
			if len(pending) == 0 {
				s.logf("[scheduler] run complete in %s", time.Since(start))
				return s.summarize(g, start), nil
			}
			return s.summarize(g, start), s.starve(g, pending)
		}

		// Dispatch into free slots; tasks past the cap stay ready
		// and are picked up as completions free slots.
		slots := s.opts.MaxParallel - len(inflight)
		if slots < 0 {
			slots = 0
		}
		if len(ready) > slots {
			ready = ready[:slots]
		}

		for _, task := range ready {
			inflight[task.ID] = true
			s.logf("[scheduler] dispatching %s (%s) to %s, %d in flight",
				task.ID, task.Name, task.ExecutorKind, len(inflight))
			go s.execute(ctx, *task, request, snapshot(completed), completionCh)
		}

		select {
		case <-ctx.Done():
			// Handled at the top of the loop.
		case c := <-completionCh:
			delete(inflight, c.taskID)
			s.apply(g, c, completed)
		}
	}
}

// nextReady returns ready tasks not already handed to a worker.
func (s *Scheduler) nextReady(g *graph.TaskGraph, inflight map[string]bool) []*models.Task {
	var next []*models.Task
	for _, task := range g.Ready() {
		if !inflight[task.ID] {
			next = append(next, task)
		}
	}
	return next
}

// apply records one worker outcome. Runs only on the scheduling
// goroutine, which is the graph's single writer.
func (s *Scheduler) apply(g *graph.TaskGraph, c completion, completed map[string]string) {
	if task := g.Task(c.taskID); task != nil {
		task.Attempts = c.attempts
	}

	if c.err != nil {
		s.logf("[scheduler] task %s failed after %d attempt(s): %v", c.taskID, c.attempts, c.err)
		if err := g.SetStatus(c.taskID, models.TaskStatusFailed, c.err.Error()); err != nil {
			log.Printf("[scheduler] record failure for %s: %v", c.taskID, err)
		}
		for _, depID := range g.TransitiveDependents(c.taskID) {
			if err := g.Block(depID, "dependency_failed: "+c.taskID); err != nil {
				log.Printf("[scheduler] block %s: %v", depID, err)
			}
		}
		return
	}

	s.logf("[scheduler] task %s completed after %d attempt(s)", c.taskID, c.attempts)
	if err := g.SetStatus(c.taskID, models.TaskStatusCompleted, c.result); err != nil {
		log.Printf("[scheduler] record completion for %s: %v", c.taskID, err)
	}
	completed[c.taskID] = c.result
}

// abort drains in-flight workers after cancellation and stops dispatch.
// Workers observe the canceled context and report promptly; tasks they
// fail carry the context error as their result.
func (s *Scheduler) abort(g *graph.TaskGraph, cause error, inflight map[string]bool, completionCh chan completion, completed map[string]string, start time.Time) (*Result, error) {
	s.logf("[scheduler] run canceled: %v, draining %d in-flight task(s)", cause, len(inflight))
	for len(inflight) > 0 {
		c := <-completionCh
		delete(inflight, c.taskID)
		s.apply(g, c, completed)
	}
	return s.summarize(g, start), cause
}

// starve marks every remaining pending task blocked and reports them.
// Reached only when nothing is ready and nothing is in flight, so the
// pending set can never shrink on its own.
func (s *Scheduler) starve(g *graph.TaskGraph, pending []*models.Task) error {
	ids := make([]string, 0, len(pending))
	for _, task := range pending {
		ids = append(ids, task.ID)
	}
	s.logf("[scheduler] starvation: %d pending task(s) can never run: %v", len(ids), ids)

	for _, task := range pending {
		reason := "unreachable: waiting on " + strings.Join(unmetDeps(g, task), ", ")
		if err := g.Block(task.ID, reason); err != nil {
			log.Printf("[scheduler] block starved task %s: %v", task.ID, err)
		}
	}

	return &GraphStarvationError{TaskIDs: ids}
}

// unmetDeps lists the dependency ids keeping a task from readiness.
// Non-empty for every starved task: a pending task with all
// dependencies completed would have been ready.
func unmetDeps(g *graph.TaskGraph, task *models.Task) []string {
	var unmet []string
	for _, depID := range task.Dependencies {
		dep := g.Task(depID)
		if dep == nil || dep.Status != models.TaskStatusCompleted {
			unmet = append(unmet, depID)
		}
	}
	return unmet
}

func (s *Scheduler) summarize(g *graph.TaskGraph, start time.Time) *Result {
	counts := g.Counts()
	return &Result{
		Completed: counts[models.TaskStatusCompleted],
		Failed:    counts[models.TaskStatusFailed],
		Blocked:   counts[models.TaskStatusBlocked],
		Pending:   counts[models.TaskStatusPending],
		Duration:  time.Since(start),
	}
}

// execute runs one task to a final outcome, retrying within the attempt
// budget, and reports it on the completion channel. It never touches
// the graph.
func (s *Scheduler) execute(ctx context.Context, task models.Task, request string, prior map[string]string, completionCh chan<- completion) {
	var lastErr error

	attempts := 0
	for attempts < s.opts.MaxAttempts {
		attempts++

		result, err := s.invoke(ctx, task, request, prior)
		if err == nil {
			completionCh <- completion{taskID: task.ID, attempts: attempts, result: result}
			return
		}

		lastErr = err
		s.logf("[scheduler] task %s attempt %d/%d: %v", task.ID, attempts, s.opts.MaxAttempts, err)

		if ctx.Err() != nil {
			// Run canceled; another attempt cannot succeed.
			break
		}
	}

	completionCh <- completion{taskID: task.ID, attempts: attempts, err: lastErr}
}

// invoke performs a single provider call under the per-task deadline.
// The provider runs on its own goroutine so a stuck call cannot hold
// the worker past the deadline.
func (s *Scheduler) invoke(ctx context.Context, task models.Task, request string, prior map[string]string) (string, error) {
	provider, err := s.registry.Resolve(task.ExecutorKind)
	if err != nil {
		return "", &executor.ExecutionError{TaskID: task.ID, Kind: task.ExecutorKind, Err: err}
	}

	taskCtx := ctx
	if s.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, s.opts.TaskTimeout)
		defer cancel()
	}

	req := executor.Request{
		Task:      task,
		UserQuery: request,
		Completed: prior,
	}

	type outcome struct {
		text string
		err  error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		text, err := provider.Execute(taskCtx, req)
		resultCh <- outcome{text: text, err: err}
	}()

	select {
	case <-taskCtx.Done():
		return "", &executor.ExecutionError{TaskID: task.ID, Kind: task.ExecutorKind, Err: taskCtx.Err()}
	case out := <-resultCh:
		if out.err != nil {
			return "", &executor.ExecutionError{TaskID: task.ID, Kind: task.ExecutorKind, Err: out.err}
		}
		return out.text, nil
	}
}

// snapshot copies prior results so workers never share the live map.
func snapshot(results map[string]string) map[string]string {
	copied := make(map[string]string, len(results))
	for id, text := range results {
		copied[id] = text
	}
	return copied
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	s.opts.Logger.Log(format, args...)
}
