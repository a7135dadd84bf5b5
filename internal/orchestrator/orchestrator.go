package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/internal/logging"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/internal/report"
	"github.com/quantfoundry/vantage/internal/scheduler"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Plan sources recorded on RunResult.
const (
	PlanSourceGenerated = "generated"
	PlanSourceFallback  = "fallback"
)

// RunResult summarizes one research run.
type RunResult struct {
	// RunID identifies the run in logs and events.
	RunID string
	// Messages holds, in order, the planning summary and the final report.
	Messages []models.Message
	// Completed, Failed, Blocked and Pending are the task counts at the
	// end of the run.
	Completed int
	Failed    int
	Blocked   int
	Pending   int
	// PlanSource is "generated" when the graph came from the plan
	// generator, "fallback" otherwise.
	PlanSource string
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// Report returns the final report text.
func (r *RunResult) Report() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return messageText(r.Messages[len(r.Messages)-1])
}

// PlanningSummary returns the planning overview text.
func (r *RunResult) PlanningSummary() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return messageText(r.Messages[0])
}

// Orchestrator coordinates runs: it generates a plan, builds the task
// graph, schedules execution, and assembles the report. One instance
// can serve multiple sequential runs; its event stream spans them all.
type Orchestrator struct {
	registry  *executor.Registry
	generator plan.Generator
	logger    *logging.DebugLogger
	schedOpts scheduler.Options
	emitter   *EventEmitter
}

// New creates an Orchestrator from the required configuration plus options.
func New(req RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if req.Registry == nil {
		return nil, errors.New("orchestrator requires an executor registry")
	}

	options := &orchestratorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = logging.Nop()
	}

	schedOpts := options.sched
	if schedOpts.Logger == nil {
		schedOpts.Logger = logger
	}

	return &Orchestrator{
		registry:  req.Registry,
		generator: options.generator,
		logger:    logger,
		schedOpts: schedOpts,
		emitter:   NewEventEmitter(options.eventBuffer),
	}, nil
}

// Events returns the run event stream.
func (o *Orchestrator) Events() <-chan OrchestratorEvent {
	return o.emitter.Events()
}

// DroppedEvents returns how many events were dropped on overflow.
func (o *Orchestrator) DroppedEvents() uint64 {
	return o.emitter.DroppedCount()
}

// Close releases the event stream. Call only after the last run.
func (o *Orchestrator) Close() {
	o.emitter.Close()
}

// Run plans the request, executes the resulting graph, and assembles
// the final report. The RunResult is non-nil even when the run ends
// early; the error then explains what cut it short.
func (o *Orchestrator) Run(ctx context.Context, request string) (*RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	o.logger.Log("[run %s] started: %s", runID, request)
	o.emit(OrchestratorEvent{Type: EventRunStarted, RunID: runID, Message: request})

	raw := ""
	if o.generator != nil {
		text, err := o.generator.GeneratePlan(ctx, request)
		if err != nil {
			o.logger.Log("[run %s] plan generation failed: %v, using fallback plan", runID, err)
		} else {
			raw = text
		}
	}

	source := PlanSourceFallback
	if plan.Usable(raw) {
		source = PlanSourceGenerated
	}

	g := plan.Parse(raw, request)
	o.watchGraph(g, runID)

	summary := report.Summary(g)
	o.logger.Log("[run %s] plan ready (%s): %d tasks", runID, source, g.Size())
	o.emit(OrchestratorEvent{Type: EventPlanReady, RunID: runID, Message: summary})

	sched := scheduler.New(o.registry, o.schedOpts)
	counts, runErr := sched.Run(ctx, g, request)

	finalReport := report.Assemble(g, request)

	result := &RunResult{
		RunID: runID,
		Messages: []models.Message{
			assistantMessage(summary),
			assistantMessage(finalReport),
		},
		Completed:  counts.Completed,
		Failed:     counts.Failed,
		Blocked:    counts.Blocked,
		Pending:    counts.Pending,
		PlanSource: source,
		Duration:   time.Since(start),
	}

	o.logger.Log("[run %s] done in %s: %d completed, %d failed, %d blocked",
		runID, result.Duration.Round(time.Millisecond), result.Completed, result.Failed, result.Blocked)
	o.emit(OrchestratorEvent{
		Type:    EventRunDone,
		RunID:   runID,
		Message: fmt.Sprintf("%d completed, %d failed, %d blocked", result.Completed, result.Failed, result.Blocked),
		Error:   runErr,
	})

	return result, runErr
}

// RunMessages normalizes a structured transcript to a single request
// string and runs it.
func (o *Orchestrator) RunMessages(ctx context.Context, msgs []models.Message) (*RunResult, error) {
	request := models.RequestFromMessages(msgs)
	if request == "" {
		return nil, errors.New("messages contain no text to analyze")
	}
	return o.Run(ctx, request)
}

// watchGraph forwards task status changes to the event stream and the
// debug log. The scheduler goroutine is the only caller of the hook.
func (o *Orchestrator) watchGraph(g *graph.TaskGraph, runID string) {
	g.OnStatusChange(func(change graph.StatusChange) {
		o.logger.Log("[run %s] task %s (%s): %s -> %s", runID, change.TaskID, change.TaskName, change.From, change.To)

		switch change.To {
		case models.TaskStatusCompleted:
			o.emit(OrchestratorEvent{
				Type:     EventTaskCompleted,
				RunID:    runID,
				TaskID:   change.TaskID,
				TaskName: change.TaskName,
				Result:   change.Result,
			})
		case models.TaskStatusFailed:
			o.emit(OrchestratorEvent{
				Type:     EventTaskFailed,
				RunID:    runID,
				TaskID:   change.TaskID,
				TaskName: change.TaskName,
				Error:    errors.New(change.Result),
			})
		case models.TaskStatusBlocked:
			o.emit(OrchestratorEvent{
				Type:     EventTaskBlocked,
				RunID:    runID,
				TaskID:   change.TaskID,
				TaskName: change.TaskName,
				Message:  change.Reason,
			})
		}
	})
}

func (o *Orchestrator) emit(ev OrchestratorEvent) {
	ev.Timestamp = time.Now()
	o.emitter.Emit(ev)
}

func assistantMessage(text string) models.Message {
	return models.Message{
		Role: "assistant",
		Segments: []models.Segment{
			{Type: models.SegmentTypeText, Text: text},
		},
	}
}

func messageText(msg models.Message) string {
	for _, seg := range msg.Segments {
		if seg.Type == models.SegmentTypeText {
			return seg.Text
		}
	}
	return ""
}
