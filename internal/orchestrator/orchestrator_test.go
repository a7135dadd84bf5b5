package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/internal/scheduler"
	"github.com/quantfoundry/vantage/pkg/models"
)

// cannedRegistry builds the offline registry all end-to-end tests run
// against. Canned providers never fail, so outcomes are deterministic.
func cannedRegistry(t *testing.T) *executor.Registry {
	t.Helper()
	catalog, err := market.Load()
	if err != nil {
		t.Fatalf("market.Load: %v", err)
	}
	return executor.NewBuiltinRegistry(catalog)
}

func testSchedulerOptions() scheduler.Options {
	return scheduler.Options{
		MaxParallel: 2,
		MaxAttempts: 1,
		TaskTimeout: 5 * time.Second,
		RunTimeout:  30 * time.Second,
	}
}

type failingProvider struct{}

func (failingProvider) Execute(context.Context, executor.Request) (string, error) {
	return "", errors.New("feed unavailable")
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(RequiredConfig{}); err == nil {
		t.Fatal("New() with no registry should fail")
	}
}

func TestRunWithFallbackPlan(t *testing.T) {
	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	res, err := o.Run(context.Background(), "Give me a full analysis of 0700.HK")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.PlanSource != PlanSourceFallback {
		t.Errorf("PlanSource = %q, want %q", res.PlanSource, PlanSourceFallback)
	}
	// Root plus the five default tasks.
	if res.Completed != 6 {
		t.Errorf("Completed = %d, want 6", res.Completed)
	}
	if res.Failed != 0 || res.Blocked != 0 || res.Pending != 0 {
		t.Errorf("Failed/Blocked/Pending = %d/%d/%d, want 0/0/0",
			res.Failed, res.Blocked, res.Pending)
	}
	if res.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", res.Duration)
	}

	if len(res.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(res.Messages))
	}
	summary := res.PlanningSummary()
	if !strings.Contains(summary, "## Plan") {
		t.Errorf("planning summary missing plan header:\n%s", summary)
	}
	if !strings.Contains(summary, "Technical Analysis") {
		t.Errorf("planning summary missing default task:\n%s", summary)
	}

	report := res.Report()
	if !strings.Contains(report, "# Investment Analysis Report") {
		t.Errorf("report missing title:\n%s", report)
	}
	if !strings.Contains(report, "**Collect Market Data**:") {
		t.Errorf("report missing data collection section:\n%s", report)
	}
	if strings.Contains(report, "Incomplete work") {
		t.Errorf("clean run should not report incomplete work:\n%s", report)
	}
}

func TestRunWithGeneratedPlan(t *testing.T) {
	planText := `<task_tree>
  <root_task>
    <name>Tencent Deep Dive</name>
    <description>Full review of Tencent</description>
  </root_task>
  <tasks>
    <task>
      <id>collect</id>
      <name>Quote Collection</name>
      <description>Fetch quote and fundamentals for 0700.HK</description>
      <executor_type>data_collector</executor_type>
      <dependencies></dependencies>
      <parameters><symbol>0700.HK</symbol></parameters>
    </task>
    <task>
      <id>summarize</id>
      <name>Final Write-Up</name>
      <description>Fold the collected data into a recommendation</description>
      <executor_type>report_generator</executor_type>
      <dependencies>collect</dependencies>
    </task>
  </tasks>
</task_tree>`

	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithGenerator(plan.StaticGenerator{Text: planText}),
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	res, err := o.Run(context.Background(), "Deep dive on Tencent")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.PlanSource != PlanSourceGenerated {
		t.Errorf("PlanSource = %q, want %q", res.PlanSource, PlanSourceGenerated)
	}
	// Root plus the two planned tasks.
	if res.Completed != 3 {
		t.Errorf("Completed = %d, want 3", res.Completed)
	}

	report := res.Report()
	for _, section := range []string{"**Quote Collection**:", "**Final Write-Up**:"} {
		if !strings.Contains(report, section) {
			t.Errorf("report missing section %q:\n%s", section, report)
		}
	}
}

func TestRunFallsBackWhenGeneratorFails(t *testing.T) {
	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithGenerator(failingGenerator{}),
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	res, err := o.Run(context.Background(), "analyze 0700.HK")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PlanSource != PlanSourceFallback {
		t.Errorf("PlanSource = %q, want %q", res.PlanSource, PlanSourceFallback)
	}
	if res.Completed != 6 {
		t.Errorf("Completed = %d, want 6", res.Completed)
	}
}

type failingGenerator struct{}

func (failingGenerator) GeneratePlan(context.Context, string) (string, error) {
	return "", errors.New("model offline")
}

func TestRunEmitsEvents(t *testing.T) {
	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := o.Run(context.Background(), "analyze 0700.HK")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	o.Close()

	var events []OrchestratorEvent
	for ev := range o.Events() {
		events = append(events, ev)
	}
	if len(events) < 4 {
		t.Fatalf("got %d events, want at least run start, plan, task, done", len(events))
	}

	first := events[0]
	if first.Type != EventRunStarted {
		t.Errorf("first event = %q, want %q", first.Type, EventRunStarted)
	}
	if first.RunID != res.RunID {
		t.Errorf("first event RunID = %q, want %q", first.RunID, res.RunID)
	}
	if first.Timestamp.IsZero() {
		t.Error("event timestamp not stamped")
	}

	last := events[len(events)-1]
	if last.Type != EventRunDone {
		t.Errorf("last event = %q, want %q", last.Type, EventRunDone)
	}

	seen := make(map[EventType]int)
	for _, ev := range events {
		seen[ev.Type]++
		if ev.RunID != res.RunID {
			t.Errorf("event %q carries RunID %q, want %q", ev.Type, ev.RunID, res.RunID)
		}
	}
	if seen[EventPlanReady] != 1 {
		t.Errorf("plan_ready events = %d, want 1", seen[EventPlanReady])
	}
	// Five executed tasks plus the auto-completed root.
	if seen[EventTaskCompleted] != 6 {
		t.Errorf("task_completed events = %d, want 6", seen[EventTaskCompleted])
	}

	if dropped := o.DroppedEvents(); dropped != 0 {
		t.Errorf("DroppedEvents = %d, want 0", dropped)
	}
}

func TestRunReportsIncompleteWorkOnFailure(t *testing.T) {
	registry := executor.NewRegistry()
	registry.Register(models.KindDataCollector, failingProvider{})

	o, err := New(RequiredConfig{Registry: registry},
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := o.Run(context.Background(), "analyze 0700.HK")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	o.Close()

	// Every kind resolves to the failing collector, so the first task
	// fails and everything downstream blocks. Only the root completes.
	if res.Completed != 1 {
		t.Errorf("Completed = %d, want 1", res.Completed)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if res.Blocked != 4 {
		t.Errorf("Blocked = %d, want 4", res.Blocked)
	}

	report := res.Report()
	if !strings.Contains(report, "## Incomplete work") {
		t.Errorf("report missing incomplete-work section:\n%s", report)
	}
	if !strings.Contains(report, "dependency_failed: data_collection") {
		t.Errorf("report missing blocked reasons:\n%s", report)
	}

	var sawFailed, sawBlocked bool
	for ev := range o.Events() {
		switch ev.Type {
		case EventTaskFailed:
			sawFailed = true
		case EventTaskBlocked:
			sawBlocked = true
		}
	}
	if !sawFailed || !sawBlocked {
		t.Errorf("sawFailed=%v sawBlocked=%v, want both", sawFailed, sawBlocked)
	}
}

func TestRunMessagesNormalizesTranscript(t *testing.T) {
	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	msgs := []models.Message{
		{Role: "user", Segments: []models.Segment{
			{Type: models.SegmentTypeText, Text: "ignore this older request"},
		}},
		{Role: "user", Segments: []models.Segment{
			{Type: "image", Text: "chart.png"},
			{Type: models.SegmentTypeText, Text: "analyze"},
			{Type: models.SegmentTypeText, Text: "0700.HK"},
		}},
	}

	res, err := o.RunMessages(context.Background(), msgs)
	if err != nil {
		t.Fatalf("RunMessages: %v", err)
	}
	if res.Completed != 6 {
		t.Errorf("Completed = %d, want 6", res.Completed)
	}
	if report := res.Report(); !strings.Contains(report, "# Investment Analysis Report") {
		t.Errorf("report missing title:\n%s", report)
	}
}

func TestRunMessagesRequiresText(t *testing.T) {
	o, err := New(RequiredConfig{Registry: cannedRegistry(t)},
		WithSchedulerOptions(testSchedulerOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	msgs := []models.Message{
		{Role: "user", Segments: []models.Segment{{Type: "image", Text: "chart.png"}}},
	}
	if _, err := o.RunMessages(context.Background(), msgs); err == nil {
		t.Fatal("RunMessages with no text should fail")
	}
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(OrchestratorEvent{Type: EventRunStarted})
	e.Emit(OrchestratorEvent{Type: EventTaskCompleted})

	if dropped := e.DroppedCount(); dropped != 1 {
		t.Errorf("DroppedCount = %d, want 1", dropped)
	}

	select {
	case ev := <-e.Events():
		if ev.Type != EventRunStarted {
			t.Errorf("buffered event = %q, want %q", ev.Type, EventRunStarted)
		}
	default:
		t.Fatal("expected one buffered event")
	}
}
