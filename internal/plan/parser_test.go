package plan

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/pkg/models"
)

const wellFormedPlan = `<task_tree>
  <root_task>
    <id>ignored</id>
    <name>ignored</name>
    <description>ignored</description>
    <executor_type>ignored</executor_type>
  </root_task>
  <tasks>
    <task>
      <id>collect</id>
      <name>Collect Data</name>
      <description>Pull quote history</description>
      <executor_type>data_collector</executor_type>
      <dependencies></dependencies>
      <parameters>
        <symbol>0700.HK</symbol>
        <period>6mo</period>
      </parameters>
    </task>
    <task>
      <id>trend</id>
      <name>Trend Read</name>
      <description>Moving average posture</description>
      <executor_type>technical_analyst</executor_type>
      <dependencies>collect</dependencies>
    </task>
    <task>
      <id>report</id>
      <name>Write Report</name>
      <description>Final summary</description>
      <executor_type>report_generator</executor_type>
      <dependencies>collect, trend</dependencies>
    </task>
  </tasks>
</task_tree>`

func TestParseWellFormedPlan(t *testing.T) {
	g := Parse(wellFormedPlan, "analyze 0700.HK")

	if got, want := g.Size(), 4; got != want {
		t.Fatalf("Size() = %d, want %d (root + 3 subtasks)", got, want)
	}

	collect := g.Task("collect")
	if collect == nil {
		t.Fatal("task collect missing")
	}
	if collect.Name != "Collect Data" {
		t.Errorf("collect.Name = %q, want Collect Data", collect.Name)
	}
	if collect.ExecutorKind != models.KindDataCollector {
		t.Errorf("collect.ExecutorKind = %q, want %q", collect.ExecutorKind, models.KindDataCollector)
	}
	if got := collect.Parameters["symbol"]; got != "0700.HK" {
		t.Errorf("collect symbol param = %q, want 0700.HK", got)
	}
	if got := collect.Parameters["period"]; got != "6mo" {
		t.Errorf("collect period param = %q, want 6mo", got)
	}

	report := g.Task("report")
	if report == nil {
		t.Fatal("task report missing")
	}
	if got, want := len(report.Dependencies), 2; got != want {
		t.Fatalf("report deps = %v, want %d entries", report.Dependencies, want)
	}
	if report.Dependencies[0] != "collect" || report.Dependencies[1] != "trend" {
		t.Errorf("report deps = %v, want [collect trend]", report.Dependencies)
	}
}

func TestParseSynthesizesRoot(t *testing.T) {
	request := "should I buy Tencent before earnings"
	g := Parse(wellFormedPlan, request)

	root := g.Root()
	if root == nil {
		t.Fatal("root task missing")
	}
	if root.ID != models.RootTaskID {
		t.Errorf("root.ID = %q, want %q", root.ID, models.RootTaskID)
	}
	if root.Name != rootTaskName {
		t.Errorf("root.Name = %q, want %q", root.Name, rootTaskName)
	}
	if root.Description != request {
		t.Errorf("root.Description = %q, want original request", root.Description)
	}
	if root.ExecutorKind != models.KindCoordinator {
		t.Errorf("root.ExecutorKind = %q, want %q", root.ExecutorKind, models.KindCoordinator)
	}
}

func TestParseExtractsEmbeddedFragment(t *testing.T) {
	raw := "Here is the plan you asked for:\n```xml\n" + wellFormedPlan + "\n```\nLet me know if it needs changes."
	g := Parse(raw, "analyze 0700.HK")

	if g.Task("collect") == nil || g.Task("trend") == nil || g.Task("report") == nil {
		t.Errorf("embedded plan not parsed, got tasks %v", taskIDs(g))
	}
}

func TestParseFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no envelope", "I could not produce a plan, sorry."},
		{"malformed xml", "<task_tree><tasks><task><id>a</id></tasks></task_tree>"},
		{"empty task list", "<task_tree><root_task><id>root</id></root_task><tasks></tasks></task_tree>"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Parse(tt.raw, "analyze 0700.HK")
			assertFallbackShape(t, g, "0700.HK")
		})
	}
}

func TestUsable(t *testing.T) {
	if !Usable(wellFormedPlan) {
		t.Error("Usable() = false for a well-formed plan")
	}
	for _, raw := range []string{"", "no plan here", "<task_tree><tasks></tasks></task_tree>"} {
		if Usable(raw) {
			t.Errorf("Usable(%q) = true, want false", raw)
		}
	}
}

func TestParseFieldDefaults(t *testing.T) {
	raw := `<task_tree><tasks>
	  <task>
	    <name>Unnamed Kind</name>
	  </task>
	</tasks></task_tree>`
	g := Parse(raw, "whatever")

	var task *models.Task
	for _, candidate := range g.Tasks() {
		if !candidate.IsRoot() {
			task = candidate
		}
	}
	if task == nil {
		t.Fatal("subtask missing")
	}
	if _, err := uuid.Parse(task.ID); err != nil {
		t.Errorf("missing id not replaced with uuid: %q (%v)", task.ID, err)
	}
	if task.Name != "Unnamed Kind" {
		t.Errorf("Name = %q, want Unnamed Kind", task.Name)
	}
	if task.Description != task.Name {
		t.Errorf("Description = %q, want defaulted to name", task.Description)
	}
	if task.ExecutorKind != models.KindDataCollector {
		t.Errorf("ExecutorKind = %q, want default %q", task.ExecutorKind, models.KindDataCollector)
	}
}

func TestParseReassignsDuplicateIDs(t *testing.T) {
	raw := `<task_tree><tasks>
	  <task><id>dup</id><name>First</name></task>
	  <task><id>dup</id><name>Second</name></task>
	</tasks></task_tree>`
	g := Parse(raw, "whatever")

	if got, want := g.Size(), 3; got != want {
		t.Fatalf("Size() = %d, want %d (root + both subtasks)", got, want)
	}
	first := g.Task("dup")
	if first == nil || first.Name != "First" {
		t.Fatalf("task dup = %+v, want the first declaration", first)
	}
	for _, task := range g.Tasks() {
		if task.Name == "Second" {
			if task.ID == "dup" {
				t.Error("duplicate id kept instead of being reassigned")
			}
			if _, err := uuid.Parse(task.ID); err != nil {
				t.Errorf("reassigned id %q is not a uuid: %v", task.ID, err)
			}
			return
		}
	}
	t.Error("second subtask missing after reassignment")
}

func TestParseDropsSelfAndEmptyDependencies(t *testing.T) {
	raw := `<task_tree><tasks>
	  <task><id>a</id></task>
	  <task><id>b</id><dependencies>a, , b,</dependencies></task>
	</tasks></task_tree>`
	g := Parse(raw, "whatever")

	b := g.Task("b")
	if b == nil {
		t.Fatal("task b missing")
	}
	if len(b.Dependencies) != 1 || b.Dependencies[0] != "a" {
		t.Errorf("b.Dependencies = %v, want [a]", b.Dependencies)
	}
}

func TestFallbackShape(t *testing.T) {
	g := Fallback("how does 9988.HK look right now")
	assertFallbackShape(t, g, "9988.HK")
}

func TestFallbackDefaultSymbol(t *testing.T) {
	g := Fallback("is the market overheated")
	assertFallbackShape(t, g, market.DefaultSymbol)
}

// assertFallbackShape checks the fixed default graph: a data task with
// no dependencies, three analysis tasks gated on it, and a report task
// gated on all three.
func assertFallbackShape(t *testing.T, g *graph.TaskGraph, symbol string) {
	t.Helper()

	if got, want := g.Size(), 6; got != want {
		t.Fatalf("Size() = %d, want %d, tasks %v", got, want, taskIDs(g))
	}

	data := g.Task(FallbackDataTaskID)
	if data == nil {
		t.Fatal("data collection task missing")
	}
	if len(data.Dependencies) != 0 {
		t.Errorf("data deps = %v, want none", data.Dependencies)
	}
	if got := data.Parameters["symbol"]; got != symbol {
		t.Errorf("data symbol param = %q, want %q", got, symbol)
	}
	if got := data.Parameters["period"]; got != "1y" {
		t.Errorf("data period param = %q, want 1y", got)
	}

	for _, id := range []string{FallbackTechnicalTaskID, FallbackNewsTaskID, FallbackRiskTaskID} {
		task := g.Task(id)
		if task == nil {
			t.Fatalf("task %s missing", id)
		}
		if len(task.Dependencies) != 1 || task.Dependencies[0] != FallbackDataTaskID {
			t.Errorf("%s deps = %v, want [%s]", id, task.Dependencies, FallbackDataTaskID)
		}
	}

	report := g.Task(FallbackReportTaskID)
	if report == nil {
		t.Fatal("report task missing")
	}
	wantDeps := strings.Join([]string{FallbackTechnicalTaskID, FallbackNewsTaskID, FallbackRiskTaskID}, ",")
	if got := strings.Join(report.Dependencies, ","); got != wantDeps {
		t.Errorf("report deps = %s, want %s", got, wantDeps)
	}

	if problems := g.Validate(); len(problems) != 0 {
		t.Errorf("Validate() = %v, want clean graph", problems)
	}
}

func taskIDs(g *graph.TaskGraph) []string {
	var ids []string
	for _, task := range g.Tasks() {
		ids = append(ids, task.ID)
	}
	return ids
}
