// Package report renders the planning summary and the final analysis
// report from a task graph. Rendering is purely derived state; nothing
// here mutates the graph.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Assemble renders the final report from whatever the graph holds.
// Partial runs still produce a report; failed and blocked work is
// listed under its own heading instead of being dropped silently.
func Assemble(g *graph.TaskGraph, request string) string {
	var findings strings.Builder
	completed := 0
	for _, task := range g.Tasks() {
		if task.IsRoot() || task.Status != models.TaskStatusCompleted || task.Result == "" {
			continue
		}
		completed++
		findings.WriteString(fmt.Sprintf("**%s**:\n%s\n", task.Name, task.Result))
	}

	var sb strings.Builder
	sb.WriteString("# Investment Analysis Report\n\n")
	sb.WriteString("## Overview\n")
	sb.WriteString(fmt.Sprintf("- Subject: %s\n", request))
	sb.WriteString(fmt.Sprintf("- Completed tasks: %d\n", completed))
	sb.WriteString(fmt.Sprintf("- Generated: %s\n", time.Now().Format("2006-01-02 15:04:05")))

	sb.WriteString("\n## Findings\n")
	sb.WriteString(findings.String())

	if incomplete := incompleteWork(g); incomplete != "" {
		sb.WriteString("\n## Incomplete work\n")
		sb.WriteString(incomplete)
	}

	sb.WriteString("\n## Advisory notes\n")
	sb.WriteString("Weigh the findings above before acting:\n")
	sb.WriteString("1. Read fundamental shifts and technical signals together.\n")
	sb.WriteString("2. Keep risk controls and position sizing in place.\n")
	sb.WriteString("3. Track market sentiment and the news flow.\n")
	sb.WriteString("4. Set a clear strategy and review horizon.\n")

	return sb.String()
}

func incompleteWork(g *graph.TaskGraph) string {
	var sb strings.Builder
	for _, task := range g.Tasks() {
		switch task.Status {
		case models.TaskStatusFailed:
			sb.WriteString(fmt.Sprintf("- %s failed: %s\n", task.Name, task.Result))
		case models.TaskStatusBlocked:
			sb.WriteString(fmt.Sprintf("- %s blocked: %s\n", task.Name, task.BlockedReason))
		}
	}
	return sb.String()
}

// Summary renders the planning overview shown before execution starts.
func Summary(g *graph.TaskGraph) string {
	var sb strings.Builder
	sb.WriteString("## Plan\n")
	sb.WriteString(fmt.Sprintf("- Total tasks: %d\n", g.Size()))
	if root := g.Root(); root != nil {
		sb.WriteString(fmt.Sprintf("- Root task: %s\n", root.Name))
	}

	sb.WriteString("\n")
	for _, task := range g.Tasks() {
		if task.IsRoot() {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s (%s)", task.Name, task.ExecutorKind))
		if len(task.Dependencies) > 0 {
			sb.WriteString(" needs " + strings.Join(task.Dependencies, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nTasks run in dependency order.\n")
	return sb.String()
}
