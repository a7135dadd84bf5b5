// Package plan converts plan-generator output into a runnable task graph.
package plan

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Plan text markers. Generator output is often wrapped in prose or
// code fences; everything outside the outermost envelope is discarded.
const (
	planStartMarker = "<task_tree>"
	planEndMarker   = "</task_tree>"
)

// rootTaskName is the display name of the synthesized coordinator task.
const rootTaskName = "Investment Analysis"

// xmlPlan mirrors the plan interchange format.
type xmlPlan struct {
	XMLName  xml.Name    `xml:"task_tree"`
	RootTask xmlRootTask `xml:"root_task"`
	Tasks    []xmlTask   `xml:"tasks>task"`
}

// xmlRootTask is the plan's root descriptor. Only present as an anchor;
// id and executor kind are always synthesized locally.
type xmlRootTask struct {
	ID           string `xml:"id"`
	Name         string `xml:"name"`
	Description  string `xml:"description"`
	ExecutorType string `xml:"executor_type"`
}

type xmlTask struct {
	ID           string        `xml:"id"`
	Name         string        `xml:"name"`
	Description  string        `xml:"description"`
	ExecutorType string        `xml:"executor_type"`
	Dependencies string        `xml:"dependencies"`
	Parameters   xmlParameters `xml:"parameters"`
}

// xmlParameters captures the flat tag-to-text parameter mapping.
type xmlParameters struct {
	Entries []xmlParameter `xml:",any"`
}

type xmlParameter struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Parse converts raw plan text into a task graph. It never fails
// outward: missing envelope, malformed XML, or an empty task list all
// fall back to the fixed default graph built from the original request,
// so the scheduler always receives a valid, completable graph.
func Parse(rawPlan, originalRequest string) *graph.TaskGraph {
	parsed, err := decodePlan(rawPlan)
	if err != nil {
		log.Printf("[plan] %v, using fallback plan", err)
		return Fallback(originalRequest)
	}

	g := graph.New()
	mustAdd(g, rootTask(originalRequest))

	for _, raw := range parsed.Tasks {
		task := subtaskFromXML(raw)
		if g.Task(task.ID) != nil {
			fresh := uuid.New().String()
			log.Printf("[plan] duplicate task id %q, reassigned to %s", task.ID, fresh)
			task.ID = fresh
		}
		mustAdd(g, task)
	}

	return g
}

// Usable reports whether Parse would build a graph from the given text
// rather than substituting the fallback. Callers use it to label the
// plan source without changing Parse's never-fail contract.
func Usable(rawPlan string) bool {
	_, err := decodePlan(rawPlan)
	return err == nil
}

// decodePlan extracts and unmarshals the plan envelope. Any error means
// the text is unusable and the caller should fall back.
func decodePlan(rawPlan string) (*xmlPlan, error) {
	fragment := extractFragment(rawPlan)
	if fragment == "" {
		return nil, errors.New("no " + planStartMarker + " envelope in generator output")
	}

	var parsed xmlPlan
	if err := xml.Unmarshal([]byte(fragment), &parsed); err != nil {
		return nil, fmt.Errorf("malformed plan: %w", err)
	}
	if len(parsed.Tasks) == 0 {
		return nil, errors.New("plan declares no subtasks")
	}
	return &parsed, nil
}

// rootTask synthesizes the coordinator node. The generated plan's root
// descriptor is never trusted for id or kind.
func rootTask(request string) *models.Task {
	return &models.Task{
		ID:           models.RootTaskID,
		Name:         rootTaskName,
		Description:  request,
		ExecutorKind: models.KindCoordinator,
	}
}

// subtaskFromXML builds a task from a plan descriptor, substituting
// per-field defaults instead of rejecting the whole document.
func subtaskFromXML(raw xmlTask) *models.Task {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = uuid.New().String()
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = id
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = name
	}

	kind := strings.TrimSpace(raw.ExecutorType)
	if kind == "" {
		kind = models.KindDataCollector
	}

	var params map[string]string
	for _, entry := range raw.Parameters.Entries {
		key := strings.TrimSpace(entry.XMLName.Local)
		if key == "" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[key] = strings.TrimSpace(entry.Value)
	}

	return &models.Task{
		ID:           id,
		Name:         name,
		Description:  description,
		ExecutorKind: kind,
		Dependencies: parseDependencies(raw.Dependencies, id),
		Parameters:   params,
	}
}

// parseDependencies splits the comma-separated id list, dropping empty
// entries and self-references.
func parseDependencies(raw, selfID string) []string {
	var deps []string
	for _, part := range strings.Split(raw, ",") {
		dep := strings.TrimSpace(part)
		if dep == "" || dep == selfID {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

// extractFragment returns the substring between the first start marker
// and the last end marker, inclusive, or "" when no envelope exists.
func extractFragment(raw string) string {
	start := strings.Index(raw, planStartMarker)
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(raw, planEndMarker)
	if end == -1 || end < start {
		return ""
	}
	return raw[start : end+len(planEndMarker)]
}

// mustAdd inserts a task whose id is already known to be unique.
func mustAdd(g *graph.TaskGraph, task *models.Task) {
	if err := g.Add(task); err != nil {
		log.Printf("[plan] dropping task %q: %v", task.ID, err)
	}
}
