package models

import (
	"testing"
)

func TestTaskStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is valid", TaskStatusPending, true},
		{"completed is valid", TaskStatusCompleted, true},
		{"failed is valid", TaskStatusFailed, true},
		{"blocked is valid", TaskStatusBlocked, true},
		{"empty string is invalid", TaskStatus(""), false},
		{"unknown status is invalid", TaskStatus("unknown"), false},
		{"typo status is invalid", TaskStatus("pendingg"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is not terminal", TaskStatusPending, false},
		{"completed is terminal", TaskStatusCompleted, true},
		{"failed is terminal", TaskStatusFailed, true},
		{"blocked is terminal", TaskStatusBlocked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("TaskStatus(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTask_IsRoot(t *testing.T) {
	root := Task{ID: RootTaskID, ExecutorKind: KindCoordinator}
	if !root.IsRoot() {
		t.Error("task with root id should be root")
	}

	sub := Task{ID: "data_collection", ExecutorKind: KindDataCollector}
	if sub.IsRoot() {
		t.Error("subtask should not be root")
	}
}
