package models

import "strings"

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	for _, v := range priorities {
		if p == v {
			return true
		}
	}
	return false
}

func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// TaskStatus is an open enumeration: any member may be set by an authorized
// actor, there is no transition graph.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

var taskStatuses = []TaskStatus{StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled}

func TaskStatuses() []TaskStatus {
	return append([]TaskStatus(nil), taskStatuses...)
}

func (s TaskStatus) IsValid() bool {
	for _, v := range taskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	return status, status.IsValid()
}
