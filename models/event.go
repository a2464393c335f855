package models

import "strings"

type WorkflowEventType string

const (
	EventTaskCreated       WorkflowEventType = "task.created"
	EventTaskStatusChanged WorkflowEventType = "task.status_changed"
)

const TaskStatusCompleted = "completed"

// WorkflowEvent is an already-validated task lifecycle notification.
// Ephemeral; nothing beyond the state transitions it drives is persisted.
type WorkflowEvent struct {
	Type   WorkflowEventType `json:"type"`
	Status string            `json:"status,omitempty"`
	TaskId string            `json:"task_id,omitempty"`
}

func (e WorkflowEvent) IsCompletion() bool {
	return e.Type == EventTaskStatusChanged && strings.EqualFold(strings.TrimSpace(e.Status), TaskStatusCompleted)
}
