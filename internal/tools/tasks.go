package tools

import (
	"fmt"
	"strings"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"

	maxTasksPerWrite = 40
)

// TaskItem is one entry of the shared task list replaced wholesale by the
// todo_write operation.
type TaskItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func normalizeTaskStatus(raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// NormalizeTaskItems validates and normalizes a todo_write task collection:
// non-empty titles, known statuses, unique ids (generated when absent), and
// at most one item in_progress.
func NormalizeTaskItems(items []TaskItem) ([]TaskItem, []string) {
	if len(items) > maxTasksPerWrite {
		return nil, []string{fmt.Sprintf("too many tasks (max %d)", maxTasksPerWrite)}
	}
	var violations []string
	out := make([]TaskItem, 0, len(items))
	seenID := make(map[string]struct{}, len(items))
	inProgressCount := 0
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			violations = append(violations, fmt.Sprintf("tasks[%d]: missing title", i))
			continue
		}
		status, ok := normalizeTaskStatus(item.Status)
		if !ok {
			violations = append(violations, fmt.Sprintf("tasks[%d]: invalid status %q", i, strings.TrimSpace(item.Status)))
			continue
		}
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("task_%d", i+1)
		}
		if _, exists := seenID[id]; exists {
			violations = append(violations, fmt.Sprintf("duplicate task id %q", id))
			continue
		}
		seenID[id] = struct{}{}
		if status == TaskStatusInProgress {
			inProgressCount++
			if inProgressCount > 1 {
				violations = append(violations, "only one task can be in_progress")
				continue
			}
		}
		out = append(out, TaskItem{ID: id, Title: title, Status: status})
	}
	if len(violations) > 0 {
		return nil, violations
	}
	return out, nil
}

// DecodeTaskItems converts the raw todo_write payload into TaskItems before
// normalization. Accepts the generic JSON shape produced by the oracle.
func DecodeTaskItems(raw any) ([]TaskItem, []string) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, []string{"field tasks must be an array"}
	}
	items := make([]TaskItem, 0, len(arr))
	for i, entry := range arr {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, []string{fmt.Sprintf("tasks[%d] must be an object", i)}
		}
		item := TaskItem{}
		if v, ok := m["id"].(string); ok {
			item.ID = v
		}
		if v, ok := m["title"].(string); ok {
			item.Title = v
		}
		if v, ok := m["status"].(string); ok {
			item.Status = v
		}
		items = append(items, item)
	}
	return NormalizeTaskItems(items)
}
