package vikunja

import (
	"strings"
	"time"

	"github.com/hylla/vitui/internal/domain"
)

// zeroDueDate is the server's encoding of "no due date".
const zeroDueDate = "0001-01-01T00:00:00Z"

// taskSummary is one row of the task list endpoint.
type taskSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// labelRecord is a label attached to a task.
type labelRecord struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// taskRecord is the full task payload.
type taskRecord struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Done        bool          `json:"done"`
	DueDate     string        `json:"due_date"`
	Labels      []labelRecord `json:"labels"`
	Priority    int           `json:"priority"`
	Description string        `json:"description"`
}

// createTaskRequest is the body of the create endpoint. Absent fields are omitted.
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
}

func (s taskSummary) toDomain() domain.Task {
	return domain.Task{ID: s.ID, Title: s.Title, Done: s.Done}
}

func (r taskRecord) toDomain() domain.TaskDetail {
	detail := domain.TaskDetail{
		ID:          r.ID,
		Title:       r.Title,
		Done:        r.Done,
		DueAt:       parseDueDate(r.DueDate),
		Description: r.Description,
	}
	if domain.ValidPriority(r.Priority) {
		p := r.Priority
		detail.Priority = &p
	}
	for _, label := range r.Labels {
		detail.Labels = append(detail.Labels, domain.Label{ID: label.ID, Title: label.Title})
	}
	return detail
}

// parseDueDate decodes the wire timestamp. The zero sentinel and unparseable values mean absent.
func parseDueDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == zeroDueDate {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil || ts.IsZero() {
		return nil
	}
	return &ts
}

func formatDueDate(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
