package domain

import (
	"strings"
	"time"
)

// Priority bounds accepted by the tracker.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Task is the lightweight list-view record for one task.
type Task struct {
	ID    int64
	Title string
	Done  bool
}

// Label is a read-only tag attached to a task.
type Label struct {
	ID    int64
	Title string
}

// TaskDetail is the full record for one task, fetched on demand.
type TaskDetail struct {
	ID          int64
	Title       string
	Done        bool
	DueAt       *time.Time
	Labels      []Label
	Priority    *int
	Description string
}

// emptyMarkup lists description bodies the tracker stores for "no description".
var emptyMarkup = []string{"", "<p></p>", "<p><br></p>"}

// HasDueDate reports whether the detail carries a real due timestamp.
func (d TaskDetail) HasDueDate() bool {
	return d.DueAt != nil && !d.DueAt.IsZero()
}

// HasPriority reports whether the detail carries a priority inside the valid range.
func (d TaskDetail) HasPriority() bool {
	return d.Priority != nil && ValidPriority(*d.Priority)
}

// HasDescription reports whether the description holds more than empty markup.
func (d TaskDetail) HasDescription() bool {
	trimmed := strings.TrimSpace(d.Description)
	for _, empty := range emptyMarkup {
		if trimmed == empty {
			return false
		}
	}
	return true
}

// ValidPriority reports whether p is inside [MinPriority, MaxPriority].
func ValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// EndOfDay returns the last whole second of the given calendar day in loc.
func EndOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, month, day, 23, 59, 59, 0, loc)
}
