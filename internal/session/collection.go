package session

import "github.com/hylla/vitui/internal/domain"

// Collection holds the current page of tasks plus selection, paging, and filter state.
type Collection struct {
	items       []domain.Task
	selected    int
	page        int
	includeDone bool
	atEnd       bool
}

// NewCollection constructs an empty collection on page one with completed tasks hidden.
func NewCollection() Collection {
	return Collection{selected: -1, page: 1}
}

// ReplaceItems swaps in a freshly fetched page and resets the cursor to the first row.
// Completed tasks are dropped unless includeDone is set.
func (c *Collection) ReplaceItems(items []domain.Task, includeDone bool) {
	kept := make([]domain.Task, 0, len(items))
	for _, task := range items {
		if !includeDone && task.Done {
			continue
		}
		kept = append(kept, task)
	}
	c.items = kept
	if len(kept) == 0 {
		c.selected = -1
		return
	}
	c.selected = 0
}

// Items returns a copy of the visible tasks.
func (c Collection) Items() []domain.Task {
	return append([]domain.Task(nil), c.items...)
}

// Len reports the number of visible tasks.
func (c Collection) Len() int {
	return len(c.items)
}

// Selected returns the cursor index and the task under it.
func (c Collection) Selected() (int, domain.Task, bool) {
	if c.selected < 0 || c.selected >= len(c.items) {
		return -1, domain.Task{}, false
	}
	return c.selected, c.items[c.selected], true
}

// Contains reports whether a task id is on the current page.
func (c Collection) Contains(id int64) bool {
	for _, task := range c.items {
		if task.ID == id {
			return true
		}
	}
	return false
}

// SelectNext moves the cursor down one row, wrapping to the top.
func (c *Collection) SelectNext() {
	if len(c.items) == 0 {
		return
	}
	c.selected = wrapIndex(c.selected, 1, len(c.items))
}

// SelectPrevious moves the cursor up one row, wrapping to the bottom.
func (c *Collection) SelectPrevious() {
	if len(c.items) == 0 {
		return
	}
	c.selected = wrapIndex(c.selected, -1, len(c.items))
}

// NextPage advances the page number. It refuses once the end of the list was observed.
func (c *Collection) NextPage() bool {
	if c.atEnd {
		return false
	}
	c.page++
	return true
}

// PreviousPage moves back one page, never below page one.
func (c *Collection) PreviousPage() bool {
	c.atEnd = false
	if c.page <= 1 {
		c.page = 1
		return false
	}
	c.page--
	return true
}

// ToggleDoneFilter flips whether completed tasks are shown. Callers refresh afterwards.
func (c *Collection) ToggleDoneFilter() {
	c.includeDone = !c.includeDone
	c.atEnd = false
}

// MarkEnd records that the page after the current one came back empty.
func (c *Collection) MarkEnd() {
	c.atEnd = true
}

// Page returns the current page number.
func (c Collection) Page() int {
	return c.page
}

// IncludeDone reports whether completed tasks are shown.
func (c Collection) IncludeDone() bool {
	return c.includeDone
}

// AtEnd reports whether forward paging is currently refused.
func (c Collection) AtEnd() bool {
	return c.atEnd
}

// restore rolls page and filter back after a failed refresh.
func (c *Collection) restore(page int, includeDone bool) {
	c.page = max(1, page)
	c.includeDone = includeDone
}

// wrapIndex wraps an index by delta for a bounded collection.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return -1
	}
	if current < 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}
