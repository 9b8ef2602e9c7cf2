// Package model defines the records persisted by the dashboard.
// In Go, we use structs to represent our data, and the `json:"..."` tags
// decide the exact key names written into each stored collection.
//
// The key names are camelCase so a collection saved by the browser
// dashboard this module replaces still loads. That dashboard wrote ids as
// JSON numbers; they are read back as their decimal string (see id.go) and
// written out as strings from then on.
package model

import "time"

// Priority ranks a Todo. The zero value is not a valid priority; services
// fill in PriorityMedium when the caller leaves it blank.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TodoFilter selects which todos a list view shows.
type TodoFilter string

const (
	FilterAll       TodoFilter = "all"
	FilterPending   TodoFilter = "pending"
	FilterCompleted TodoFilter = "completed"
)

// Match reports whether todo passes the filter. Unknown filters behave like
// FilterAll.
func (f TodoFilter) Match(todo Todo) bool {
	switch f {
	case FilterPending:
		return !todo.Completed
	case FilterCompleted:
		return todo.Completed
	default:
		return true
	}
}

// Todo is a task on the user's list.
//
// DueDate is a calendar date ("2006-01-02") and stays a string: it carries
// no time of day or zone, and an empty string means "no due date".
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	DueDate     string    `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}
