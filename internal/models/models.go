package models

import "time"

// AnonymousUser is shown for comments whose author the server did not name
const AnonymousUser = "Anonymous User"

// TaskStatus is the board column a task lives in
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Statuses lists the board columns in display order
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns a human readable column name
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// TaskPriority uses the canonical low|normal|high set. Older backends send
// "medium", which is mapped to PriorityNormal by ParsePriority.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

// Priorities lists priorities from lowest to highest
var Priorities = []TaskPriority{PriorityLow, PriorityNormal, PriorityHigh}

// ParsePriority maps a wire value onto the canonical set
func ParsePriority(s string) (TaskPriority, bool) {
	switch s {
	case "":
		return PriorityNormal, true
	case "low":
		return PriorityLow, true
	case "normal", "medium":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

// Team represents a team the current user belongs to
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int       `json:"memberCount"`
}

// Project represents a project owned by a team
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TeamID      int64     `json:"teamId"`
	TeamName    string    `json:"teamName,omitempty"`
	CreatedBy   int64     `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task represents a single task on a project board
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	ProjectID   int64        `json:"projectId"`
	AssigneeID  *int64       `json:"assigneeId,omitempty"`
	CreatedBy   int64        `json:"createdBy,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	OrderIndex  *int         `json:"orderIndex,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Comment represents a comment on a task
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	TaskID    int64     `json:"taskId"`
	UserID    int64     `json:"userId,omitempty"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is the authenticated account returned by the auth endpoints
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
