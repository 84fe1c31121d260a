// Package normalize maps server records onto client view models.
//
// Every function here is pure: no I/O, no shared state. Optional fields that
// are missing get defaults; missing required fields are reported with
// ErrMissingField.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/teamboard/internal/models"
)

var (
	// ErrMissingField is returned when a required field is absent
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned when a field holds a value outside its domain
	ErrInvalidField = errors.New("invalid field value")
)

// timeLayouts are tried in order when parsing server timestamps
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// OverrideLookup returns a locally remembered team description
type OverrideLookup interface {
	Get(teamID int64) (string, bool)
}

// Team normalizes a team record. A non-empty override wins over the server's
// description.
func Team(rec models.TeamRecord, overrides OverrideLookup) (models.Team, error) {
	if rec.ID == nil || *rec.ID == 0 {
		return models.Team{}, missing("team", "id")
	}
	if rec.Name == nil {
		return models.Team{}, missing("team", "name")
	}

	createdAt, err := parseTime(first(rec.CreatedAt, rec.CreatedAtAlt))
	if err != nil {
		return models.Team{}, fmt.Errorf("team %d created_at: %w", *rec.ID, err)
	}

	description := value(rec.Description)
	if overrides != nil {
		if o, ok := overrides.Get(*rec.ID); ok && o != "" {
			description = o
		}
	}

	return models.Team{
		ID:          *rec.ID,
		Name:        *rec.Name,
		Description: description,
		CreatedBy:   value(first(rec.CreatedBy, rec.CreatedByAlt)),
		CreatedAt:   createdAt,
		MemberCount: memberCount(rec),
	}, nil
}

func memberCount(rec models.TeamRecord) int {
	if len(rec.Members) > 0 {
		return len(rec.Members)
	}
	if rec.Members == nil && rec.MemberCountAlt != nil && *rec.MemberCountAlt > 0 {
		return *rec.MemberCountAlt
	}
	return 1
}

// Project normalizes a project record
func Project(rec models.ProjectRecord) (models.Project, error) {
	if rec.ID == nil || *rec.ID == 0 {
		return models.Project{}, missing("project", "id")
	}
	if rec.Name == nil {
		return models.Project{}, missing("project", "name")
	}
	teamID := first(rec.TeamID, rec.TeamIDAlt)
	if teamID == nil {
		return models.Project{}, missing("project", "team_id")
	}

	createdAt, err := parseTime(first(rec.CreatedAt, rec.CreatedAtAlt))
	if err != nil {
		return models.Project{}, fmt.Errorf("project %d created_at: %w", *rec.ID, err)
	}

	return models.Project{
		ID:          *rec.ID,
		Name:        *rec.Name,
		Description: value(rec.Description),
		TeamID:      *teamID,
		TeamName:    value(first(rec.TeamName, rec.TeamNameAlt)),
		CreatedBy:   value(first(rec.CreatedBy, rec.CreatedByAlt)),
		CreatedAt:   createdAt,
	}, nil
}

// Task normalizes a task record
func Task(rec models.TaskRecord) (models.Task, error) {
	if rec.ID == nil || *rec.ID == 0 {
		return models.Task{}, missing("task", "id")
	}
	if rec.Title == nil {
		return models.Task{}, missing("task", "title")
	}
	projectID := first(rec.ProjectID, rec.ProjectIDAlt)
	if projectID == nil {
		return models.Task{}, missing("task", "project_id")
	}

	t := models.Task{
		ID:          *rec.ID,
		Title:       *rec.Title,
		Description: value(rec.Description),
		ProjectID:   *projectID,
		AssigneeID:  clone(first(rec.AssigneeID, rec.AssigneeIDAlt)),
		CreatedBy:   value(first(rec.CreatedBy, rec.CreatedByAlt)),
		OrderIndex:  clone(first(rec.OrderIndex, rec.OrderIndexAlt)),
	}

	var err error
	if t.Status, err = Status(value(rec.Status)); err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
	}
	if t.Priority, err = Priority(value(rec.Priority)); err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
	}
	if t.DueDate, err = parseOptionalTime(first(rec.DueDate, rec.DueDateAlt)); err != nil {
		return models.Task{}, fmt.Errorf("task %d due_date: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(first(rec.CreatedAt, rec.CreatedAtAlt)); err != nil {
		return models.Task{}, fmt.Errorf("task %d created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(first(rec.UpdatedAt, rec.UpdatedAtAlt)); err != nil {
		return models.Task{}, fmt.Errorf("task %d updated_at: %w", t.ID, err)
	}
	return t, nil
}

// Comment normalizes a comment record
func Comment(rec models.CommentRecord) (models.Comment, error) {
	if rec.ID == nil || *rec.ID == 0 {
		return models.Comment{}, missing("comment", "id")
	}
	if rec.Body == nil {
		return models.Comment{}, missing("comment", "body")
	}
	taskID := first(rec.TaskID, rec.TaskIDAlt)
	if taskID == nil {
		return models.Comment{}, missing("comment", "task_id")
	}

	createdAt, err := parseTime(first(rec.CreatedAt, rec.CreatedAtAlt))
	if err != nil {
		return models.Comment{}, fmt.Errorf("comment %d created_at: %w", *rec.ID, err)
	}

	userName := strings.TrimSpace(value(first(rec.AuthorName, rec.AuthorNameAlt, rec.UserName)))
	if userName == "" {
		userName = models.AnonymousUser
	}

	return models.Comment{
		ID:        *rec.ID,
		Body:      *rec.Body,
		TaskID:    *taskID,
		UserID:    value(first(rec.UserID, rec.UserIDAlt)),
		UserName:  userName,
		CreatedAt: createdAt,
	}, nil
}

// Status validates a wire status; empty means todo
func Status(s string) (models.TaskStatus, error) {
	if s == "" {
		return models.StatusTodo, nil
	}
	st := models.TaskStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("status %q: %w", s, ErrInvalidField)
	}
	return st, nil
}

// Priority maps a wire priority onto the canonical set; empty means normal
func Priority(s string) (models.TaskPriority, error) {
	p, ok := models.ParsePriority(s)
	if !ok {
		return "", fmt.Errorf("priority %q: %w", s, ErrInvalidField)
	}
	return p, nil
}

// ParseTime parses a server timestamp. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q: %w", s, ErrInvalidField)
}

func parseTime(s *string) (time.Time, error) {
	return ParseTime(value(s))
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func missing(resource, field string) error {
	return fmt.Errorf("%s %s: %w", resource, field, ErrMissingField)
}

// first returns the first non-nil pointer
func first[T any](ptrs ...*T) *T {
	for _, p := range ptrs {
		if p != nil {
			return p
		}
	}
	return nil
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
