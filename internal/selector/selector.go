// Package selector holds memoized projections over the service caches. A
// selector never mutates its source and recomputes only when the source
// version or its parameters change.
package selector

import (
	"slices"
	"strings"
	"sync"

	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
)

// Source is anything that exposes a version and a snapshot
type Source[T any] interface {
	Version() uint64
	Items() []T
}

// Memo caches the result of fn for a (source version, params) pair
type Memo[T any, P comparable, R any] struct {
	src Source[T]
	fn  func([]T, P) R

	mu      sync.Mutex
	valid   bool
	version uint64
	params  P
	result  R
}

// NewMemo creates a memoized projection over src
func NewMemo[T any, P comparable, R any](src Source[T], fn func([]T, P) R) *Memo[T, P, R] {
	return &Memo[T, P, R]{src: src, fn: fn}
}

// Get returns the projection for params, recomputing if anything changed
func (m *Memo[T, P, R]) Get(params P) R {
	v := m.src.Version()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.version == v && m.params == params {
		return m.result
	}
	m.result = m.fn(m.src.Items(), params)
	m.version = v
	m.params = params
	m.valid = true
	return m.result
}

var _ Source[models.Task] = (*cache.Cache[models.Task])(nil)

// StatusKey selects one board column of one project
type StatusKey struct {
	ProjectID int64
	Status    models.TaskStatus
}

// TasksByProjectAndStatus returns the tasks of one board column
func TasksByProjectAndStatus(src Source[models.Task]) *Memo[models.Task, StatusKey, []models.Task] {
	return NewMemo(src, func(tasks []models.Task, k StatusKey) []models.Task {
		out := make([]models.Task, 0)
		for _, t := range tasks {
			if t.ProjectID == k.ProjectID && t.Status == k.Status {
				out = append(out, t)
			}
		}
		sortByOrderIndex(out)
		return out
	})
}

// sortByOrderIndex puts manually ordered tasks first, keeping load order
// otherwise
func sortByOrderIndex(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		switch {
		case a.OrderIndex == nil && b.OrderIndex == nil:
			return 0
		case a.OrderIndex == nil:
			return 1
		case b.OrderIndex == nil:
			return -1
		}
		return *a.OrderIndex - *b.OrderIndex
	})
}

// TaskFilter narrows the task list. Zero fields match everything.
type TaskFilter struct {
	ProjectID int64
	Query     string
	Status    models.TaskStatus
	Priority  models.TaskPriority
}

// Empty reports whether the filter lets everything through
func (f TaskFilter) Empty() bool {
	return f == TaskFilter{}
}

// Match reports whether t passes the filter. Query is a case-insensitive
// substring match on title or description.
func (f TaskFilter) Match(t models.Task) bool {
	if f.ProjectID != 0 && t.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// FilterTasks applies a TaskFilter. Matches come back in board order; an
// empty filter returns the cache order untouched.
func FilterTasks(src Source[models.Task]) *Memo[models.Task, TaskFilter, []models.Task] {
	return NewMemo(src, func(tasks []models.Task, f TaskFilter) []models.Task {
		if f.Empty() {
			return tasks
		}
		out := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if f.Match(t) {
				out = append(out, t)
			}
		}
		sortByOrderIndex(out)
		return out
	})
}

// ProjectsByTeam returns the projects of one team
func ProjectsByTeam(src Source[models.Project]) *Memo[models.Project, int64, []models.Project] {
	return NewMemo(src, func(projects []models.Project, teamID int64) []models.Project {
		out := make([]models.Project, 0)
		for _, p := range projects {
			if p.TeamID == teamID {
				out = append(out, p)
			}
		}
		return out
	})
}

// CommentIndex is the per-task comment grouping kept by the comment service
type CommentIndex interface {
	IndexVersion() uint64
	ForTask(taskID int64) []models.Comment
}

// CommentsByTask memoizes the comments of one task
type CommentsByTask struct {
	idx CommentIndex

	mu      sync.Mutex
	valid   bool
	version uint64
	taskID  int64
	result  []models.Comment
}

func NewCommentsByTask(idx CommentIndex) *CommentsByTask {
	return &CommentsByTask{idx: idx}
}

func (c *CommentsByTask) Get(taskID int64) []models.Comment {
	v := c.idx.IndexVersion()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.version == v && c.taskID == taskID {
		return c.result
	}
	c.result = c.idx.ForTask(taskID)
	c.version = v
	c.taskID = taskID
	c.valid = true
	return c.result
}
