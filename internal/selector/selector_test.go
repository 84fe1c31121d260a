package selector

import (
	"slices"
	"testing"

	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/models"
)

// countingSource wraps a cache and counts snapshot reads
type countingSource[T any] struct {
	*cache.Cache[T]
	reads int
}

func (s *countingSource[T]) Items() []T {
	s.reads++
	return s.Cache.Items()
}

func intp(n int) *int { return &n }

func taskCache(tasks ...models.Task) *countingSource[models.Task] {
	c := cache.New(func(t models.Task) int64 { return t.ID })
	c.ReplaceAll(tasks)
	return &countingSource[models.Task]{Cache: c}
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

var board = []models.Task{
	{ID: 1, Title: "Write docs", ProjectID: 1, Status: models.StatusTodo, Priority: models.PriorityLow},
	{ID: 2, Title: "Fix login", Description: "Session expires early", ProjectID: 1, Status: models.StatusTodo, Priority: models.PriorityHigh, OrderIndex: intp(1)},
	{ID: 3, Title: "Ship", ProjectID: 1, Status: models.StatusDone, Priority: models.PriorityNormal},
	{ID: 4, Title: "Plan sprint", ProjectID: 1, Status: models.StatusTodo, Priority: models.PriorityNormal, OrderIndex: intp(0)},
	{ID: 5, Title: "Other project", ProjectID: 2, Status: models.StatusTodo, Priority: models.PriorityNormal},
}

func TestMemoRecomputesOnlyOnChange(t *testing.T) {
	src := taskCache(board...)
	sel := TasksByProjectAndStatus(src)
	todo := StatusKey{ProjectID: 1, Status: models.StatusTodo}

	first := sel.Get(todo)
	sel.Get(todo)
	if src.reads != 1 {
		t.Fatalf("expected one computation, got %d", src.reads)
	}

	sel.Get(StatusKey{ProjectID: 1, Status: models.StatusDone})
	if src.reads != 2 {
		t.Errorf("expected recompute on new params, got %d reads", src.reads)
	}

	src.Remove(1)
	got := sel.Get(todo)
	if src.reads != 3 {
		t.Errorf("expected recompute after cache change, got %d reads", src.reads)
	}
	if slices.Contains(ids(got), 1) || !slices.Contains(ids(first), 1) {
		t.Errorf("unexpected results %v then %v", ids(first), ids(got))
	}
}

func TestTasksByProjectAndStatusOrdering(t *testing.T) {
	sel := TasksByProjectAndStatus(taskCache(board...))

	got := ids(sel.Get(StatusKey{ProjectID: 1, Status: models.StatusTodo}))
	if !slices.Equal(got, []int64{4, 2, 1}) {
		t.Errorf("expected ordered tasks first then load order, got %v", got)
	}
	if got := sel.Get(StatusKey{ProjectID: 9, Status: models.StatusTodo}); len(got) != 0 {
		t.Errorf("expected no tasks for unknown project, got %v", ids(got))
	}
}

func TestFilterTasks(t *testing.T) {
	sel := FilterTasks(taskCache(board...))

	tests := []struct {
		name   string
		filter TaskFilter
		want   []int64
	}{
		{"empty passes through", TaskFilter{}, []int64{1, 2, 3, 4, 5}},
		{"project", TaskFilter{ProjectID: 2}, []int64{5}},
		{"title query ignores case", TaskFilter{Query: "SHIP"}, []int64{3}},
		{"description query", TaskFilter{Query: "expires"}, []int64{2}},
		{"priority keeps manual order", TaskFilter{Priority: models.PriorityNormal}, []int64{4, 3, 5}},
		{"status and project", TaskFilter{ProjectID: 1, Status: models.StatusDone}, []int64{3}},
		{"column matches board order", TaskFilter{ProjectID: 1, Status: models.StatusTodo}, []int64{4, 2, 1}},
		{"no match", TaskFilter{Query: "zzz"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(sel.Get(tt.filter)); !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProjectsByTeam(t *testing.T) {
	c := cache.New(func(p models.Project) int64 { return p.ID })
	c.ReplaceAll([]models.Project{
		{ID: 1, Name: "Alpha", TeamID: 1},
		{ID: 2, Name: "Beta", TeamID: 2},
		{ID: 3, Name: "Gamma", TeamID: 1},
		{ID: 4, Name: "Orphan", TeamID: 99},
	})
	sel := ProjectsByTeam(c)

	var got []int64
	for _, p := range sel.Get(1) {
		got = append(got, p.ID)
	}
	if !slices.Equal(got, []int64{1, 3}) {
		t.Errorf("expected [1 3], got %v", got)
	}
	if len(sel.Get(3)) != 0 {
		t.Error("expected no projects for an unknown team")
	}
}

type fakeIndex struct {
	version uint64
	groups  map[int64][]models.Comment
	reads   int
}

func (f *fakeIndex) IndexVersion() uint64 { return f.version }

func (f *fakeIndex) ForTask(taskID int64) []models.Comment {
	f.reads++
	return slices.Clone(f.groups[taskID])
}

func TestCommentsByTask(t *testing.T) {
	idx := &fakeIndex{groups: map[int64][]models.Comment{
		10: {{ID: 1, TaskID: 10}, {ID: 2, TaskID: 10}},
	}}
	sel := NewCommentsByTask(idx)

	if got := sel.Get(10); len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	sel.Get(10)
	if idx.reads != 1 {
		t.Errorf("expected cached result, got %d reads", idx.reads)
	}

	if got := sel.Get(11); len(got) != 0 {
		t.Errorf("expected none for task 11, got %d", len(got))
	}

	idx.groups[10] = idx.groups[10][:1]
	idx.version++
	if got := sel.Get(10); len(got) != 1 {
		t.Errorf("expected recompute after index change, got %d", len(got))
	}
	if idx.reads != 3 {
		t.Errorf("expected 3 reads, got %d", idx.reads)
	}
}
