package views

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/service"
	"github.com/tgienger/teamboard/internal/store"
)

// cannedDoer answers GETs from a fixed path → JSON table
type cannedDoer map[string]string

func (d cannedDoer) Do(_ context.Context, method, path string, _ url.Values, _, out any) error {
	raw, ok := d[method+" "+path]
	if !ok || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func newServices(t *testing.T, d cannedDoer) Services {
	t.Helper()
	ctx := context.Background()
	session := api.NewSession(ctx, nil)
	return Services{
		Auth:     service.NewAuthService(d, session),
		Teams:    service.NewTeamService(ctx, d, store.NewOverrides(store.NewMemory())),
		Projects: service.NewProjectService(d),
		Tasks:    service.NewTaskService(d),
		Comments: service.NewCommentService(d),
	}
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardColumnsAndFilters(t *testing.T) {
	svc := newServices(t, cannedDoer{
		"GET /tasks": `[
			{"id":1,"title":"Write docs","status":"todo","priority":"low","project_id":1},
			{"id":2,"title":"Fix login","status":"in_progress","priority":"high","project_id":1},
			{"id":3,"title":"Ship release","status":"done","project_id":1},
			{"id":4,"title":"Docs review","status":"todo","priority":"high","project_id":1,"order_index":0}
		]`,
	})
	if _, err := svc.Tasks.Load(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	v := NewTaskBoardView(context.Background(), svc, models.Project{ID: 1, Name: "Core"})
	cols := v.columns()
	if !slices.Equal(ids(cols[0]), []int64{4, 1}) || !slices.Equal(ids(cols[1]), []int64{2}) || !slices.Equal(ids(cols[2]), []int64{3}) {
		t.Fatalf("unexpected columns %v %v %v", ids(cols[0]), ids(cols[1]), ids(cols[2]))
	}

	v.search.SetValue("docs")
	if got := v.columns(); !slices.Equal(ids(got[0]), []int64{4, 1}) || len(got[1]) != 0 || len(got[2]) != 0 {
		t.Errorf("search not applied in board order: %v %v %v", ids(got[0]), ids(got[1]), ids(got[2]))
	}

	v.Update(press("p"))
	v.Update(press("p"))
	v.Update(press("p"))
	if v.priority != models.PriorityHigh {
		t.Fatalf("expected high priority filter, got %q", v.priority)
	}
	if got := v.columns(); !slices.Equal(ids(got[0]), []int64{4}) {
		t.Errorf("priority filter not applied: %v", ids(got[0]))
	}

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.search.Value() != "" || v.priority != "" {
		t.Error("expected esc to clear filters")
	}
}

func TestBoardSelection(t *testing.T) {
	svc := newServices(t, cannedDoer{
		"GET /tasks": `[
			{"id":1,"title":"a","status":"todo","project_id":1},
			{"id":2,"title":"b","status":"todo","project_id":1},
			{"id":3,"title":"c","status":"done","project_id":1}
		]`,
	})
	if _, err := svc.Tasks.Load(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	v := NewTaskBoardView(context.Background(), svc, models.Project{ID: 1})

	v.Update(press("j"))
	if task, ok := v.selected(); !ok || task.ID != 2 {
		t.Errorf("expected task 2 selected, got %v %v", task.ID, ok)
	}
	v.Update(press("l"))
	if _, ok := v.selected(); ok {
		t.Error("expected empty in-progress column")
	}
	v.Update(press("l"))
	if task, ok := v.selected(); !ok || task.ID != 3 {
		t.Errorf("expected task 3 selected, got %v %v", task.ID, ok)
	}
}

func TestTeamListFollowsCache(t *testing.T) {
	svc := newServices(t, cannedDoer{
		"GET /teams": `[{"id":1,"name":"Core"},{"id":2,"name":"Design"}]`,
	})
	v := NewTeamListView(context.Background(), svc)
	v.Init()
	if len(v.list.Items()) != 0 {
		t.Fatal("expected no teams before load")
	}

	if _, err := svc.Teams.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v.Update(CacheChanged{})
	if len(v.list.Items()) != 2 {
		t.Errorf("expected 2 teams, got %d", len(v.list.Items()))
	}

	svc.Teams.Cache().Remove(2)
	v.Update(CacheChanged{})
	if len(v.list.Items()) != 1 {
		t.Errorf("expected 1 team after removal, got %d", len(v.list.Items()))
	}
}

func TestNextPriorityCycles(t *testing.T) {
	p := models.TaskPriority("")
	var seen []models.TaskPriority
	for range 4 {
		p = nextPriority(p)
		seen = append(seen, p)
	}
	want := []models.TaskPriority{models.PriorityLow, models.PriorityNormal, models.PriorityHigh, ""}
	if !slices.Equal(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}
