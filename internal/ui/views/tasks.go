package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/selector"
	"github.com/tgienger/teamboard/internal/ui/keys"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

// BackToProjects returns to the project list of the current team
type BackToProjects struct{}

// OpenTask shows a task with its comments
type OpenTask struct {
	Task models.Task
}

const dueLayout = "2006-01-02"

// TaskBoardView shows a project's tasks in one column per status
type TaskBoardView struct {
	ctx     context.Context
	svc     Services
	project models.Project
	styles  *styles.Styles
	keys    keys.KeyMap

	byStatus [3]*selector.Memo[models.Task, selector.StatusKey, []models.Task]
	filtered [3]*selector.Memo[models.Task, selector.TaskFilter, []models.Task]

	width  int
	height int
	loaded bool
	err    error

	column int
	cursor [3]int

	search    textinput.Model
	searching bool
	priority  models.TaskPriority

	form             *form
	editing          *models.Task
	confirmingDelete bool
	deleteTarget     models.Task
	showHelpPopup    bool
}

func NewTaskBoardView(ctx context.Context, svc Services, project models.Project) *TaskBoardView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	v := &TaskBoardView{
		ctx:     ctx,
		svc:     svc,
		project: project,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		search:  search,
	}
	src := svc.Tasks.Cache()
	for i := range models.Statuses {
		v.byStatus[i] = selector.TasksByProjectAndStatus(src)
		v.filtered[i] = selector.FilterTasks(src)
	}
	return v
}

func (v *TaskBoardView) Init() tea.Cmd {
	return v.load()
}

func (v *TaskBoardView) load() tea.Cmd {
	id := v.project.ID
	return call("tasks:load", func() error {
		_, err := v.svc.Tasks.Load(v.ctx, id)
		return err
	})
}

func (v *TaskBoardView) filter() selector.TaskFilter {
	return selector.TaskFilter{
		ProjectID: v.project.ID,
		Query:     strings.TrimSpace(v.search.Value()),
		Priority:  v.priority,
	}
}

// columns returns the visible tasks of each status column
func (v *TaskBoardView) columns() [3][]models.Task {
	var out [3][]models.Task
	f := v.filter()
	plain := f.Query == "" && f.Priority == ""
	for i, st := range models.Statuses {
		if plain {
			out[i] = v.byStatus[i].Get(selector.StatusKey{ProjectID: v.project.ID, Status: st})
			continue
		}
		f.Status = st
		out[i] = v.filtered[i].Get(f)
	}
	return out
}

func (v *TaskBoardView) selected() (models.Task, bool) {
	col := v.columns()[v.column]
	if len(col) == 0 {
		return models.Task{}, false
	}
	return col[clamp(v.cursor[v.column], 0, len(col)-1)], true
}

func (v *TaskBoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case CacheChanged:
		return v, nil

	case doneMsg:
		v.err = nil
		v.loaded = true
		v.form = nil
		v.editing = nil
		v.confirmingDelete = false
		return v, nil

	case ErrorMsg:
		v.err = msg.Err
		v.loaded = true
		v.confirmingDelete = false
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.form != nil {
			return v.updateForm(msg)
		}
		if v.searching {
			return v.updateSearch(msg)
		}
		return v.updateBoard(msg)
	}
	return v, nil
}

func (v *TaskBoardView) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := v.columns()
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		if v.search.Value() != "" || v.priority != "" {
			v.search.Reset()
			v.priority = ""
			return v, nil
		}
		return v, func() tea.Msg { return BackToProjects{} }
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	case key.Matches(msg, v.keys.Refresh):
		return v, v.load()
	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.search.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Filter):
		v.priority = nextPriority(v.priority)
	case key.Matches(msg, v.keys.Left):
		v.column = (v.column + len(cols) - 1) % len(cols)
	case key.Matches(msg, v.keys.Right):
		v.column = (v.column + 1) % len(cols)
	case key.Matches(msg, v.keys.Up):
		v.cursor[v.column] = max(v.cursor[v.column]-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor[v.column] = clamp(v.cursor[v.column]+1, 0, max(len(cols[v.column])-1, 0))
	case key.Matches(msg, v.keys.MoveBack), key.Matches(msg, v.keys.MoveNext):
		task, ok := v.selected()
		if !ok {
			return v, nil
		}
		to := v.column + 1
		if key.Matches(msg, v.keys.MoveBack) {
			to = v.column - 1
		}
		if to < 0 || to >= len(models.Statuses) {
			return v, nil
		}
		status := models.Statuses[to]
		v.column = to
		v.cursor[to] = len(cols[to])
		return v, call("tasks:move", func() error {
			_, err := v.svc.Tasks.Move(v.ctx, task.ID, status)
			return err
		})
	case key.Matches(msg, v.keys.New):
		v.editing = nil
		v.form = newTaskForm("New Task in "+models.Statuses[v.column].Label(), models.Task{Priority: models.PriorityNormal})
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.editing = &task
			v.form = newTaskForm("Edit Task", task)
			return v, textinput.Blink
		}
	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = task
		}
	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			return v, func() tea.Msg { return OpenTask{Task: task} }
		}
	}
	return v, nil
}

func nextPriority(p models.TaskPriority) models.TaskPriority {
	switch p {
	case "":
		return models.PriorityLow
	case models.PriorityLow:
		return models.PriorityNormal
	case models.PriorityNormal:
		return models.PriorityHigh
	}
	return ""
}

func (v *TaskBoardView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		v.searching = false
		v.search.Blur()
		v.cursor = [3]int{}
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.cursor = [3]int{}
	return v, cmd
}

func (v *TaskBoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTarget.ID
		return v, call("tasks:delete", func() error { return v.svc.Tasks.Delete(v.ctx, id) })
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func newTaskForm(title string, t models.Task) *form {
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format(dueLayout)
	}
	return newForm(title, "Save").
		add("Title:", "What needs doing", t.Title, 100).
		add("Description:", "Details (optional)", t.Description, 500).
		add("Priority:", "low | normal | high", string(t.Priority), 10).
		add("Due date:", "YYYY-MM-DD (optional)", due, 10)
}

func (v *TaskBoardView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.form = nil
		v.editing = nil
		v.err = nil
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.save()
	case msg.String() == "shift+tab":
		v.form.move(-1)
		return v, nil
	case key.Matches(msg, v.keys.Tab):
		v.form.move(1)
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if !v.form.onButton() {
			v.form.move(1)
			return v, nil
		}
		return v, v.save()
	}
	return v, v.form.update(msg)
}

func (v *TaskBoardView) save() tea.Cmd {
	title := strings.TrimSpace(v.form.value(0))
	desc := strings.TrimSpace(v.form.value(1))
	due := strings.TrimSpace(v.form.value(3))
	priority, ok := models.ParsePriority(strings.ToLower(strings.TrimSpace(v.form.value(2))))
	if !ok {
		v.err = errors.New("priority must be low, normal or high")
		return nil
	}

	if v.editing == nil {
		req := models.CreateTaskRequest{
			Title:       title,
			Description: desc,
			Status:      models.Statuses[v.column],
			Priority:    priority,
			ProjectID:   v.project.ID,
			DueDate:     due,
		}
		return call("tasks:create", func() error {
			_, err := v.svc.Tasks.Create(v.ctx, req)
			return err
		})
	}

	orig := *v.editing
	var req models.UpdateTaskRequest
	if title != orig.Title {
		req.Title = &title
	}
	if desc != orig.Description {
		req.Description = &desc
	}
	if priority != orig.Priority {
		req.Priority = &priority
	}
	origDue := ""
	if orig.DueDate != nil {
		origDue = orig.DueDate.Format(dueLayout)
	}
	if due != origDue && due != "" {
		req.DueDate = &due
	}
	if req == (models.UpdateTaskRequest{}) {
		v.form = nil
		v.editing = nil
		return nil
	}
	return call("tasks:update", func() error {
		_, err := v.svc.Tasks.Update(v.ctx, orig.ID, req)
		return err
	})
}

func (v *TaskBoardView) View() string {
	s := v.styles
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.form != nil {
		return dialog(v.form.view(s, styles.ContentWidth(v.width), errorText(s, v.err)), v.width, v.height)
	}
	if v.confirmingDelete {
		return dialog(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
			"",
			s.TitleMuted.Render(truncate(v.deleteTarget.Title, 60)),
			"",
			lipgloss.JoinHorizontal(lipgloss.Center,
				s.ButtonPrimary.Render(" Y - Yes "),
				"  ",
				s.Button.Render(" N - No "),
			),
		), v.width, v.height)
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.renderColumns(),
		errorText(s, v.err),
		v.renderHelp(),
	)
}

func (v *TaskBoardView) renderHeader() string {
	s := v.styles
	title := s.Title.Render(v.project.Name)
	if v.project.TeamName != "" {
		title += s.TitleMuted.Render(" · " + v.project.TeamName)
	}
	if v.svc.Tasks.Cache().Loading() {
		title += s.TitleMuted.Render("  refreshing...")
	}

	search := v.search.View()
	if !v.searching && v.search.Value() == "" {
		search = s.TitleMuted.Render("/ to search")
	}
	priority := "all priorities"
	if v.priority != "" {
		priority = styles.Priority(v.priority).Render(string(v.priority))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		search+s.TitleMuted.Render("  ·  p: ")+priority,
		"",
	)
}

func (v *TaskBoardView) renderColumns() string {
	s := v.styles
	cols := v.columns()
	colWidth := max((v.width-2)/len(cols)-4, 16)
	colHeight := max(v.height-9, 5)

	rendered := make([]string, len(cols))
	for i, tasks := range cols {
		status := models.Statuses[i]
		lines := []string{styles.Status(status).Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks)))}

		cursor := clamp(v.cursor[i], 0, max(len(tasks)-1, 0))
		for j, t := range tasks {
			lines = append(lines, v.renderCard(t, colWidth, i == v.column && j == cursor))
		}
		if len(tasks) == 0 {
			lines = append(lines, s.TitleMuted.Render("nothing here"))
		}

		style := s.Column
		if i == v.column {
			style = s.ColumnFocused
		}
		rendered[i] = style.Width(colWidth).Height(colHeight).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *TaskBoardView) renderCard(t models.Task, width int, selected bool) string {
	style := v.styles.Card
	if selected {
		style = v.styles.CardSelected
	}
	mark := "·"
	if t.Priority != "" {
		mark = strings.ToUpper(string(t.Priority[:1]))
	}
	line := styles.Priority(t.Priority).Render(mark) + " " + style.Render(truncate(t.Title, width-3))
	if t.DueDate != nil {
		line += "\n  " + v.styles.TitleMuted.Render("due "+t.DueDate.Format(dueLayout))
	}
	return line
}

func (v *TaskBoardView) renderHelp() string {
	k := v.styles.HelpKey.Render
	if v.width > 0 && v.width < 70 {
		return v.styles.Help.Render(k("?") + " help")
	}
	return v.styles.Help.Render(fmt.Sprintf("%s open • %s new • %s edit • %s move • %s del • %s search • %s back",
		k("↵"), k("n"), k("e"), k("[ ]"), k("d"), k("/"), k("esc")))
}

func (v *TaskBoardView) renderHelpPopup() string {
	s := v.styles
	k := s.HelpKey.Render
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		k("←/→")+"    switch column",
		k("↑/↓")+"    select task",
		k("↵")+"      open task",
		k("n")+"      new task",
		k("e")+"      edit task",
		k("[ ]")+"    move to previous/next column",
		k("d")+"      delete task",
		k("/")+"      search",
		k("p")+"      cycle priority filter",
		k("r")+"      refresh",
		k("esc")+"    clear filters / back",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)
	return dialog(s.Panel.Render(content), v.width, v.height)
}
