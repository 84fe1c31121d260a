package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/selector"
	"github.com/tgienger/teamboard/internal/ui/keys"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

// BackToBoard closes the task detail
type BackToBoard struct{}

// TaskDetailView shows one task and its comment thread
type TaskDetailView struct {
	ctx      context.Context
	svc      Services
	task     models.Task
	comments *selector.CommentsByTask
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int
	loaded bool
	err    error

	cursor    int
	input     textarea.Model
	composing bool
	// editingID is the comment being edited, 0 while writing a new one
	editingID int64
}

func NewTaskDetailView(ctx context.Context, svc Services, task models.Task) *TaskDetailView {
	input := textarea.New()
	input.Placeholder = "Add a comment..."
	input.CharLimit = 2000
	input.SetWidth(50)
	input.SetHeight(3)
	input.ShowLineNumbers = false

	return &TaskDetailView{
		ctx:      ctx,
		svc:      svc,
		task:     task,
		comments: selector.NewCommentsByTask(svc.Comments),
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		input:    input,
	}
}

func (v *TaskDetailView) Init() tea.Cmd {
	id := v.task.ID
	return call("comments:load", func() error {
		_, err := v.svc.Comments.Load(v.ctx, id)
		return err
	})
}

// current returns the live cached task, falling back to the opened copy
func (v *TaskDetailView) current() models.Task {
	if t, ok := v.svc.Tasks.Cache().Get(v.task.ID); ok {
		return t
	}
	return v.task
}

func (v *TaskDetailView) ownComment(c models.Comment) bool {
	uid, ok := v.svc.Auth.CurrentUserID()
	return ok && c.UserID == uid
}

func (v *TaskDetailView) selectedComment() (models.Comment, bool) {
	cs := v.comments.Get(v.task.ID)
	if len(cs) == 0 {
		return models.Comment{}, false
	}
	return cs[clamp(v.cursor, 0, len(cs)-1)], true
}

func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.SetWidth(clamp(styles.ContentWidth(msg.Width)-6, 20, 70))
		return v, nil

	case doneMsg:
		v.err = nil
		v.loaded = true
		if msg.action == "comments:save" {
			v.composing = false
			v.editingID = 0
			v.input.Reset()
			v.input.Blur()
		}
		return v, nil

	case ErrorMsg:
		v.err = msg.Err
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		if v.composing {
			return v.updateComposing(msg)
		}
		return v.updateBrowsing(msg)
	}
	return v, nil
}

func (v *TaskDetailView) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToBoard{} }
	case key.Matches(msg, v.keys.Refresh):
		return v, v.Init()
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor = clamp(v.cursor+1, 0, max(len(v.comments.Get(v.task.ID))-1, 0))
	case key.Matches(msg, v.keys.Comment), key.Matches(msg, v.keys.New):
		v.composing = true
		v.editingID = 0
		v.input.Reset()
		return v, v.input.Focus()
	case key.Matches(msg, v.keys.Edit):
		if c, ok := v.selectedComment(); ok && v.ownComment(c) {
			v.composing = true
			v.editingID = c.ID
			v.input.SetValue(c.Body)
			return v, v.input.Focus()
		}
	case key.Matches(msg, v.keys.Delete):
		if c, ok := v.selectedComment(); ok && v.ownComment(c) {
			id := c.ID
			return v, call("comments:delete", func() error { return v.svc.Comments.Delete(v.ctx, id) })
		}
	case key.Matches(msg, v.keys.MoveBack), key.Matches(msg, v.keys.MoveNext):
		return v, v.move(key.Matches(msg, v.keys.MoveNext))
	}
	return v, nil
}

func (v *TaskDetailView) move(forward bool) tea.Cmd {
	t := v.current()
	i := 0
	for j, st := range models.Statuses {
		if st == t.Status {
			i = j
		}
	}
	if forward {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(models.Statuses) {
		return nil
	}
	status := models.Statuses[i]
	return call("tasks:move", func() error {
		_, err := v.svc.Tasks.Move(v.ctx, t.ID, status)
		return err
	})
}

func (v *TaskDetailView) updateComposing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.composing = false
		v.editingID = 0
		v.input.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		body := strings.TrimSpace(v.input.Value())
		if body == "" {
			return v, nil
		}
		if v.editingID != 0 {
			id := v.editingID
			return v, call("comments:save", func() error {
				_, err := v.svc.Comments.Update(v.ctx, id, models.UpdateCommentRequest{Body: &body})
				return err
			})
		}
		req := models.CreateCommentRequest{Body: body, TaskID: v.task.ID}
		return v, call("comments:save", func() error {
			_, err := v.svc.Comments.Create(v.ctx, req)
			return err
		})
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TaskDetailView) View() string {
	s := v.styles
	t := v.current()
	width := styles.ContentWidth(v.width)

	meta := []string{
		styles.Status(t.Status).Render(t.Status.Label()),
		styles.Priority(t.Priority).Render(string(t.Priority) + " priority"),
	}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.Format(dueLayout))
	}
	if !t.CreatedAt.IsZero() {
		meta = append(meta, s.TitleMuted.Render("created "+t.CreatedAt.Format(dueLayout)))
	}

	rows := []string{
		s.Title.Render(t.Title),
		strings.Join(meta, s.TitleMuted.Render(" · ")),
		"",
	}
	if t.Description != "" {
		rows = append(rows, lipgloss.NewStyle().Width(width-4).Render(t.Description), "")
	}

	comments := v.comments.Get(t.ID)
	rows = append(rows, s.Subtitle.Render(fmt.Sprintf("Comments (%d)", len(comments))))
	switch {
	case !v.loaded:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case len(comments) == 0:
		rows = append(rows, s.TitleMuted.Render("No comments yet"))
	}
	cursor := clamp(v.cursor, 0, max(len(comments)-1, 0))
	for i, c := range comments {
		rows = append(rows, v.renderComment(c, width-4, i == cursor && !v.composing))
	}

	if v.composing {
		label := "New comment"
		if v.editingID != 0 {
			label = "Edit comment"
		}
		rows = append(rows, "", s.Subtitle.Render(label), s.InputFocused.Render(v.input.View()))
	}
	if e := errorText(s, v.err); e != "" {
		rows = append(rows, "", e)
	}
	rows = append(rows, v.renderHelp())

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

func (v *TaskDetailView) renderComment(c models.Comment, width int, selected bool) string {
	s := v.styles
	header := s.Author.Render(c.UserName)
	if !c.CreatedAt.IsZero() {
		header += s.TitleMuted.Render("  " + c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	body := lipgloss.NewStyle().Width(width - 2).Render(c.Body)
	block := header + "\n" + body
	if selected {
		return s.ListSelected.Render(block)
	}
	return s.ListItem.Render(block)
}

func (v *TaskDetailView) renderHelp() string {
	k := v.styles.HelpKey.Render
	if v.composing {
		return v.styles.Help.Render(fmt.Sprintf("%s post • %s cancel", k("ctrl+s"), k("esc")))
	}
	return v.styles.Help.Render(fmt.Sprintf("%s comment • %s edit own • %s delete own • %s move • %s back",
		k("c"), k("e"), k("d"), k("[ ]"), k("esc")))
}
