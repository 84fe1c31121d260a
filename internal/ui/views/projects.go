package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/selector"
	"github.com/tgienger/teamboard/internal/ui/keys"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

// SelectedProject opens a project's board
type SelectedProject struct {
	Project models.Project
}

// BackToTeams returns to the team list
type BackToTeams struct{}

// ProjectListView lists the projects of one team
type ProjectListView struct {
	ctx      context.Context
	svc      Services
	team     models.Team
	byTeam   *selector.Memo[models.Project, int64, []models.Project]
	list     list.Model
	delegate *itemDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	version  uint64
	loaded   bool
	err      error

	form             *form
	confirmingDelete bool
	deleteTarget     models.Project
}

func NewProjectListView(ctx context.Context, svc Services, team models.Team) *ProjectListView {
	s := styles.NewStyles()
	l, delegate := newItemList(team.Name+" · Projects", s)
	return &ProjectListView{
		ctx:      ctx,
		svc:      svc,
		team:     team,
		byTeam:   selector.ProjectsByTeam(svc.Projects.Cache()),
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	v.sync()
	return v.load()
}

func (v *ProjectListView) load() tea.Cmd {
	return call("projects:load", func() error {
		_, err := v.svc.Projects.Load(v.ctx)
		return err
	})
}

func (v *ProjectListView) sync() {
	ver := v.svc.Projects.Cache().Version()
	if ver == v.version {
		return
	}
	v.version = ver
	v.loaded = true

	projects := v.byTeam.Get(v.team.ID)
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	v.list.SetItems(items)
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case CacheChanged:
		v.sync()
		return v, nil

	case doneMsg:
		v.err = nil
		v.loaded = true
		v.form = nil
		v.confirmingDelete = false
		v.sync()
		return v, nil

	case ErrorMsg:
		v.err = msg.Err
		v.loaded = true
		v.confirmingDelete = false
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.form != nil {
			return v.updateForm(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToTeams{} }
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.New):
			v.form = newForm("New Project in "+v.team.Name, "Create").
				add("Name:", "Project name", "", 100).
				add("Description:", "Description (optional)", "", 500)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg { return SelectedProject{Project: item.project} }
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTarget.ID
		return v, call("projects:delete", func() error { return v.svc.Projects.Delete(v.ctx, id) })
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.form = nil
		v.err = nil
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.create()
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
		return v, v.create()
	}
	return v, v.form.update(msg)
}

func (v *ProjectListView) create() tea.Cmd {
	req := models.CreateProjectRequest{
		Name:        strings.TrimSpace(v.form.value(0)),
		Description: strings.TrimSpace(v.form.value(1)),
		TeamID:      v.team.ID,
	}
	return func() tea.Msg {
		p, err := v.svc.Projects.Create(v.ctx, req)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return SelectedProject{Project: p}
	}
}

func (v *ProjectListView) View() string {
	s := v.styles
	if v.form != nil {
		return dialog(v.form.view(s, styles.ContentWidth(v.width), errorText(s, v.err)), v.width, v.height)
	}
	if v.confirmingDelete {
		return dialog(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
			"",
			s.TitleMuted.Render(fmt.Sprintf("%q and its tasks will be deleted.", v.deleteTarget.Name)),
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

	errLine := errorText(s, v.err)
	if len(v.list.Items()) == 0 {
		return dialog(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("No Projects"),
			"",
			s.TitleMuted.Render(fmt.Sprintf("Press 'n' to create the first project for %s", v.team.Name)),
			"",
			errLine,
		), v.width, v.height)
	}

	content := v.list.View() + "\n" + errLine + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	k := v.styles.HelpKey.Render
	return v.styles.Help.Render(fmt.Sprintf("%s open • %s new • %s del • %s refresh • %s back • %s quit",
		k("↵"), k("n"), k("d"), k("r"), k("esc"), k("q")))
}
