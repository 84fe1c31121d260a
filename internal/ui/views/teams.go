package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/ui/keys"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

type teamItem struct {
	team models.Team
}

func (i teamItem) Title() string { return i.team.Name }
func (i teamItem) Description() string {
	members := fmt.Sprintf("%d members", i.team.MemberCount)
	if i.team.MemberCount == 1 {
		members = "1 member"
	}
	if i.team.Description == "" {
		return members
	}
	return i.team.Description + " · " + members
}
func (i teamItem) FilterValue() string { return i.team.Name }

// itemDelegate renders two-line list entries for teams and projects
type itemDelegate struct {
	styles *styles.Styles
	width  int
}

func (d *itemDelegate) Height() int                               { return 2 }
func (d *itemDelegate) Spacing() int                              { return 1 }
func (d *itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d *itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(list.DefaultItem)
	if !ok {
		return
	}
	width := max(d.width-4, 20)

	titleStyle, descStyle := d.styles.ListItem, d.styles.ListItem
	if index == m.Index() {
		titleStyle, descStyle = d.styles.ListSelected, d.styles.ListSelected
	}
	descStyle = descStyle.Foreground(styles.Current.ForegroundDim)

	fmt.Fprintf(w, "%s\n%s",
		titleStyle.Width(width).Render(truncate(it.Title(), width-4)),
		descStyle.Width(width).Render(truncate(it.Description(), width-4)),
	)
}

func newItemList(title string, s *styles.Styles) (list.Model, *itemDelegate) {
	delegate := &itemDelegate{styles: s, width: 80}
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = s.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return l, delegate
}

// SelectedTeam opens a team's projects
type SelectedTeam struct {
	Team models.Team
}

// LogoutRequested asks the app to end the session
type LogoutRequested struct{}

type teamMode int

const (
	teamsBrowsing teamMode = iota
	teamsCreating
	teamsEditing
	teamsAddingMember
	teamsConfirmDelete
)

// TeamListView lists the user's teams
type TeamListView struct {
	ctx      context.Context
	svc      Services
	list     list.Model
	delegate *itemDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	version  uint64
	loaded   bool
	err      error

	mode   teamMode
	form   *form
	target models.Team
}

func NewTeamListView(ctx context.Context, svc Services) *TeamListView {
	s := styles.NewStyles()
	l, delegate := newItemList("Teams", s)
	return &TeamListView{
		ctx:      ctx,
		svc:      svc,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *TeamListView) Init() tea.Cmd {
	v.sync()
	return v.load()
}

func (v *TeamListView) load() tea.Cmd {
	return call("teams:load", func() error {
		_, err := v.svc.Teams.Load(v.ctx)
		return err
	})
}

// sync rebuilds the list when the team cache moved on
func (v *TeamListView) sync() {
	c := v.svc.Teams.Cache()
	ver := c.Version()
	if ver == v.version {
		return
	}
	v.version = ver
	v.loaded = true

	teams := c.Items()
	items := make([]list.Item, len(teams))
	for i, t := range teams {
		items[i] = teamItem{team: t}
	}
	v.list.SetItems(items)
}

func (v *TeamListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if msg.action == "teams:load" {
			v.loaded = true
		}
		if v.mode != teamsBrowsing {
			v.mode = teamsBrowsing
			v.form = nil
		}
		v.sync()
		return v, nil

	case ErrorMsg:
		v.err = msg.Err
		v.loaded = true
		if v.mode == teamsConfirmDelete {
			v.mode = teamsBrowsing
		}
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case teamsConfirmDelete:
			return v.updateConfirmDelete(msg)
		case teamsCreating, teamsEditing, teamsAddingMember:
			return v.updateForm(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg { return LogoutRequested{} }
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.New):
			v.mode = teamsCreating
			v.form = newForm("New Team", "Create").
				add("Name:", "Team name", "", 100).
				add("Description:", "Description (optional)", "", 500)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(teamItem); ok {
				return v, func() tea.Msg { return SelectedTeam{Team: item.team} }
			}
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(teamItem); ok {
				v.mode = teamsEditing
				v.target = item.team
				v.form = newForm("Edit Team", "Save").
					add("Name:", "Team name", item.team.Name, 100).
					add("Description:", "Description", item.team.Description, 500)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Member):
			if item, ok := v.list.SelectedItem().(teamItem); ok {
				v.mode = teamsAddingMember
				v.target = item.team
				v.form = newForm("Add member to "+item.team.Name, "Add").
					add("User ID:", "e.g. 42", "", 19)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(teamItem); ok {
				v.mode = teamsConfirmDelete
				v.target = item.team
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TeamListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.target.ID
		return v, call("teams:delete", func() error { return v.svc.Teams.Delete(v.ctx, id) })
	case "n", "N", "esc":
		v.mode = teamsBrowsing
	}
	return v, nil
}

func (v *TeamListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = teamsBrowsing
		v.form = nil
		v.err = nil
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.submit()
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
		return v, v.submit()
	}
	return v, v.form.update(msg)
}

func (v *TeamListView) submit() tea.Cmd {
	switch v.mode {
	case teamsCreating:
		req := models.CreateTeamRequest{
			Name:        strings.TrimSpace(v.form.value(0)),
			Description: strings.TrimSpace(v.form.value(1)),
		}
		return call("teams:create", func() error {
			_, err := v.svc.Teams.Create(v.ctx, req)
			return err
		})

	case teamsEditing:
		var req models.UpdateTeamRequest
		if name := strings.TrimSpace(v.form.value(0)); name != v.target.Name {
			req.Name = &name
		}
		if desc := strings.TrimSpace(v.form.value(1)); desc != v.target.Description {
			req.Description = &desc
		}
		if req.Name == nil && req.Description == nil {
			v.mode = teamsBrowsing
			return nil
		}
		id := v.target.ID
		return call("teams:update", func() error {
			_, err := v.svc.Teams.Update(v.ctx, id, req)
			return err
		})

	case teamsAddingMember:
		userID, err := strconv.ParseInt(strings.TrimSpace(v.form.value(0)), 10, 64)
		if err != nil {
			v.err = errors.New("user id must be a number")
			return nil
		}
		teamID := v.target.ID
		return call("teams:member", func() error { return v.svc.Teams.AddMember(v.ctx, teamID, userID) })
	}
	return nil
}

func (v *TeamListView) View() string {
	s := v.styles
	switch v.mode {
	case teamsCreating, teamsEditing, teamsAddingMember:
		return dialog(v.form.view(s, styles.ContentWidth(v.width), errorText(s, v.err)), v.width, v.height)
	case teamsConfirmDelete:
		return dialog(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Foreground(styles.Current.Error).Render("Delete Team?"),
			"",
			s.TitleMuted.Render(fmt.Sprintf("%q will be deleted for everyone.", v.target.Name)),
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
			s.Title.Render("No Teams"),
			"",
			s.TitleMuted.Render("Press 'n' to create your first team"),
			"",
			errLine,
		), v.width, v.height)
	}

	content := v.list.View() + "\n" + errLine + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *TeamListView) renderHelp() string {
	k := v.styles.HelpKey.Render
	return v.styles.Help.Render(fmt.Sprintf("%s open • %s new • %s edit • %s member • %s del • %s refresh • %s quit",
		k("↵"), k("n"), k("e"), k("m"), k("d"), k("r"), k("q")))
}
