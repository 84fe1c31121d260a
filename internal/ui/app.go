package ui

import (
	"context"
	"errors"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/cache"
	"github.com/tgienger/teamboard/internal/logger"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/store"
	"github.com/tgienger/teamboard/internal/ui/views"
)

// LastTeamKey remembers the team that was open when the app last quit
const LastTeamKey = "last_team_id"

var errSessionExpired = errors.New("your session has expired, please sign in again")

// View is the screen currently shown
type View int

const (
	ViewLogin View = iota
	ViewTeams
	ViewProjects
	ViewBoard
	ViewTask
)

type sessionExpired struct{}

type App struct {
	ctx context.Context
	svc views.Services
	kv  store.KV

	changes chan struct{}
	expired chan struct{}
	unsubs  []func()

	currentView View
	login       *views.LoginView
	teams       *views.TeamListView
	projects    *views.ProjectListView
	board       *views.TaskBoardView
	detail      *views.TaskDetailView

	pendingTeam int64
	width       int
	height      int
}

// NewApp wires the views to the services. Every cache emission and every
// 401 from client is turned into a message for the running program.
func NewApp(ctx context.Context, svc views.Services, client *api.Client, kv store.KV) *App {
	a := &App{
		ctx:     ctx,
		svc:     svc,
		kv:      kv,
		changes: make(chan struct{}, 1),
		expired: make(chan struct{}, 1),
	}

	notify := func() {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	}
	a.unsubs = append(a.unsubs,
		svc.Teams.Cache().Subscribe(func(cache.Snapshot[models.Team]) { notify() }),
		svc.Projects.Cache().Subscribe(func(cache.Snapshot[models.Project]) { notify() }),
		svc.Tasks.Cache().Subscribe(func(cache.Snapshot[models.Task]) { notify() }),
		svc.Comments.Cache().Subscribe(func(cache.Snapshot[models.Comment]) { notify() }),
		svc.Tasks.Cache().SubscribeLoading(func(bool) { notify() }),
		client.OnUnauthenticated(func() {
			select {
			case a.expired <- struct{}{}:
			default:
			}
		}),
	)

	if kv != nil {
		if raw, ok, err := kv.Get(ctx, LastTeamKey); err == nil && ok {
			a.pendingTeam, _ = strconv.ParseInt(raw, 10, 64)
		}
	}
	return a
}

// Close drops the cache subscriptions
func (a *App) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
}

func (a *App) waitForChange() tea.Msg {
	<-a.changes
	return views.CacheChanged{}
}

func (a *App) waitForExpiry() tea.Msg {
	<-a.expired
	return sessionExpired{}
}

func (a *App) Init() tea.Cmd {
	var start tea.Cmd
	if a.svc.Auth.Authenticated() {
		start = a.openTeams()
	} else {
		start = a.openLogin(nil)
	}
	return tea.Batch(start, a.waitForChange, a.waitForExpiry)
}

// resize replays the last window size into a freshly opened view
func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) openLogin(err error) tea.Cmd {
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.ctx, a.svc)
	if err != nil {
		a.login.Update(views.ErrorMsg{Err: err})
	}
	return tea.Batch(a.login.Init(), a.resize)
}

func (a *App) openTeams() tea.Cmd {
	a.currentView = ViewTeams
	if a.teams == nil {
		a.teams = views.NewTeamListView(a.ctx, a.svc)
	}
	return tea.Batch(a.teams.Init(), a.resize)
}

func (a *App) openProjects(team models.Team) tea.Cmd {
	a.currentView = ViewProjects
	a.projects = views.NewProjectListView(a.ctx, a.svc, team)
	a.remember(strconv.FormatInt(team.ID, 10))
	return tea.Batch(a.projects.Init(), a.resize)
}

func (a *App) openBoard(project models.Project) tea.Cmd {
	a.currentView = ViewBoard
	a.board = views.NewTaskBoardView(a.ctx, a.svc, project)
	return tea.Batch(a.board.Init(), a.resize)
}

func (a *App) openTask(task models.Task) tea.Cmd {
	a.currentView = ViewTask
	a.detail = views.NewTaskDetailView(a.ctx, a.svc, task)
	return tea.Batch(a.detail.Init(), a.resize)
}

func (a *App) remember(teamID string) {
	if a.kv == nil {
		return
	}
	var err error
	if teamID == "" {
		err = a.kv.Delete(a.ctx, LastTeamKey)
	} else {
		err = a.kv.Set(a.ctx, LastTeamKey, teamID)
	}
	if err != nil {
		logger.Warn("remember last team: %v", err)
	}
}

// reopenLastTeam jumps into the team that was open last time, once the
// team list has loaded
func (a *App) reopenLastTeam() tea.Cmd {
	if a.pendingTeam == 0 || a.currentView != ViewTeams || a.svc.Teams.Cache().Version() == 0 {
		return nil
	}
	id := a.pendingTeam
	a.pendingTeam = 0
	if team, ok := a.svc.Teams.Cache().Get(id); ok {
		return a.openProjects(team)
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.CacheChanged:
		cmd := a.forward(msg)
		return a, tea.Batch(cmd, a.reopenLastTeam(), a.waitForChange)

	case sessionExpired:
		logger.Info("session expired, returning to login")
		a.teams, a.projects, a.board, a.detail = nil, nil, nil, nil
		return a, tea.Batch(a.openLogin(errSessionExpired), a.waitForExpiry)

	case views.LoggedIn:
		logger.Info("signed in as user %d", msg.User.ID)
		return a, a.openTeams()

	case views.LogoutRequested:
		a.svc.Auth.Logout(a.ctx)
		a.remember("")
		a.teams, a.projects, a.board, a.detail = nil, nil, nil, nil
		return a, a.openLogin(nil)

	case views.SelectedTeam:
		return a, a.openProjects(msg.Team)

	case views.BackToTeams:
		a.remember("")
		return a, a.openTeams()

	case views.SelectedProject:
		return a, a.openBoard(msg.Project)

	case views.BackToProjects:
		if a.projects == nil {
			return a, a.openTeams()
		}
		a.currentView = ViewProjects
		return a, tea.Batch(a.projects.Init(), a.resize)

	case views.OpenTask:
		return a, a.openTask(msg.Task)

	case views.BackToBoard:
		if a.board == nil {
			return a, a.openTeams()
		}
		a.currentView = ViewBoard
		return a, a.resize
	}

	return a, a.forward(msg)
}

// forward hands msg to the active view
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.login.Update(msg)
	case ViewTeams:
		_, cmd = a.teams.Update(msg)
	case ViewProjects:
		_, cmd = a.projects.Update(msg)
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewTask:
		_, cmd = a.detail.Update(msg)
	}
	return cmd
}

func (a *App) View() string {
	if a.login == nil && a.teams == nil {
		return ""
	}
	switch a.currentView {
	case ViewLogin:
		return a.login.View()
	case ViewProjects:
		return a.projects.View()
	case ViewBoard:
		return a.board.View()
	case ViewTask:
		return a.detail.View()
	}
	return a.teams.View()
}
