package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
	"github.com/tgienger/teamboard/internal/ui/keys"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

// LoggedIn is sent once the session holds a token
type LoggedIn struct {
	User models.User
}

// LoginView signs in or registers
type LoginView struct {
	ctx      context.Context
	svc      Services
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	register bool
	busy     bool
	err      error

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	focusIdx int
}

func NewLoginView(ctx context.Context, svc Services) *LoginView {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 200

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 200

	v := &LoginView{
		ctx:      ctx,
		svc:      svc,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		name:     name,
		email:    email,
		password: password,
	}
	v.updateFocus()
	return v
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// fields returns the inputs shown in the current mode
func (v *LoginView) fields() []*textinput.Model {
	if v.register {
		return []*textinput.Model{&v.name, &v.email, &v.password}
	}
	return []*textinput.Model{&v.email, &v.password}
}

func (v *LoginView) updateFocus() {
	for i, f := range v.fields() {
		if i == v.focusIdx {
			f.Focus()
		} else {
			f.Blur()
		}
	}
}

func (v *LoginView) submit() tea.Cmd {
	v.busy = true
	v.err = nil
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if v.register {
		req := models.RegisterRequest{Name: strings.TrimSpace(v.name.Value()), Email: email, Password: password}
		return func() tea.Msg {
			user, err := v.svc.Auth.Register(v.ctx, req)
			if err != nil {
				return ErrorMsg{Err: err}
			}
			return LoggedIn{User: user}
		}
	}
	req := models.LoginRequest{Email: email, Password: password}
	return func() tea.Msg {
		user, err := v.svc.Auth.Login(v.ctx, req)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return LoggedIn{User: user}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case ErrorMsg:
		v.busy = false
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case msg.String() == "ctrl+r":
			v.register = !v.register
			v.focusIdx = 0
			v.err = nil
			v.updateFocus()
			return v, nil
		case msg.String() == "shift+tab":
			n := len(v.fields())
			v.focusIdx = (v.focusIdx + n - 1) % n
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % len(v.fields())
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < len(v.fields())-1 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	f := v.fields()[v.focusIdx]
	*f, cmd = f.Update(msg)
	return v, cmd
}

func (v *LoginView) View() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 50)

	title, toggle := "Sign in", "Ctrl+R: create an account"
	if v.register {
		title, toggle = "Create account", "Ctrl+R: sign in instead"
	}

	rows := []string{s.Title.Render(title), ""}
	labels := []string{"Email:", "Password:"}
	if v.register {
		labels = append([]string{"Name:"}, labels...)
	}
	for i, f := range v.fields() {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(f.View()), "")
	}

	if v.busy {
		rows = append(rows, s.TitleMuted.Render("Signing in..."))
	} else if e := errorText(s, v.err); e != "" {
		rows = append(rows, e)
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Enter: submit • "+toggle))

	return dialog(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}
