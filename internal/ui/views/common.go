package views

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/service"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

// Services bundles what the views call into
type Services struct {
	Auth     *service.AuthService
	Teams    *service.TeamService
	Projects *service.ProjectService
	Tasks    *service.TaskService
	Comments *service.CommentService
}

// ErrorMsg carries a failed service call back into the program
type ErrorMsg struct{ Err error }

// doneMsg reports a finished call that needs no payload
type doneMsg struct{ action string }

// call runs fn off the UI goroutine
func call(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return ErrorMsg{Err: err}
		}
		return doneMsg{action: action}
	}
}

// errorText renders an error line, or nothing. Superseded loads are not
// worth showing.
func errorText(s *styles.Styles, err error) string {
	if err == nil || errors.Is(err, service.ErrSuperseded) || errors.Is(err, context.Canceled) {
		return ""
	}
	return s.ErrorText.Render(api.UserMessage(err))
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// dialog centers a block in the content area
func dialog(content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height, lipgloss.Center, lipgloss.Center, content)
	return styles.CenterView(centered, width, height)
}

// CacheChanged is forwarded to the active view whenever a service cache
// emits
type CacheChanged struct{}
