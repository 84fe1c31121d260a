package views

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/ui/styles"
)

// form is a vertical stack of labelled inputs followed by a submit button.
// focus == len(inputs) means the button is focused.
type form struct {
	title  string
	submit string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(title, submit string) *form {
	return &form{title: title, submit: submit}
}

func (f *form) add(label, placeholder, value string, limit int) *form {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	f.labels = append(f.labels, label)
	f.inputs = append(f.inputs, in)
	f.setFocus(0)
	return f
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

func (f *form) onButton() bool {
	return f.focus == len(f.inputs)
}

func (f *form) move(delta int) {
	n := len(f.inputs) + 1
	f.setFocus((f.focus + delta + n) % n)
}

func (f *form) setFocus(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if f.onButton() {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view(s *styles.Styles, width int, footer string) string {
	inputWidth := clamp(width-6, 20, 50)
	rows := []string{s.Title.Render(f.title), ""}
	for i, in := range f.inputs {
		style := s.Input
		if i == f.focus {
			style = s.InputFocused
		}
		rows = append(rows, f.labels[i], style.Width(inputWidth).Render(in.View()), "")
	}
	btn := s.Button
	if f.onButton() {
		btn = s.ButtonFocused
	}
	rows = append(rows, btn.Render(" "+f.submit+" "))
	if footer != "" {
		rows = append(rows, "", footer)
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
