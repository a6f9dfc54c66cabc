package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/ui"
)

// form is a two-field input used by the auth screens and the inline
// add/edit bar.
type form struct {
	title  string
	labels [2]string
	inputs [2]textinput.Model
	focus  int
}

func newForm(title, first, second string, secret bool) form {
	f := form{title: title, labels: [2]string{first, second}}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		ti.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = ti
	}
	f.inputs[0].Placeholder = first
	f.inputs[1].Placeholder = second
	if secret {
		f.inputs[1].EchoMode = textinput.EchoPassword
		f.inputs[1].EchoCharacter = '•'
	}
	return f
}

// open resets the form to the given values with the first field focused.
func (f form) open(first, second string) form {
	f.inputs[0].SetValue(first)
	f.inputs[1].SetValue(second)
	f.inputs[0].CursorEnd()
	f.inputs[1].CursorEnd()
	return f.focusOn(0)
}

func (f form) close() form {
	for i := range f.inputs {
		f.inputs[i].Blur()
		f.inputs[i].SetValue("")
	}
	f.focus = 0
	return f
}

func (f form) focusOn(i int) form {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f
}

// toggle moves focus to the other field.
func (f form) toggle() form { return f.focusOn(1 - f.focus) }

func (f form) values() (string, string) {
	return f.inputs[0].Value(), f.inputs[1].Value()
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(t.Title.Render(f.title))
	for i, in := range f.inputs {
		b.WriteString("\n")
		label := t.Muted.Render(f.labels[i])
		if i == f.focus {
			label = t.Accent.Render(f.labels[i])
		}
		b.WriteString(label + "\n" + in.View())
	}
	return b.String()
}
