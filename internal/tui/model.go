package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// todoItem adapts model.Todo to bubbles/list.Item.
type todoItem struct{ todo model.Todo }

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return i.todo.Description }
func (i todoItem) FilterValue() string { return i.todo.Title + " " + i.todo.Description }

// Single line per todo: "title --- description".
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := ui.TodoLine(it.todo)
	prefix := strings.Repeat(" ", lipgloss.Width(t.SymCursor))
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor)
		line = t.Selected.Render(line)
	}
	fmt.Fprintln(w, prefix+line)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

type keyMap struct {
	add, edit, del, reload, logout, quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		del:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		logout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.add, k.edit, k.del, k.reload, k.logout}
}

// Model is the Bubble Tea model behind `tada ui`.
type Model struct {
	ctx    context.Context
	events app.Table
	keys   keyMap

	screen app.View
	auth   form

	list   list.Model
	mode   mode
	editor form
	editID model.ID

	notice    string
	noticeErr bool
	busy      int

	width, height int
}

func newModel(ctx context.Context, events app.Table) Model {
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Todos"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.help
	l.AdditionalFullHelpKeys = keys.help

	m := Model{
		ctx:    ctx,
		events: events,
		keys:   keys,
		screen: app.ViewIndex,
		list:   l,
		editor: newForm("", "Title", "Description", false),
		width:  80,
		height: 24,
		busy:   1, // Init's page load
	}
	m.auth = authForm(app.ViewLogin)
	m.resize()
	return m
}

func authForm(v app.View) form {
	title := "Log in"
	if v == app.ViewRegister {
		title = "Register"
	}
	return newForm(title, "Username", "Password", true).focusOn(0)
}

// dispatch runs ev off the update loop. Its presenter output arrives as
// separate messages before the returned doneMsg.
func (m *Model) dispatch(ev app.Event, p app.Payload) tea.Cmd {
	m.busy++
	ctx, events := m.ctx, m.events
	return func() tea.Msg {
		return doneMsg{ev: ev, err: events.Dispatch(ctx, ev, p)}
	}
}

// Init loads the index, which bounces to login when no token is held.
func (m Model) Init() tea.Cmd {
	ctx, events := m.ctx, m.events
	p := app.Payload{View: app.ViewIndex}
	return func() tea.Msg {
		return doneMsg{ev: app.EventPageLoad, err: events.Dispatch(ctx, app.EventPageLoad, p)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case noticeMsg:
		m.notice, m.noticeErr = msg.text, msg.isErr
		return m, nil

	case navigateMsg:
		return m.navigate(msg.view)

	case todosMsg:
		items := make([]list.Item, 0, len(msg.todos))
		for _, td := range msg.todos {
			items = append(items, todoItem{todo: td})
		}
		return m, m.list.SetItems(items)

	case doneMsg:
		if m.busy > 0 {
			m.busy--
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == app.ViewIndex {
			return m.updateIndex(msg)
		}
		return m.updateAuth(msg)
	}

	if m.screen == app.ViewIndex && m.mode == browsing {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) navigate(v app.View) (tea.Model, tea.Cmd) {
	m.screen = v
	m.mode = browsing
	m.editor = m.editor.close()
	if v == app.ViewIndex {
		m.auth = m.auth.close()
		return m, m.dispatch(app.EventPageLoad, app.Payload{View: app.ViewIndex})
	}
	m.list.ResetFilter()
	m.list.SetItems(nil)
	m.auth = authForm(v)
	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.auth = m.auth.toggle()
		return m, nil
	case "ctrl+r":
		return m.navigate(app.ViewRegister)
	case "ctrl+l":
		return m.navigate(app.ViewLogin)
	case "enter":
		user, pass := m.auth.values()
		creds := model.Credentials{Username: strings.TrimSpace(user), Password: pass}
		ev := app.EventLoginSubmit
		if m.screen == app.ViewRegister {
			ev = app.EventRegisterSubmit
		}
		m.auth.inputs[1].SetValue("")
		m.notice = ""
		return m, m.dispatch(ev, app.Payload{Credentials: creds})
	}
	var cmd tea.Cmd
	m.auth, cmd = m.auth.update(msg)
	return m, cmd
}

func (m Model) updateIndex(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != browsing {
		return m.updateEditor(msg)
	}
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		m.mode = adding
		m.editor.title = "Add todo"
		m.editor = m.editor.open("", "")
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.edit):
		td, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = editing
		m.editID = td.ID
		m.editor.title = "Edit todo"
		m.editor = m.editor.open(td.Title, td.Description)
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.del):
		td, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.dispatch(app.EventDeleteClick, app.Payload{ID: td.ID})
	case key.Matches(msg, m.keys.reload):
		return m, m.dispatch(app.EventReload, app.Payload{})
	case key.Matches(msg, m.keys.logout):
		return m, m.dispatch(app.EventLogoutClick, app.Payload{})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = browsing
		m.editor = m.editor.close()
		m.resize()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.editor = m.editor.toggle()
		return m, nil
	case "enter":
		title, desc := m.editor.values()
		var cmd tea.Cmd
		if m.mode == adding {
			cmd = m.dispatch(app.EventAddSubmit, app.Payload{Draft: model.Draft{Title: title, Description: desc}})
		} else {
			req := model.EditRequest{ID: m.editID, Title: &title, Description: &desc}
			cmd = m.dispatch(app.EventEditClick, app.Payload{Edit: req})
		}
		m.mode = browsing
		m.editor = m.editor.close()
		m.resize()
		return m, cmd
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.update(msg)
	return m, cmd
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) resize() {
	h := m.height - 5
	if m.mode != browsing {
		h -= 6
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	t := ui.Current()

	var content string
	if m.screen == app.ViewIndex {
		content = m.list.View()
		if m.mode != browsing {
			bar := lipgloss.NewStyle().
				Border(t.Border).
				BorderForeground(t.BorderColor).
				Padding(0, 1)
			content += "\n" + bar.Render(m.editor.view())
		}
	} else {
		other := "ctrl+r register"
		if m.screen == app.ViewRegister {
			other = "ctrl+l log in"
		}
		content = m.auth.view() + "\n\n" +
			t.Muted.Render("tab next • enter submit • "+other+" • esc quit")
	}

	status := m.notice
	switch {
	case status == "":
	case m.noticeErr:
		status = t.Error.Render(t.SymFail + " " + status)
	default:
		status = t.Success.Render(t.SymOK + " " + status)
	}
	if m.busy > 0 {
		status = strings.TrimSpace(status + " " + t.Muted.Render("working..."))
	}
	if status != "" {
		content += "\n" + status
	}
	return ui.Panel(content)
}
