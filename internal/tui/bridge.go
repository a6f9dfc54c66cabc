package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/model"
)

// Messages the controller's output becomes once it reaches the program.
type (
	noticeMsg struct {
		text  string
		isErr bool
	}
	navigateMsg struct{ view app.View }
	todosMsg    struct{ todos []model.Todo }

	// doneMsg ends one dispatched event.
	doneMsg struct {
		ev  app.Event
		err error
	}
)

// bridge implements app.Presenter by forwarding to a running program.
// Output produced before send is set is dropped.
type bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (b *bridge) setSend(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) emit(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *bridge) Notify(msg string) { b.emit(noticeMsg{text: msg}) }

func (b *bridge) Alert(msg string) { b.emit(noticeMsg{text: msg, isErr: true}) }

func (b *bridge) Navigate(v app.View) { b.emit(navigateMsg{view: v}) }

func (b *bridge) ShowTodos(todos []model.Todo) {
	cp := make([]model.Todo, len(todos))
	copy(cp, todos)
	b.emit(todosMsg{todos: cp})
}
