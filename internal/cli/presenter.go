package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// Presenter prints controller output to the terminal. Navigation is
// remembered so the runner can act on it once the command returns.
type Presenter struct {
	out, errOut io.Writer

	mu   sync.Mutex
	next *app.View
}

// NewPresenter writes notices and lists to out, alerts to errOut.
func NewPresenter(out, errOut io.Writer) *Presenter {
	return &Presenter{out: out, errOut: errOut}
}

func (p *Presenter) Notify(msg string) { ui.OK(p.out, msg) }

func (p *Presenter) Alert(msg string) { ui.Fail(p.errOut, msg) }

func (p *Presenter) Navigate(v app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next = &v
}

func (p *Presenter) ShowTodos(todos []model.Todo) {
	lines := []string{ui.Header(len(todos)), ""}
	lines = append(lines, ui.TodoLines(todos)...)
	lines = append(lines, "", ui.Current().Muted.Render("Tip: `tada edit <id>` or `tada rm <id>`"))
	fmt.Fprintln(p.out, ui.Panel(strings.Join(lines, "\n")))
}

// takeNavigation returns and clears the pending navigation.
func (p *Presenter) takeNavigation() (app.View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next == nil {
		return 0, false
	}
	v := *p.next
	p.next = nil
	return v, true
}
