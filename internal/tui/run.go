// Package tui is the full-screen front-end started by `tada ui`.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/session"
)

// Options wires the UI to the backend and the session it shares with the CLI.
type Options struct {
	Backend app.Backend
	Session *session.Session
	// Logger must not write to the terminal the UI draws on.
	Logger *log.Logger

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// Run starts the UI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opt Options) error {
	b := &bridge{}
	ctrl := app.New(opt.Backend, opt.Session, b, opt.Logger)

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opt.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opt.Input))
	}
	if opt.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opt.Output))
	}

	p := tea.NewProgram(newModel(ctx, ctrl.Handlers()), progOpts...)
	b.setSend(p.Send)
	defer b.setSend(nil)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
