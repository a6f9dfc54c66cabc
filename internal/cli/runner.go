package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/ui"
)

// Options wires the runner to its terminal and to the interactive UI.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// APIURL is shown by `status`.
	APIURL string
	// Interactive starts the full-screen UI for `tada ui`.
	Interactive func(ctx context.Context) error
}

// Runner dispatches subcommands to the controller's event table.
type Runner struct {
	ctrl   *app.Controller
	events app.Table
	pres   *Presenter
	prompt *prompter
	opt    Options
}

// New creates a Runner. pres must be the Presenter ctrl reports to.
func New(ctrl *app.Controller, pres *Presenter, opt Options) *Runner {
	return &Runner{
		ctrl:   ctrl,
		events: ctrl.Handlers(),
		pres:   pres,
		prompt: newPrompter(opt.Stdin, opt.Stderr),
		opt:    opt,
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error,
// 2 usage or not logged in).
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0

	case "register":
		if len(a) > 1 {
			return r.usage("tada register [username]")
		}
		return r.doCredentials(ctx, app.EventRegisterSubmit, a)

	case "login":
		if len(a) > 1 {
			return r.usage("tada login [username]")
		}
		return r.doCredentials(ctx, app.EventLoginSubmit, a)

	case "logout":
		if len(a) != 0 {
			return r.usage("tada logout")
		}
		return r.dispatch(ctx, app.EventLogoutClick, app.Payload{})

	case "ls":
		if len(a) != 0 {
			return r.usage("tada ls")
		}
		return r.dispatch(ctx, app.EventPageLoad, app.Payload{View: app.ViewIndex})

	case "add":
		return r.doAdd(ctx, a)

	case "edit":
		return r.doEdit(ctx, a)

	case "rm":
		if len(a) != 1 {
			return r.usage("tada rm <id>")
		}
		return r.dispatch(ctx, app.EventDeleteClick, app.Payload{ID: model.ID(a[0])})

	case "status":
		return r.doStatus()

	case "ui":
		if r.opt.Interactive == nil {
			ui.Fail(r.opt.Stderr, "interactive mode unavailable")
			return 1
		}
		if err := r.opt.Interactive(ctx); err != nil {
			ui.Fail(r.opt.Stderr, "ui: "+err.Error())
			return 1
		}
		return 0
	}

	ui.Fail(r.opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.opt.Stderr)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.opt.Stdout, `tada - todo list client

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  register [username]                      Create an account
  login [username]                         Log in and keep the token for one day
  logout                                   End the session and forget the token
  ls                                       List todos
  add [-d description] <title...>          Add a todo
  edit [-t title] [-d description] <id>    Change a todo (prompts for missing values)
  rm <id>                                  Delete a todo
  status                                   Show session details
  ui                                       Interactive mode

Flags:
  -api URL  -state-dir DIR  -log-level LEVEL  -log-format FMT  -theme NAME  -timeout DUR

Examples:
  tada login ann
  tada add -d "2 litres" Buy milk
  tada edit 3
  tada rm 3
`)
}

// -------------- subcommand impls ----------------

func (r *Runner) doCredentials(ctx context.Context, ev app.Event, a []string) int {
	var creds model.Credentials
	var err error
	if len(a) == 1 {
		creds.Username = a[0]
	} else if creds.Username, err = r.prompt.required("Username:"); err != nil {
		ui.Fail(r.opt.Stderr, err.Error())
		return 1
	}
	if creds.Password, err = r.prompt.password("Password:"); err != nil {
		ui.Fail(r.opt.Stderr, err.Error())
		return 1
	}
	return r.dispatch(ctx, ev, app.Payload{Credentials: creds})
}

func (r *Runner) doAdd(ctx context.Context, a []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	desc := fs.String("d", "", "description")
	if err := fs.Parse(a); err != nil || fs.NArg() == 0 {
		return r.usage("tada add [-d description] <title...>")
	}
	d := model.Draft{Title: strings.Join(fs.Args(), " "), Description: *desc}
	return r.dispatch(ctx, app.EventAddSubmit, app.Payload{Draft: d})
}

func (r *Runner) doEdit(ctx context.Context, a []string) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("t", "", "new title")
	desc := fs.String("d", "", "new description")
	if err := fs.Parse(a); err != nil || fs.NArg() != 1 {
		return r.usage("tada edit [-t title] [-d description] <id>")
	}
	req := model.EditRequest{ID: model.ID(fs.Arg(0))}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			req.Title = title
		case "d":
			req.Description = desc
		}
	})

	var err error
	if req.Title == nil {
		if req.Title, err = r.prompt.line("Enter the new task:"); err != nil {
			ui.Fail(r.opt.Stderr, err.Error())
			return 1
		}
	}
	if req.Title != nil && req.Description == nil {
		if req.Description, err = r.prompt.line("Enter the new description:"); err != nil {
			ui.Fail(r.opt.Stderr, err.Error())
			return 1
		}
	}
	if req.Cancelled() {
		ui.Hint(r.opt.Stderr, "edit cancelled")
		return 0
	}
	return r.dispatch(ctx, app.EventEditClick, app.Payload{Edit: req})
}

func (r *Runner) doStatus() int {
	sess := r.ctrl.Session()
	fmt.Fprintf(r.opt.Stdout, "api: %s\n", r.opt.APIURL)
	if !sess.Authenticated() {
		fmt.Fprintln(r.opt.Stdout, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(r.opt.Stdout, "Run: tada login")
		return 0
	}
	fmt.Fprintf(r.opt.Stdout, "source: %s\n", sess.Source())
	if exp := sess.Expires(); !exp.IsZero() {
		fmt.Fprintf(r.opt.Stdout, "expires: %s\n", exp.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintln(r.opt.Stdout, "expires: (unknown)")
	}
	if sess.Source() == session.SourceEnv {
		fmt.Fprintln(r.opt.Stdout, "env override: TADA_TOKEN")
	}
	return 0
}

// dispatch runs ev, then follows any navigation the controller asked for.
func (r *Runner) dispatch(ctx context.Context, ev app.Event, p app.Payload) int {
	err := r.events.Dispatch(ctx, ev, p)
	r.follow(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNotAuthenticated):
		return 2
	default:
		return 1
	}
}

// follow plays the role of a page load after navigation: the index view
// loads the list, the auth views print how to get there.
func (r *Runner) follow(ctx context.Context) {
	v, ok := r.pres.takeNavigation()
	if !ok {
		return
	}
	switch v {
	case app.ViewIndex:
		_ = r.events.Dispatch(ctx, app.EventPageLoad, app.Payload{View: app.ViewIndex})
		r.pres.takeNavigation()
	case app.ViewLogin:
		ui.Hint(r.opt.Stderr, "Run: tada login")
	case app.ViewRegister:
		ui.Hint(r.opt.Stderr, "Run: tada register")
	}
}

func (r *Runner) usage(u string) int {
	ui.Fail(r.opt.Stderr, "usage: "+u)
	return 2
}
