// Package app holds the session-gated todo operations shared by every
// front-end. Each operation surfaces its outcome through a Presenter and
// also returns it as an error for callers that need an exit status.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/session"
)

// View is one of the three screens the client renders against.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewIndex
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewIndex:
		return "index"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// RegisteredMessage is shown after a successful registration.
const RegisteredMessage = "Registration successful! Please log in."

// ErrNotAuthenticated is returned, without any request being sent, when an
// operation needs a token and none is held.
var ErrNotAuthenticated = errors.New("not logged in")

// Presenter is the front-end side of the controller.
type Presenter interface {
	Notify(msg string)            // informational notice
	Alert(msg string)             // error notice shown to the user
	Navigate(v View)              // switch screens
	ShowTodos(todos []model.Todo) // replace the displayed list
}

// Backend is the subset of *api.Client the controller uses.
type Backend interface {
	Register(ctx context.Context, creds model.Credentials) error
	Login(ctx context.Context, creds model.Credentials) (string, error)
	Logout(ctx context.Context, ts api.TokenSource) error
	ListTodos(ctx context.Context, ts api.TokenSource) ([]model.Todo, error)
	CreateTodo(ctx context.Context, ts api.TokenSource, d model.Draft) error
	UpdateTodo(ctx context.Context, ts api.TokenSource, id model.ID, d model.Draft) error
	DeleteTodo(ctx context.Context, ts api.TokenSource, id model.ID) error
}

// Controller binds a session, a backend and a presenter.
type Controller struct {
	backend Backend
	sess    *session.Session
	out     Presenter
	log     *log.Logger
}

// New creates a Controller.
func New(backend Backend, sess *session.Session, out Presenter, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{backend: backend, sess: sess, out: out, log: logger}
}

// Session exposes the injected session.
func (c *Controller) Session() *session.Session { return c.sess }

// Open runs the page-load check for v. Opening the index view without a token
// redirects to login and sends nothing; with a token it loads the list.
func (c *Controller) Open(ctx context.Context, v View) error {
	if v != ViewIndex {
		return nil
	}
	if !c.sess.Authenticated() {
		c.out.Navigate(ViewLogin)
		return ErrNotAuthenticated
	}
	return c.LoadTodos(ctx)
}

// Register creates an account, then sends the user to the login view.
func (c *Controller) Register(ctx context.Context, creds model.Credentials) error {
	if err := c.backend.Register(ctx, creds); err != nil {
		c.alert(err)
		return fmt.Errorf("register: %w", err)
	}
	c.out.Notify(RegisteredMessage)
	c.out.Navigate(ViewLogin)
	return nil
}

// Login stores the returned token for one day and opens the index view.
func (c *Controller) Login(ctx context.Context, creds model.Credentials) error {
	token, err := c.backend.Login(ctx, creds)
	if err != nil {
		c.alert(err)
		return fmt.Errorf("login: %w", err)
	}
	if err := c.sess.Begin(token); err != nil {
		c.alert(err)
		return fmt.Errorf("login: %w", err)
	}
	c.log.Debug("session started", "user", creds.Username)
	c.out.Navigate(ViewIndex)
	return nil
}

// Logout ends the backend session and clears the stored token. On failure
// the token is kept. An override token is only forgotten: the stored cookie
// is left for the session it belongs to.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	if err := c.backend.Logout(ctx, c.sess); err != nil {
		c.alert(err)
		return fmt.Errorf("logout: %w", err)
	}
	env := c.sess.Source() == session.SourceEnv
	if err := c.sess.End(); err != nil {
		c.alert(err)
		return fmt.Errorf("logout: %w", err)
	}
	if env {
		c.out.Notify("token came from TADA_TOKEN; unset it to stay logged out")
	}
	c.out.Navigate(ViewLogin)
	return nil
}

// LoadTodos replaces the displayed list with the backend's, in its order.
func (c *Controller) LoadTodos(ctx context.Context) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	todos, err := c.backend.ListTodos(ctx, c.sess)
	if err != nil {
		c.alert(err)
		return fmt.Errorf("list todos: %w", err)
	}
	c.out.ShowTodos(todos)
	return nil
}

// CreateTodo adds a todo and reloads the list.
func (c *Controller) CreateTodo(ctx context.Context, d model.Draft) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	if err := c.backend.CreateTodo(ctx, c.sess, d); err != nil {
		c.alert(err)
		return fmt.Errorf("create todo: %w", err)
	}
	return c.LoadTodos(ctx)
}

// UpdateTodo applies an edit and reloads the list. A cancelled edit sends
// nothing. Failures are logged only; the displayed list is left alone.
func (c *Controller) UpdateTodo(ctx context.Context, req model.EditRequest) error {
	if req.Cancelled() {
		c.log.Debug("edit cancelled", "id", req.ID)
		return nil
	}
	if err := c.requireToken(); err != nil {
		return err
	}
	if err := c.backend.UpdateTodo(ctx, c.sess, req.ID, req.Draft()); err != nil {
		c.log.Error("Error updating todo", "id", req.ID, "err", err)
		return fmt.Errorf("update todo %s: %w", req.ID, err)
	}
	return c.LoadTodos(ctx)
}

// DeleteTodo removes a todo and reloads the list.
func (c *Controller) DeleteTodo(ctx context.Context, id model.ID) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	c.log.Debug("deleting todo", "id", id)
	if err := c.backend.DeleteTodo(ctx, c.sess, id); err != nil {
		c.alert(err)
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return c.LoadTodos(ctx)
}

func (c *Controller) requireToken() error {
	if c.sess.Authenticated() {
		return nil
	}
	c.out.Navigate(ViewLogin)
	return ErrNotAuthenticated
}

// alert shows the backend's message verbatim, or the error text for
// failures that never reached the backend.
func (c *Controller) alert(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		c.out.Alert(apiErr.Message)
		return
	}
	c.log.Warn("request failed", "err", err)
	c.out.Alert(err.Error())
}
