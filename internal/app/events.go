package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
)

// Event names a user interaction a front-end can raise.
type Event string

const (
	EventPageLoad       Event = "page-load"
	EventRegisterSubmit Event = "register-submit"
	EventLoginSubmit    Event = "login-submit"
	EventLogoutClick    Event = "logout-click"
	EventAddSubmit      Event = "add-submit"
	EventDeleteClick    Event = "delete-click"
	EventEditClick      Event = "edit-click"
	EventReload         Event = "reload"
)

// ErrUnknownEvent is returned by Dispatch for an unregistered event.
var ErrUnknownEvent = errors.New("unknown event")

// Payload carries whatever an event needs; handlers read only their fields.
type Payload struct {
	View        View
	Credentials model.Credentials
	Draft       model.Draft
	ID          model.ID
	Edit        model.EditRequest
}

// Handler reacts to one event.
type Handler func(ctx context.Context, p Payload) error

// Table maps events to handlers.
type Table map[Event]Handler

// Handlers returns the controller's registration table.
func (c *Controller) Handlers() Table {
	return Table{
		EventPageLoad: func(ctx context.Context, p Payload) error {
			return c.Open(ctx, p.View)
		},
		EventRegisterSubmit: func(ctx context.Context, p Payload) error {
			return c.Register(ctx, p.Credentials)
		},
		EventLoginSubmit: func(ctx context.Context, p Payload) error {
			return c.Login(ctx, p.Credentials)
		},
		EventLogoutClick: func(ctx context.Context, _ Payload) error {
			return c.Logout(ctx)
		},
		EventAddSubmit: func(ctx context.Context, p Payload) error {
			return c.CreateTodo(ctx, p.Draft)
		},
		EventDeleteClick: func(ctx context.Context, p Payload) error {
			return c.DeleteTodo(ctx, p.ID)
		},
		EventEditClick: func(ctx context.Context, p Payload) error {
			return c.UpdateTodo(ctx, p.Edit)
		},
		EventReload: func(ctx context.Context, _ Payload) error {
			return c.LoadTodos(ctx)
		},
	}
}

// Dispatch runs the handler registered for ev.
func (t Table) Dispatch(ctx context.Context, ev Event, p Payload) error {
	h, ok := t[ev]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev)
	}
	return h(ctx, p)
}
