// Package api is the HTTP client for the todo backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
)

// RequestIDHeader carries a per-request uuid for backend log correlation.
const RequestIDHeader = "X-Request-ID"

// ErrEmptyToken is returned by Login when a 2xx response holds no token.
var ErrEmptyToken = errors.New("login response has no token")

// Error is a failure reported by the backend (any non-2xx response).
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// TokenSource provides the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client talks JSON to the todo backend. The zero timeout means requests
// wait until the context is cancelled.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *log.Logger
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.hc
		hc.Timeout = d
		c.hc = &hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: need scheme and host", baseURL)
	}
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{},
		log:     log.Default(),
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates an account. The response body is ignored beyond the status.
func (c *Client) Register(ctx context.Context, creds model.Credentials) error {
	return c.do(ctx, http.MethodPost, "/register", nil, creds, nil)
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", nil, creds, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", ErrEmptyToken
	}
	return out.Token, nil
}

// Logout ends the backend session for the held token.
func (c *Client) Logout(ctx context.Context, ts TokenSource) error {
	return c.do(ctx, http.MethodPost, "/logout", ts, nil, nil)
}

// ListTodos returns the todos in backend order.
func (c *Client) ListTodos(ctx context.Context, ts TokenSource) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", ts, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// CreateTodo asks the backend to add a todo.
func (c *Client) CreateTodo(ctx context.Context, ts TokenSource, d model.Draft) error {
	return c.do(ctx, http.MethodPost, "/todos", ts, d, nil)
}

// UpdateTodo replaces title and description of todo id.
func (c *Client) UpdateTodo(ctx context.Context, ts TokenSource, id model.ID, d model.Draft) error {
	return c.do(ctx, http.MethodPut, todoPath(id), ts, d, nil)
}

// DeleteTodo removes todo id.
func (c *Client) DeleteTodo(ctx context.Context, ts TokenSource, id model.ID) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), ts, nil, nil)
}

func todoPath(id model.ID) string {
	return "/todos/" + url.PathEscape(id.String())
}

// do sends one JSON request. A nil ts means no Authorization header; a nil
// out means the success body is drained and dropped.
func (c *Client) do(ctx context.Context, method, path string, ts TokenSource, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if ts != nil {
		req.Header.Set("Authorization", "Bearer "+ts.Token())
	}
	reqID := c.newID()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeError reads the backend's {"error": "..."} body, falling back to
// the status text when the body does not follow that shape.
func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		e.Message = payload.Error
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
