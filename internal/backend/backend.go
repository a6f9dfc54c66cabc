// Package backend is an in-memory implementation of the todo HTTP API. It
// backs the client tests and the tada-devserver binary.
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// Todo is the wire and storage shape of a todo.
type Todo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type user struct {
	hash  []byte
	todos []Todo
}

// Backend holds users, sessions and todos. Safe for concurrent use.
type Backend struct {
	mu       sync.Mutex
	users    map[string]*user
	sessions map[string]string // token -> username
	requests []Request

	hashCost int
	log      *log.Logger
	router   *mux.Router
}

// Option configures a Backend.
type Option func(*Backend)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(b *Backend) { b.hashCost = cost }
}

// WithLogger enables per-request logging.
func WithLogger(l *log.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// New builds a Backend with its routes.
func New(opts ...Option) *Backend {
	b := &Backend{
		users:    map[string]*user{},
		sessions: map[string]string{},
		hashCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(b)
	}
	b.router = b.routes()
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

func (b *Backend) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.record)
	if b.log != nil {
		r.Use(b.logRequests)
	}
	r.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(b.requireToken)
	authed.HandleFunc("/logout", b.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/todos", b.handleList).Methods(http.MethodGet)
	authed.HandleFunc("/todos", b.handleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/todos/{id}", b.handleUpdate).Methods(http.MethodPut)
	authed.HandleFunc("/todos/{id}", b.handleDelete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// ResetRequests forgets recorded requests.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

// Todos returns the stored todos of username.
func (b *Backend) Todos(username string) []Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	if !ok {
		return nil
	}
	out := make([]Todo, len(u.todos))
	copy(out, u.todos)
	return out
}

// Seed stores todos for username as if created through the API, returning
// them with their assigned ids.
func (b *Backend) Seed(username string, todos ...Todo) []Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	if !ok {
		return nil
	}
	for i := range todos {
		if todos[i].ID == "" {
			todos[i].ID = uuid.NewString()
		}
		u.todos = append(u.todos, todos[i])
	}
	return todos
}

// ---------------------------------------------------
// middleware
// ---------------------------------------------------

type ctxKey struct{}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (b *Backend) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		b.log.Info("request", "method", r.Method, "path", r.URL.Path,
			"status", sw.status, "request_id", r.Header.Get("X-Request-ID"))
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		b.mu.Lock()
		username, found := b.sessions[token]
		b.mu.Unlock()
		if !found {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sessionInfo{token: token, username: username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionInfo struct {
	token    string
	username string
}

func currentSession(r *http.Request) sessionInfo {
	s, _ := r.Context().Value(ctxKey{}).(sessionInfo)
	return s
}

// ---------------------------------------------------
// handlers
// ---------------------------------------------------

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), b.hashCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[c.Username]; exists {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}
	b.users[c.Username] = &user{hash: hash}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	u, ok := b.users[strings.TrimSpace(c.Username)]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(c.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token := uuid.NewString()
	b.mu.Lock()
	b.sessions[token] = strings.TrimSpace(c.Username)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	b.mu.Lock()
	delete(b.sessions, s.token)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	b.mu.Lock()
	todos := append([]Todo{}, b.users[s.username].todos...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, todos)
}

func decodeTodo(r *http.Request) (Todo, bool) {
	var t Todo
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		return t, false
	}
	return t, true
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	t, ok := decodeTodo(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(t.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	t.ID = uuid.NewString()

	s := currentSession(r)
	b.mu.Lock()
	u := b.users[s.username]
	u.todos = append(u.todos, t)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := decodeTodo(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s := currentSession(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[s.username]
	for i := range u.todos {
		if u.todos[i].ID == id {
			u.todos[i].Title = t.Title
			u.todos[i].Description = t.Description
			writeJSON(w, http.StatusOK, u.todos[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Todo not found")
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s := currentSession(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[s.username]
	for i := range u.todos {
		if u.todos[i].ID == id {
			u.todos = append(u.todos[:i], u.todos[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Todo not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
