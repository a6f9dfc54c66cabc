package backend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body: %v (%q)", err, rec.Body.String())
	}
	return body.Error
}

func loginToken(t *testing.T, b *Backend, user, pass string) string {
	t.Helper()
	creds := map[string]string{"username": user, "password": pass}
	if rec := call(t, b, http.MethodPost, "/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	rec := call(t, b, http.MethodPost, "/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Token == "" {
		t.Fatal("login returned no token")
	}
	return out.Token
}

func TestRegisterAndLogin(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	tok := loginToken(t, b, "ann", "pw")

	rec := call(t, b, http.MethodPost, "/register", "", map[string]string{"username": "ann", "password": "x"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: got %d, want 409", rec.Code)
	}
	rec = call(t, b, http.MethodPost, "/register", "", map[string]string{"username": "bob"})
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) == "" {
		t.Errorf("missing password: got %d %q", rec.Code, rec.Body.String())
	}
	rec = call(t, b, http.MethodPost, "/login", "", map[string]string{"username": "ann", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: got %d, want 401", rec.Code)
	}
	if got := errorOf(t, rec); got != "Invalid username or password" {
		t.Errorf("error message: got %q", got)
	}

	rec = call(t, b, http.MethodPost, "/logout", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d", rec.Code)
	}
	rec = call(t, b, http.MethodGet, "/todos", tok, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("token still valid after logout: %d", rec.Code)
	}
}

func TestTodoCRUD(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	tok := loginToken(t, b, "ann", "pw")

	rec := call(t, b, http.MethodPost, "/todos", tok, Todo{Title: "A", Description: "B"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	call(t, b, http.MethodPost, "/todos", tok, Todo{Title: "C", Description: "D"})

	todos := b.Todos("ann")
	if len(todos) != 2 || todos[0].Title != "A" || todos[1].Title != "C" {
		t.Fatalf("stored order: %+v", todos)
	}

	rec = call(t, b, http.MethodPut, "/todos/"+todos[0].ID, tok, Todo{Title: "A2", Description: "B2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d", rec.Code)
	}
	rec = call(t, b, http.MethodDelete, "/todos/"+todos[1].ID, tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec = call(t, b, http.MethodGet, "/todos", tok, nil)
	var list []Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "A2" || list[0].Description != "B2" {
		t.Errorf("list: %+v", list)
	}

	rec = call(t, b, http.MethodDelete, "/todos/missing", tok, nil)
	if rec.Code != http.StatusNotFound || errorOf(t, rec) != "Todo not found" {
		t.Errorf("delete missing: %d %s", rec.Code, rec.Body.String())
	}
	rec = call(t, b, http.MethodPost, "/todos", tok, Todo{Description: "no title"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create without title: %d", rec.Code)
	}
}

func TestTodosAreScopedPerUser(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	ann := loginToken(t, b, "ann", "pw")
	bob := loginToken(t, b, "bob", "pw")

	call(t, b, http.MethodPost, "/todos", ann, Todo{Title: "ann's"})
	rec := call(t, b, http.MethodGet, "/todos", bob, nil)
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("bob sees %q", got)
	}
}

func TestAuthRequired(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodPut, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
		{http.MethodPost, "/logout"},
	} {
		rec := call(t, b, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: got %d", tc.method, tc.path, rec.Code)
		}
		rec = call(t, b, tc.method, tc.path, "bogus", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bogus token: got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRequestsAreRecorded(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	tok := loginToken(t, b, "ann", "pw")
	b.ResetRequests()

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("X-Request-ID", "rid-1")
	b.ServeHTTP(httptest.NewRecorder(), req)

	got := b.Requests()
	if len(got) != 1 {
		t.Fatalf("requests: %+v", got)
	}
	want := Request{Method: http.MethodGet, Path: "/todos", Authorization: "Bearer " + tok, RequestID: "rid-1"}
	if got[0] != want {
		t.Errorf("recorded: got %+v, want %+v", got[0], want)
	}
}

func TestSeed(t *testing.T) {
	b := New(WithHashCost(bcrypt.MinCost))
	if got := b.Seed("ghost", Todo{Title: "x"}); got != nil {
		t.Errorf("seed for unknown user: %+v", got)
	}
	loginToken(t, b, "ann", "pw")
	seeded := b.Seed("ann", Todo{ID: "1", Title: "A", Description: "B"}, Todo{Title: "C"})
	if seeded[0].ID != "1" || seeded[1].ID == "" {
		t.Errorf("seeded ids: %+v", seeded)
	}
}
