package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/todo"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

// Fake implementation of the handlers.TodoStore interface

type fakeTodoStore struct {
	listFn   func(ctx context.Context, userID int64) ([]todo.Todo, error)
	createFn func(ctx context.Context, userID int64, content string) (todo.Todo, error)
	deleteFn func(ctx context.Context, userID, todoID int64) error

	createCalls int
	deleteCalls int
}

func (f *fakeTodoStore) ListByUser(ctx context.Context, userID int64) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return []todo.Todo{}, nil
}

func (f *fakeTodoStore) Create(ctx context.Context, userID int64, content string) (todo.Todo, error) {
	f.createCalls++

	if f.createFn != nil {
		return f.createFn(ctx, userID, content)
	}

	return todo.Todo{ID: 1, UserID: userID, Content: content, CreatedAt: time.Now().UTC()}, nil
}

func (f *fakeTodoStore) Delete(ctx context.Context, userID, todoID int64) error {
	f.deleteCalls++

	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, todoID)
	}

	return nil
}

// newTodosRouter mounts the todos handler behind the real auth guard with a
// fake resolver, so the cookie -> user id path is exercised too.
func newTodosRouter(repo *fakeTodoStore, sessions *fakeSessions) *gin.Engine {
	h := handlers.NewTodosHandler(repo)
	guard := middlewares.NewAuthMiddleware(sessions)

	r := gin.New()

	todos := r.Group("/api/todos")
	todos.Use(guard.RequireSession())
	todos.GET("", h.ListTodos)
	todos.POST("", h.CreateTodo)
	todos.DELETE("/:id", h.DeleteTodo)

	return r
}

func resolverFor(userID int64, token string) *fakeSessions {
	return &fakeSessions{
		resolveFn: func(ctx context.Context, got string) (int64, error) {
			if got == token {
				return userID, nil
			}

			return 0, errors.New("unauthenticated")
		},
	}
}

func authCookie(token string) *http.Cookie {
	return &http.Cookie{Name: "auth_token", Value: token}
}

func TestListTodos(t *testing.T) {
	now := time.Now().UTC()

	repo := &fakeTodoStore{
		listFn: func(ctx context.Context, userID int64) ([]todo.Todo, error) {
			if userID != 7 {
				t.Fatalf("list called with userId %d, want the resolved 7", userID)
			}

			return []todo.Todo{
				{ID: 3, UserID: 7, Content: "newest", CreatedAt: now},
				{ID: 2, UserID: 7, Content: "middle", CreatedAt: now.Add(-time.Minute)},
				{ID: 1, UserID: 7, Content: "oldest", CreatedAt: now.Add(-time.Hour)},
			}, nil
		},
	}

	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodGet, "/api/todos", "", authCookie("tok"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Todos []struct {
			ID      int64  `json:"id"`
			Content string `json:"content"`
		} `json:"todos"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if len(resp.Todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(resp.Todos))
	}

	for i, want := range []string{"newest", "middle", "oldest"} {
		if resp.Todos[i].Content != want {
			t.Fatalf("todos[%d] = %q, want %q (descending creation time)", i, resp.Todos[i].Content, want)
		}
	}
}

func TestListTodos_EmptyIsNotAnError(t *testing.T) {
	r := newTodosRouter(&fakeTodoStore{}, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodGet, "/api/todos", "", authCookie("tok"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if w.Body.String() != `{"todos":[]}` {
		t.Fatalf("expected empty todos array, got %s", w.Body.String())
	}
}

func TestTodos_Unauthenticated(t *testing.T) {
	repo := &fakeTodoStore{}
	r := newTodosRouter(repo, &fakeSessions{})

	tests := []struct {
		name   string
		method string
		path   string
		cookie *http.Cookie
	}{
		{name: "list without cookie", method: http.MethodGet, path: "/api/todos"},
		{name: "create without cookie", method: http.MethodPost, path: "/api/todos"},
		{name: "delete without cookie", method: http.MethodDelete, path: "/api/todos/1"},
		{name: "list with dead token", method: http.MethodGet, path: "/api/todos", cookie: authCookie("revoked")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tc.cookie != nil {
				cookies = append(cookies, tc.cookie)
			}

			w := doJSON(r, tc.method, tc.path, "", cookies...)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401, body=%s", w.Code, w.Body.String())
			}
		})
	}

	if repo.createCalls != 0 || repo.deleteCalls != 0 {
		t.Fatalf("store must never be reached without a session")
	}
}

func TestCreateTodo(t *testing.T) {
	repo := &fakeTodoStore{
		createFn: func(ctx context.Context, userID int64, content string) (todo.Todo, error) {
			return todo.Todo{ID: 9, UserID: userID, Content: content, CreatedAt: time.Now().UTC()}, nil
		},
	}

	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodPost, "/api/todos", `{"content":"buy milk"}`, authCookie("tok"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Todo    struct {
			ID      int64  `json:"id"`
			Content string `json:"content"`
		} `json:"todo"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if !resp.Success || resp.Todo.ID != 9 || resp.Todo.Content != "buy milk" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateTodo_EmptyContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing content", body: `{}`},
		{name: "empty content", body: `{"content":""}`},
		{name: "whitespace content", body: `{"content":"   \t "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeTodoStore{}
			r := newTodosRouter(repo, resolverFor(7, "tok"))

			w := doJSON(r, http.MethodPost, "/api/todos", tc.body, authCookie("tok"))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
			}

			if repo.createCalls != 0 {
				t.Fatalf("no row may be created for invalid content")
			}
		})
	}
}

func TestDeleteTodo(t *testing.T) {
	repo := &fakeTodoStore{
		deleteFn: func(ctx context.Context, userID, todoID int64) error {
			if userID == 7 && todoID == 3 {
				return nil
			}

			return postgres.ErrTodoNotFound
		},
	}

	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodDelete, "/api/todos/3", "", authCookie("tok"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if w.Body.String() != `{"success":true}` {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestDeleteTodo_MissingOrForeign(t *testing.T) {
	// The repo answers ErrTodoNotFound both for an absent id and for a row
	// owned by someone else; the response must not tell them apart.
	repo := &fakeTodoStore{
		deleteFn: func(ctx context.Context, userID, todoID int64) error {
			return postgres.ErrTodoNotFound
		},
	}

	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodDelete, "/api/todos/99", "", authCookie("tok"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteTodo_NonNumericID(t *testing.T) {
	repo := &fakeTodoStore{}
	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodDelete, "/api/todos/not-a-number", "", authCookie("tok"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body=%s", w.Code, w.Body.String())
	}

	if repo.deleteCalls != 0 {
		t.Fatalf("store should not be queried for an unparseable id")
	}
}

func TestDeleteTodo_StoreFailure(t *testing.T) {
	repo := &fakeTodoStore{
		deleteFn: func(ctx context.Context, userID, todoID int64) error {
			return errors.New("connection refused")
		},
	}

	r := newTodosRouter(repo, resolverFor(7, "tok"))

	w := doJSON(r, http.MethodDelete, "/api/todos/3", "", authCookie("tok"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body=%s", w.Code, w.Body.String())
	}
}
