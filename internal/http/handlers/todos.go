package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/todo"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type TodoStore interface {
	ListByUser(ctx context.Context, userID int64) ([]todo.Todo, error)
	Create(ctx context.Context, userID int64, content string) (todo.Todo, error)
	Delete(ctx context.Context, userID, todoID int64) error
}

// TodosHandler only ever sees the user id the auth guard resolved; nothing in
// a request body or URL can widen its scope.
type TodosHandler struct {
	repo TodoStore
}

func NewTodosHandler(repo TodoStore) *TodosHandler {
	return &TodosHandler{repo: repo}
}

type CreateTodoRequest struct {
	Content string `json:"content"`
}

func (h *TodosHandler) ListTodos(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	todos, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not fetch todos")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"todos": todos})
}

func (h *TodosHandler) CreateTodo(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	var req CreateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		RespondBadRequest(ctx, "Content is required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	t, err := h.repo.Create(cctx, userID, req.Content)

	if err != nil {
		RespondInternal(ctx, "Could not create todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"todo":    t,
	})
}

func (h *TodosHandler) DeleteTodo(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	// A non-numeric id can't match a row, so it reads the same as a miss.
	todoID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.repo.Delete(cctx, userID, todoID)

	if err != nil {
		if errors.Is(err, postgres.ErrTodoNotFound) {
			// Absent and not-owned collapse into the same answer so row
			// existence never leaks across users.
			RespondNotFound(ctx, "Todo not found")
			return
		}

		RespondInternal(ctx, "Could not delete todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
