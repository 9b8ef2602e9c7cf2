package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/service"
)

// TodoHandler serves the todo list.
type TodoHandler struct {
	todos  *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a TodoHandler.
func NewTodoHandler(todos *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

type createTodoRequest struct {
	Title       string         `json:"title"`
	DueDate     string         `json:"dueDate"`
	Priority    model.Priority `json:"priority"`
	Description string         `json:"description"`
}

// HandleList returns the todos in insertion order.
//
// HTTP: GET /api/todos?filter=all|pending|completed
// A missing or unknown filter lists everything.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := model.TodoFilter(r.URL.Query().Get("filter"))

	todos, err := h.todos.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// HandleCreate adds a todo.
//
// HTTP: POST /api/todos
// REQUEST BODY: {"title":"Buy milk","dueDate":"2024-06-20","priority":"high","description":""}
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	todo, err := h.todos.Add(r.Context(), req.Title, req.DueDate, req.Priority, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// HandleToggle flips a todo between pending and completed.
//
// HTTP: POST /api/todos/{id}/toggle
// An unknown id still answers 204.
func (h *TodoHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	if err := h.todos.ToggleCompletion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a todo.
//
// HTTP: DELETE /api/todos/{id}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.todos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
