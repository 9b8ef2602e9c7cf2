// Package service contains the business logic layer of the dashboard.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orders and filters
//	Repository (Data layer)  → loads and saves whole collections
//
// Collections are unordered at rest. Every ordering and filter a view needs
// (pending first N, events by start, notes by last modification) is a
// projection computed here on each call from the freshly loaded collection.
//
// NOT FOUND IS A NO-OP:
// Toggling, deleting or updating an id that doesn't exist silently does
// nothing and returns a nil error. Deleting the same id twice is therefore
// safe and the second call changes nothing.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/repository"
)

// Validation constants.
const (
	MaxTitleLength = 200
	// DashboardLimit is how many items each dashboard panel shows.
	DashboardLimit = 3
)

// TodoService handles business logic for todos.
type TodoService struct {
	todos  *repository.Collection[model.Todo]
	logger *slog.Logger
	now    func() time.Time
}

// NewTodoService creates a TodoService persisting into store.
func NewTodoService(store *repository.Store, logger *slog.Logger) *TodoService {
	return &TodoService{
		todos:  repository.NewCollection[model.Todo](store, repository.KeyTodos),
		logger: logger,
		now:    time.Now,
	}
}

// Add validates and appends a new todo.
//
// priority may be blank (defaults to medium); dueDate and description are
// optional. The new todo is never completed.
func (s *TodoService) Add(ctx context.Context, title, dueDate string, priority model.Priority, description string) (*model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "todo title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("todo title must be %d characters or less", MaxTitleLength))
	}

	dueDate = strings.TrimSpace(dueDate)
	if dueDate != "" {
		if _, err := time.Parse(model.DateLayout, dueDate); err != nil {
			return nil, apperror.ValidationFailed("dueDate", "due date must be a date like 2024-06-01")
		}
	}

	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.ValidationFailed("priority", "priority must be low, medium or high")
	}

	todo := model.Todo{
		ID:          s.todos.NewID(),
		Title:       title,
		DueDate:     dueDate,
		Priority:    priority,
		Description: strings.TrimSpace(description),
		Completed:   false,
		CreatedAt:   s.now(),
	}

	err := s.todos.Update(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		return append(todos, todo), nil
	})
	if err != nil {
		s.logger.Error("failed to add todo",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding todo: %w", err)
	}

	s.logger.Info("todo added", slog.String("id", todo.ID))
	return &todo, nil
}

// ToggleCompletion flips the completed flag of the todo with the given id.
// An unknown id is a silent no-op.
func (s *TodoService) ToggleCompletion(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "todo ID is required")
	}

	found := false
	err := s.todos.Update(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		for i := range todos {
			if todos[i].ID == id {
				todos[i].Completed = !todos[i].Completed
				found = true
				break
			}
		}
		return todos, nil
	})
	if err != nil {
		return fmt.Errorf("toggling todo %s: %w", id, err)
	}

	if !found {
		s.logger.Debug("toggle of unknown todo ignored", slog.String("id", id))
	}
	return nil
}

// Delete removes the todo with the given id. An unknown id is a silent no-op.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "todo ID is required")
	}

	var removed bool
	err := s.todos.Update(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		var n int
		todos, n = removeByID(todos, id, func(t model.Todo) string { return t.ID })
		removed = n > 0
		return todos, nil
	})
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}

	if removed {
		s.logger.Info("todo deleted", slog.String("id", id))
	}
	return nil
}

// ListAll returns every todo in insertion order.
func (s *TodoService) ListAll(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.todos.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return todos, nil
}

// List returns the todos passing filter, in insertion order.
func (s *TodoService) List(ctx context.Context, filter model.TodoFilter) ([]model.Todo, error) {
	todos, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CountPending returns how many todos are not completed.
func (s *TodoService) CountPending(ctx context.Context) (int, error) {
	pending, err := s.List(ctx, model.FilterPending)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// RecentPending returns the first limit pending todos in store order.
//
// Store order, not due-date order: the dashboard shows the oldest pending
// todos first. limit <= 0 returns all pending todos.
func (s *TodoService) RecentPending(ctx context.Context, limit int) ([]model.Todo, error) {
	pending, err := s.List(ctx, model.FilterPending)
	if err != nil {
		return nil, err
	}
	return firstN(pending, limit), nil
}

// removeByID drops every record whose id matches and reports how many went.
func removeByID[T any](records []T, id string, idOf func(T) string) ([]T, int) {
	kept := records[:0]
	for _, r := range records {
		if idOf(r) != id {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}

// firstN returns at most n leading elements; n <= 0 means no limit.
func firstN[T any](records []T, n int) []T {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}
