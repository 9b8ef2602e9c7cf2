package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/focusboard/internal/model"
)

// DefaultUserName is shown on the dashboard when the session has no name.
const DefaultUserName = "User"

// Summary is everything the dashboard page shows at once.
type Summary struct {
	UserName       string        `json:"userName"`
	PendingTodos   int           `json:"pendingTodos"`
	ActiveEvents   int           `json:"activeEvents"`
	TotalNotes     int           `json:"totalNotes"`
	RecentTodos    []model.Todo  `json:"recentTodos"`
	UpcomingEvents []model.Event `json:"upcomingEvents"`
	RecentNotes    []model.Note  `json:"recentNotes"`
}

// DashboardService assembles the dashboard from the other services.
// It holds no state of its own.
type DashboardService struct {
	sessions *SessionService
	todos    *TodoService
	events   *EventService
	notes    *NoteService
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(sessions *SessionService, todos *TodoService, events *EventService, notes *NoteService) *DashboardService {
	return &DashboardService{
		sessions: sessions,
		todos:    todos,
		events:   events,
		notes:    notes,
	}
}

// Summary builds the dashboard: the three counters and the first
// DashboardLimit items of each panel.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{UserName: DefaultUserName}

	session, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if session != nil && strings.TrimSpace(session.Name) != "" {
		sum.UserName = session.Name
	}

	if sum.PendingTodos, err = s.todos.CountPending(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if sum.RecentTodos, err = s.todos.RecentPending(ctx, DashboardLimit); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	if sum.ActiveEvents, err = s.events.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if sum.UpcomingEvents, err = s.events.Upcoming(ctx, DashboardLimit); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	sum.TotalNotes = len(notes)
	sum.RecentNotes = firstN(notes, DashboardLimit)

	return sum, nil
}
