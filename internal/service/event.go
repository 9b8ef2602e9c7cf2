package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/repository"
)

// EventService handles business logic for calendar events.
//
// Event dates and times carry no zone; they are interpreted in loc (the
// server's local zone unless a test overrides it).
type EventService struct {
	events *repository.Collection[model.Event]
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewEventService creates an EventService persisting into store.
func NewEventService(store *repository.Store, logger *slog.Logger) *EventService {
	return &EventService{
		events: repository.NewCollection[model.Event](store, repository.KeyEvents),
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
	}
}

// Add validates and appends a new event. location and description are
// optional.
func (s *EventService) Add(ctx context.Context, title, date, clock, location, description string) (*model.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "event title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("event title must be %d characters or less", MaxTitleLength))
	}

	date = strings.TrimSpace(date)
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, apperror.ValidationFailed("date", "event date must be a date like 2024-06-01")
	}
	clock = strings.TrimSpace(clock)
	if _, err := time.Parse(model.TimeLayout, clock); err != nil {
		return nil, apperror.ValidationFailed("time", "event time must be a time like 09:30")
	}

	event := model.Event{
		ID:          s.events.NewID(),
		Title:       title,
		Date:        date,
		Time:        clock,
		Location:    strings.TrimSpace(location),
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}

	err := s.events.Update(ctx, func(events []model.Event) ([]model.Event, error) {
		return append(events, event), nil
	})
	if err != nil {
		s.logger.Error("failed to add event",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding event: %w", err)
	}

	s.logger.Info("event added",
		slog.String("id", event.ID),
		slog.String("date", event.Date),
	)
	return &event, nil
}

// Delete removes the event with the given id. An unknown id is a silent no-op.
func (s *EventService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "event ID is required")
	}

	var removed bool
	err := s.events.Update(ctx, func(events []model.Event) ([]model.Event, error) {
		var n int
		events, n = removeByID(events, id, func(e model.Event) string { return e.ID })
		removed = n > 0
		return events, nil
	})
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}

	if removed {
		s.logger.Info("event deleted", slog.String("id", id))
	}
	return nil
}

// ListAll returns every event ordered by start (date then time), earliest
// first. Events sharing a start keep their store order. Events whose stored
// date or time can't be parsed sort last.
func (s *EventService) ListAll(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	s.sortStable(events, func(e model.Event) (time.Time, error) { return e.Start(s.loc) })
	return events, nil
}

// Upcoming returns the first limit events dated today or later, ordered by
// date. limit <= 0 returns all of them.
//
// The comparison is by calendar date only: an event later today counts, and
// so does one earlier today whose time has already passed. Events on the
// same date keep their store order (time of day is not part of this sort).
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]model.Event, error) {
	upcoming, err := s.upcoming(ctx)
	if err != nil {
		return nil, err
	}

	s.sortStable(upcoming, func(e model.Event) (time.Time, error) { return e.Day(s.loc) })
	return firstN(upcoming, limit), nil
}

// CountActive returns how many events are dated today or later.
func (s *EventService) CountActive(ctx context.Context) (int, error) {
	upcoming, err := s.upcoming(ctx)
	if err != nil {
		return 0, err
	}
	return len(upcoming), nil
}

// MonthLabel is the calendar header for the current month, e.g. "June 2024".
func (s *EventService) MonthLabel() string {
	return s.now().In(s.loc).Format("January 2006")
}

func (s *EventService) upcoming(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming events: %w", err)
	}

	today := startOfDay(s.now().In(s.loc))
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		day, err := e.Day(s.loc)
		if err != nil {
			s.logger.Warn("skipping event with unreadable date",
				slog.String("id", e.ID),
				slog.String("date", e.Date),
			)
			continue
		}
		if !day.Before(today) {
			out = append(out, e)
		}
	}
	return out, nil
}

// sortStable orders events ascending by key; events without a key go last.
func (s *EventService) sortStable(events []model.Event, key func(model.Event) (time.Time, error)) {
	type keyed struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(events))
	for _, e := range events {
		at, err := key(e)
		keys[e.ID] = keyed{at: at, ok: err == nil}
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := keys[events[i].ID], keys[events[j].ID]
		if a.ok != b.ok {
			return a.ok
		}
		return a.at.Before(b.at)
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
