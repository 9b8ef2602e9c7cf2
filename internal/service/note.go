package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/repository"
)

// NoteService handles business logic for notes.
//
// There is no "current note" held here. The client keeps the id of the note
// it has open and passes it back on every Save or Delete.
type NoteService struct {
	notes  *repository.Collection[model.Note]
	logger *slog.Logger
	now    func() time.Time
}

// NewNoteService creates a NoteService persisting into store.
func NewNoteService(store *repository.Store, logger *slog.Logger) *NoteService {
	return &NoteService{
		notes:  repository.NewCollection[model.Note](store, repository.KeyNotes),
		logger: logger,
		now:    time.Now,
	}
}

// Save creates a note (empty id) or updates the note with the given id.
//
// An id that matches no note is a silent no-op: Save returns (nil, nil) and
// does NOT fall back to creating a note. A blank title is stored as
// "Untitled Note".
func (s *NoteService) Save(ctx context.Context, id, title, content string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.UntitledNote
	}
	now := s.now()

	var saved *model.Note
	err := s.notes.Update(ctx, func(notes []model.Note) ([]model.Note, error) {
		if id == "" {
			note := model.Note{
				ID:           s.notes.NewID(),
				Title:        title,
				Content:      content,
				CreatedAt:    now,
				LastModified: now,
			}
			saved = &note
			return append(notes, note), nil
		}

		for i := range notes {
			if notes[i].ID != id {
				continue
			}
			notes[i].Title = title
			notes[i].Content = content
			notes[i].LastModified = now
			if notes[i].LastModified.Before(notes[i].CreatedAt) {
				// Clock went backwards since creation.
				notes[i].LastModified = notes[i].CreatedAt
			}
			note := notes[i]
			saved = &note
			break
		}
		return notes, nil
	})
	if err != nil {
		s.logger.Error("failed to save note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving note: %w", err)
	}

	switch {
	case saved == nil:
		s.logger.Debug("save of unknown note ignored", slog.String("id", id))
	case id == "":
		s.logger.Info("note created", slog.String("id", saved.ID))
	default:
		s.logger.Info("note updated", slog.String("id", saved.ID))
	}
	return saved, nil
}

// Get returns the note with the given id.
// Returns apperror.ErrNotFound if the note doesn't exist.
func (s *NoteService) Get(ctx context.Context, id string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}

	notes, err := s.notes.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	for _, n := range notes {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, apperror.NotFound("note", id)
}

// Delete removes the note with the given id. An unknown id is a silent no-op.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "note ID is required")
	}

	var removed bool
	err := s.notes.Update(ctx, func(notes []model.Note) ([]model.Note, error) {
		var n int
		notes, n = removeByID(notes, id, func(n model.Note) string { return n.ID })
		removed = n > 0
		return notes, nil
	})
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}

	if removed {
		s.logger.Info("note deleted", slog.String("id", id))
	}
	return nil
}

// ListAll returns every note, most recently modified first. Notes modified
// at the same instant keep their store order.
func (s *NoteService) ListAll(ctx context.Context) ([]model.Note, error) {
	notes, err := s.notes.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].LastModified.After(notes[j].LastModified)
	})
	return notes, nil
}

// Recent returns the limit most recently modified notes.
// limit <= 0 returns all notes.
func (s *NoteService) Recent(ctx context.Context, limit int) ([]model.Note, error) {
	notes, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return firstN(notes, limit), nil
}

// Search returns the notes whose title or content contains query,
// ignoring case, in ListAll order. An empty query matches every note.
func (s *NoteService) Search(ctx context.Context, query string) ([]model.Note, error) {
	return s.search(ctx, query, func(n model.Note) string { return n.Content })
}

// SearchPreview is the legacy list-view search: it matches query against
// the title and only the first model.PreviewLength characters of the
// content, so text further down a note is never found.
func (s *NoteService) SearchPreview(ctx context.Context, query string) ([]model.Note, error) {
	return s.search(ctx, query, model.Note.Preview)
}

func (s *NoteService) search(ctx context.Context, query string, body func(model.Note) string) ([]model.Note, error) {
	notes, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes, nil
	}

	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(body(n)), q) {
			out = append(out, n)
		}
	}
	return out, nil
}
