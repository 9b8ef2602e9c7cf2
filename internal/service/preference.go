package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/repository"
)

// Theme values as stored. The empty string is the light theme.
const (
	ThemeLight = ""
	ThemeDark  = "dark-theme"
)

// PreferenceService stores UI preferences. Preferences outlive logout: they
// are not part of the data Logout wipes.
type PreferenceService struct {
	store  *repository.Store
	logger *slog.Logger
}

// NewPreferenceService creates a PreferenceService persisting into store.
func NewPreferenceService(store *repository.Store, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{store: store, logger: logger}
}

// Theme returns the stored theme. Anything other than ThemeDark reads as
// ThemeLight.
func (s *PreferenceService) Theme(ctx context.Context) (string, error) {
	v, err := s.store.GetString(ctx, repository.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("reading theme: %w", err)
	}
	if v != ThemeDark {
		return ThemeLight, nil
	}
	return ThemeDark, nil
}

// SetTheme stores theme, which must be ThemeLight or ThemeDark.
func (s *PreferenceService) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return apperror.ValidationFailed("theme", fmt.Sprintf("theme must be %q or %q", ThemeLight, ThemeDark))
	}
	if err := s.store.SetString(ctx, repository.KeyTheme, theme); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	s.logger.Debug("theme changed", slog.String("theme", theme))
	return nil
}

// Toggle switches between the light and dark theme and returns the new one.
func (s *PreferenceService) Toggle(ctx context.Context) (string, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}

	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
