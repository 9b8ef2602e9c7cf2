package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/model"
)

func newTestNoteService(t *testing.T) (*NoteService, *memStorage, *fakeClock) {
	t.Helper()
	store, kv := newTestStore(t)
	clock := newFakeClock(testNow)
	svc := NewNoteService(store, discardLogger())
	svc.now = clock.Now
	return svc, kv, clock
}

func noteTitles(notes []model.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func mustSaveNote(t *testing.T, svc *NoteService, id, title, content string) *model.Note {
	t.Helper()
	n, err := svc.Save(context.Background(), id, title, content)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

// =========================================================================
// Save TESTS
// =========================================================================

func TestNoteSave_Create(t *testing.T) {
	svc, _, _ := newTestNoteService(t)

	n := mustSaveNote(t, svc, "", "  Groceries ", "eggs")
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "eggs", n.Content)
	assert.True(t, n.CreatedAt.Equal(testNow))
	assert.True(t, n.LastModified.Equal(n.CreatedAt))
}

func TestNoteSave_BlankTitleBecomesUntitled(t *testing.T) {
	svc, _, _ := newTestNoteService(t)

	n := mustSaveNote(t, svc, "", "   ", "body")
	assert.Equal(t, model.UntitledNote, n.Title)
}

func TestNoteSave_UpdateRefreshesLastModified(t *testing.T) {
	svc, _, clock := newTestNoteService(t)

	n := mustSaveNote(t, svc, "", "draft", "v1")
	clock.Advance(5 * time.Minute)

	updated := mustSaveNote(t, svc, n.ID, "final", "v2")
	assert.Equal(t, n.ID, updated.ID)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "v2", updated.Content)
	assert.True(t, updated.CreatedAt.Equal(n.CreatedAt))
	assert.True(t, updated.LastModified.Equal(testNow.Add(5*time.Minute)))

	got, err := svc.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
}

func TestNoteSave_ClockBackwardsKeepsLastModifiedAfterCreated(t *testing.T) {
	svc, _, clock := newTestNoteService(t)

	n := mustSaveNote(t, svc, "", "a", "")
	clock.Advance(-time.Hour)

	updated := mustSaveNote(t, svc, n.ID, "a", "edited")
	assert.False(t, updated.LastModified.Before(updated.CreatedAt))
}

func TestNoteSave_UnknownIDIsNoOp(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	mustSaveNote(t, svc, "", "existing", "")

	n, err := svc.Save(ctx, "no-such-note", "ghost", "boo")
	require.NoError(t, err)
	assert.Nil(t, n)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"existing"}, noteTitles(all))
}

// =========================================================================
// Get / Delete TESTS
// =========================================================================

func TestNoteGet(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestNoteDelete_TwiceIsNoOp(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()

	n := mustSaveNote(t, svc, "", "bye", "")
	require.NoError(t, svc.Delete(ctx, n.ID))
	require.NoError(t, svc.Delete(ctx, n.ID))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =========================================================================
// ListAll / Recent TESTS
// =========================================================================

func TestNoteListAll_MostRecentlyModifiedFirst(t *testing.T) {
	svc, _, clock := newTestNoteService(t)

	a := mustSaveNote(t, svc, "", "a", "")
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, "", "b", "")
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, "", "c", "")
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, a.ID, "a", "touched")

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, noteTitles(all))

	recent, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, noteTitles(recent))
}

func TestNoteListAll_TiesKeepStoreOrder(t *testing.T) {
	svc, _, _ := newTestNoteService(t)

	for _, title := range []string{"first", "second", "third"} {
		mustSaveNote(t, svc, "", title, "")
	}

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, noteTitles(all))
}

// =========================================================================
// Search TESTS
// =========================================================================

func TestNoteSearch(t *testing.T) {
	svc, _, clock := newTestNoteService(t)
	ctx := context.Background()

	// "needle" sits past the first 100 characters of the content.
	deep := strings.Repeat("x", model.PreviewLength) + " needle"
	mustSaveNote(t, svc, "", "Deep", deep)
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, "", "Shallow", "a NEEDLE near the top")
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, "", "Needle in title", "")
	clock.Advance(time.Minute)
	mustSaveNote(t, svc, "", "Other", "hay")

	tests := []struct {
		name    string
		query   string
		preview bool
		want    []string
	}{
		{"full content", "needle", false, []string{"Needle in title", "Shallow", "Deep"}},
		{"preview only", "needle", true, []string{"Needle in title", "Shallow"}},
		{"case insensitive", "  NeEdLe ", false, []string{"Needle in title", "Shallow", "Deep"}},
		{"no match", "zebra", false, []string{}},
		{"empty query returns all", "", false, []string{"Other", "Needle in title", "Shallow", "Deep"}},
		{"empty query returns all (preview)", "   ", true, []string{"Other", "Needle in title", "Shallow", "Deep"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := svc.Search
			if tt.preview {
				search = svc.SearchPreview
			}
			got, err := search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, noteTitles(got))
		})
	}
}
