package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/focusboard/internal/service"
)

// NoteHandler serves the notes editor and list.
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

type saveNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleList returns notes, most recently modified first.
//
// HTTP: GET /api/notes?q=groceries&legacy=true
//
// q filters by title or content, ignoring case. With legacy=true only the
// first 100 characters of the content are searched, as the old list view
// did.
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := h.notes.Search
	if legacy, _ := strconv.ParseBool(q.Get("legacy")); legacy {
		search = h.notes.SearchPreview
	}

	notes, err := search(r.Context(), q.Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// HandleGet returns one note.
//
// HTTP: GET /api/notes/{id}
// RESPONSE: 200 with the note, or 404
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// HandleCreate saves a new note.
//
// HTTP: POST /api/notes
// REQUEST BODY: {"title":"Groceries","content":"eggs, milk"}
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req saveNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Save(r.Context(), "", req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// HandleUpdate saves an existing note.
//
// HTTP: PUT /api/notes/{id}
// RESPONSE: 200 with the saved note. An id that matches no note is ignored
// and answers 204 with no body; it never creates a note.
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req saveNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	note, err := h.notes.Save(r.Context(), id, req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if note == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// HandleDelete removes a note.
//
// HTTP: DELETE /api/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
