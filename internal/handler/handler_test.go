package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/focusboard/internal/auth"
	"github.com/sakif/focusboard/internal/handler"
	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/repository"
	"github.com/sakif/focusboard/internal/repository/sqlite"
	"github.com/sakif/focusboard/internal/service"
)

// =========================================================================
// HELPERS
// =========================================================================

// testAPI is a router over real services and an in-memory database, with
// no session middleware in front, so each handler can be hit directly.
type testAPI struct {
	router http.Handler
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	store := repository.NewStore(db, logger)
	sessions := service.NewSessionService(store, nil, service.SessionOptions{}, logger)
	todos := service.NewTodoService(store, logger)
	events := service.NewEventService(store, logger)
	notes := service.NewNoteService(store, logger)
	prefs := service.NewPreferenceService(store, logger)

	authH := handler.NewAuthHandler(sessions, tokens, logger)
	todoH := handler.NewTodoHandler(todos, logger)
	eventH := handler.NewEventHandler(events, logger)
	noteH := handler.NewNoteHandler(notes, logger)
	prefH := handler.NewPreferenceHandler(prefs, logger)
	dashH := handler.NewDashboardHandler(service.NewDashboardService(sessions, todos, events, notes), logger)

	r := chi.NewRouter()
	r.Post("/auth/login", authH.HandleLogin)
	r.Post("/auth/signup", authH.HandleSignup)
	r.Post("/auth/logout", authH.HandleLogout)
	r.Get("/api/me", authH.HandleMe)
	r.Get("/api/dashboard", dashH.HandleSummary)
	r.Get("/api/todos", todoH.HandleList)
	r.Post("/api/todos", todoH.HandleCreate)
	r.Post("/api/todos/{id}/toggle", todoH.HandleToggle)
	r.Delete("/api/todos/{id}", todoH.HandleDelete)
	r.Get("/api/events", eventH.HandleList)
	r.Get("/api/events/upcoming", eventH.HandleUpcoming)
	r.Get("/api/events/month", eventH.HandleMonth)
	r.Post("/api/events", eventH.HandleCreate)
	r.Delete("/api/events/{id}", eventH.HandleDelete)
	r.Get("/api/notes", noteH.HandleList)
	r.Post("/api/notes", noteH.HandleCreate)
	r.Get("/api/notes/{id}", noteH.HandleGet)
	r.Put("/api/notes/{id}", noteH.HandleUpdate)
	r.Delete("/api/notes/{id}", noteH.HandleDelete)
	r.Get("/api/preferences/theme", prefH.HandleGetTheme)
	r.Put("/api/preferences/theme", prefH.HandleSetTheme)
	r.Post("/api/preferences/theme/toggle", prefH.HandleToggleTheme)

	return &testAPI{router: r, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

// =========================================================================
// AUTH
// =========================================================================

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	t.Run("sets a cookie for the new session", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/auth/login",
			`{"email":"a.b_c@example.com","password":"secret1","remember":false}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, int(auth.SessionTTL.Seconds()), cookie.MaxAge)

		session := decode[model.Session](t, rr)
		assert.Equal(t, "A b c", session.Name)

		subject, err := api.tokens.Validate(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, session.ID, subject)
	})

	t.Run("remember me gets the long cookie", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/auth/login",
			`{"email":"a@example.com","password":"secret1","remember":true}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int(auth.RememberTTL.Seconds()), sessionCookie(rr).MaxAge)
	})

	t.Run("validation error carries the form message", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/auth/login", `{"email":"nope","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Nil(t, sessionCookie(rr))

		res := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, service.MsgInvalidEmail, res.Message)
		assert.Equal(t, "email", res.Field)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/auth/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/auth/login", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSignup(t *testing.T) {
	api := newTestAPI(t)
	body := `{"name":"Jane","email":"jane@example.com","password":"secret1","confirmPassword":"secret1"}`

	rr := api.do(t, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotNil(t, sessionCookie(rr))
	assert.Equal(t, "Jane", decode[model.Session](t, rr).Name)

	rr = api.do(t, http.MethodPost, "/auth/signup", strings.Replace(body, "jane@", "JANE@", 1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, service.MsgEmailTaken, decode[handler.ErrorResponse](t, rr).Message)
}

func TestLogout_ClearsCookie(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"secret1"}`)

	rr := api.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestMe_WithoutSessionInContext(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// =========================================================================
// TODOS
// =========================================================================

func TestTodoEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/todos", `{"title":"Buy milk","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	milk := decode[model.Todo](t, rr)
	assert.Equal(t, model.PriorityHigh, milk.Priority)

	rr = api.do(t, http.MethodPost, "/api/todos", `{"title":"Walk dog"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(t, http.MethodPost, "/api/todos/"+milk.ID+"/toggle", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/todos?filter=completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	completed := decode[[]model.Todo](t, rr)
	require.Len(t, completed, 1)
	assert.Equal(t, milk.ID, completed[0].ID)

	rr = api.do(t, http.MethodGet, "/api/todos", "")
	assert.Len(t, decode[[]model.Todo](t, rr), 2)

	rr = api.do(t, http.MethodDelete, "/api/todos/"+milk.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(t, http.MethodDelete, "/api/todos/"+milk.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code, "second delete is a silent no-op")

	rr = api.do(t, http.MethodPost, "/api/todos/unknown/toggle", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestTodoCreate_Validation(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/todos", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "title", decode[handler.ErrorResponse](t, rr).Field)
}

func TestTodoList_EmptyIsArray(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

// =========================================================================
// EVENTS
// =========================================================================

func TestEventEndpoints(t *testing.T) {
	api := newTestAPI(t)

	for _, body := range []string{
		`{"title":"far","date":"2999-03-01","time":"10:00"}`,
		`{"title":"past","date":"2000-01-01","time":"10:00"}`,
		`{"title":"near","date":"2999-01-01","time":"10:00"}`,
	} {
		rr := api.do(t, http.MethodPost, "/api/events", body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := api.do(t, http.MethodGet, "/api/events", "")
	all := decode[[]model.Event](t, rr)
	require.Len(t, all, 3)
	assert.Equal(t, "past", all[0].Title)
	assert.Equal(t, "near", all[1].Title)

	rr = api.do(t, http.MethodGet, "/api/events/upcoming?limit=1", "")
	upcoming := decode[[]model.Event](t, rr)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "near", upcoming[0].Title)

	rr = api.do(t, http.MethodGet, "/api/events/upcoming", "")
	assert.Len(t, decode[[]model.Event](t, rr), 2)

	rr = api.do(t, http.MethodGet, "/api/events/upcoming?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodDelete, "/api/events/"+all[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/events/month", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rr)["label"])
}

func TestEventCreate_BadTime(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/events", `{"title":"x","date":"2999-01-01","time":"noon"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "time", decode[handler.ErrorResponse](t, rr).Field)
}

// =========================================================================
// NOTES
// =========================================================================

func TestNoteEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/notes", `{"title":"","content":"hello world"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	note := decode[model.Note](t, rr)
	assert.Equal(t, model.UntitledNote, note.Title)

	rr = api.do(t, http.MethodPut, "/api/notes/"+note.ID, `{"title":"Greeting","content":"hello again"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Greeting", decode[model.Note](t, rr).Title)

	rr = api.do(t, http.MethodGet, "/api/notes/"+note.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello again", decode[model.Note](t, rr).Content)

	rr = api.do(t, http.MethodPut, "/api/notes/ghost", `{"title":"x","content":"y"}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = api.do(t, http.MethodGet, "/api/notes", "")
	assert.Len(t, decode[[]model.Note](t, rr), 1, "an unknown-id update must not create a note")

	rr = api.do(t, http.MethodGet, "/api/notes/ghost", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)

	rr = api.do(t, http.MethodDelete, "/api/notes/"+note.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNoteSearch_LegacyPreview(t *testing.T) {
	api := newTestAPI(t)

	body, err := json.Marshal(map[string]string{
		"title":   "Long",
		"content": strings.Repeat("a", model.PreviewLength) + " buried",
	})
	require.NoError(t, err)
	rr := api.do(t, http.MethodPost, "/api/notes", string(body))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/notes?q=BURIED", "")
	assert.Len(t, decode[[]model.Note](t, rr), 1)

	rr = api.do(t, http.MethodGet, "/api/notes?q=buried&legacy=true", "")
	assert.Empty(t, decode[[]model.Note](t, rr))
}

// =========================================================================
// PREFERENCES / DASHBOARD
// =========================================================================

func TestThemeEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/preferences/theme", "")
	assert.JSONEq(t, `{"theme":""}`, rr.Body.String())

	rr = api.do(t, http.MethodPost, "/api/preferences/theme/toggle", "")
	assert.JSONEq(t, `{"theme":"dark-theme"}`, rr.Body.String())

	rr = api.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":""}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"purple"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decode[service.Summary](t, rr)
	assert.Equal(t, service.DefaultUserName, sum.UserName)

	api.do(t, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"secret1"}`)
	api.do(t, http.MethodPost, "/api/todos", `{"title":"one"}`)

	rr = api.do(t, http.MethodGet, "/api/dashboard", "")
	sum = decode[service.Summary](t, rr)
	assert.Equal(t, "Jane", sum.UserName)
	assert.Equal(t, 1, sum.PendingTodos)
	require.Len(t, sum.RecentTodos, 1)
}
