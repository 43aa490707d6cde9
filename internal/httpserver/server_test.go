package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/config"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/service"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store/memory"
)

const testSecret = "test-secret"

type stubTitles struct{ title string }

func (s stubTitles) Resolve(context.Context, string) (string, bool) {
	if s.title == "" {
		return "", false
	}
	return s.title, true
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	cfg     *config.Config
	deps    deps.Deps
}

// newTestServer wires the router over memory stores. tweak may adjust
// config and deps before the router is built.
func newTestServer(t *testing.T, tweak func(*config.Config, *deps.Deps)) *testServer {
	t.Helper()

	verifier, err := auth.NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	cfg := &config.Config{
		RequestTimeout:      10 * time.Second,
		RateLimitRefillPerM: 60,
	}
	d := deps.Deps{
		Logger:       logger.NewNop(),
		StartTime:    time.Now(),
		Version:      "test",
		MaxBodyBytes: 1 << 20,
		Verifier:     verifier,
		DefaultOwner: auth.DefaultOwner,
		Notes:        service.NewNotes(memory.NewCollection[*domain.Note]()),
		Bookmarks: service.NewBookmarks(memory.NewCollection[*domain.Bookmark](),
			stubTitles{title: "Resolved Title"}),
	}
	if tweak != nil {
		tweak(cfg, &d)
	}

	return &testServer{t: t, handler: NewRouter(cfg, d), cfg: cfg, deps: d}
}

func (s *testServer) token(owner string) string {
	s.t.Helper()
	tok, err := s.deps.Verifier.Issue(owner, time.Hour, time.Now())
	if err != nil {
		s.t.Fatalf("Issue() error = %v", err)
	}
	return tok
}

// do sends a request; body may be nil, a string or any JSON-encodable value.
func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func TestNotesLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(http.MethodPost, "/api/notes", "", map[string]any{
		"title": "Groceries", "content": "milk, eggs", "tags": []string{"home"},
	})
	if rec.Code != http.StatusCreated || env.Message != "Note created successfully" {
		t.Fatalf("create = %d %+v", rec.Code, env)
	}
	created := decodeData[domain.Note](t, env)
	if created.ID == "" || created.OwnerID != auth.DefaultOwner {
		t.Fatalf("created note = %+v", created)
	}
	if !strings.Contains(rec.Body.String(), `"_id"`) || !strings.Contains(rec.Body.String(), `"userId"`) {
		t.Errorf("response should use _id and userId: %s", rec.Body.String())
	}

	rec, env = s.do(http.MethodGet, "/api/notes/"+created.ID, "", nil)
	if rec.Code != http.StatusOK || env.Message != "Note retrieved successfully" {
		t.Fatalf("get = %d %+v", rec.Code, env)
	}

	rec, env = s.do(http.MethodPut, "/api/notes/"+created.ID, "", map[string]any{"isFavorite": true})
	if rec.Code != http.StatusOK || env.Message != "Note updated successfully" {
		t.Fatalf("update = %d %+v", rec.Code, env)
	}
	updated := decodeData[domain.Note](t, env)
	if !updated.IsFavorite || updated.Title != "Groceries" {
		t.Errorf("updated note = %+v", updated)
	}

	rec, env = s.do(http.MethodGet, "/api/notes?tags=home", "", nil)
	if rec.Code != http.StatusOK || env.Message != "Notes retrieved successfully" {
		t.Fatalf("list = %d %+v", rec.Code, env)
	}
	if list := decodeData[[]domain.Note](t, env); len(list) != 1 {
		t.Errorf("list len = %d, want 1", len(list))
	}

	rec, env = s.do(http.MethodDelete, "/api/notes/"+created.ID, "", nil)
	if rec.Code != http.StatusOK || env.Message != "Note deleted successfully" {
		t.Fatalf("delete = %d %+v", rec.Code, env)
	}
	if env.Data != nil {
		t.Errorf("delete should not return data, got %s", env.Data)
	}

	rec, env = s.do(http.MethodDelete, "/api/notes/"+created.ID, "", nil)
	if rec.Code != http.StatusNotFound || env.Error != "Note not found" {
		t.Errorf("second delete = %d %+v", rec.Code, env)
	}
}

func TestListEmptyReturnsArray(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/notes", "/api/bookmarks", "/api/notes?q=nothing&tags=x"} {
		rec, _ := s.do(http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"data":[]`) {
			t.Errorf("GET %s body = %s, want data:[]", path, rec.Body.String())
		}
	}
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.MaxBodyBytes = 64 })

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed note id",
			method:     http.MethodGet,
			path:       "/api/notes/not-an-id",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid note ID",
		},
		{
			name:       "malformed bookmark id",
			method:     http.MethodDelete,
			path:       "/api/bookmarks/123",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid bookmark ID",
		},
		{
			name:       "unknown note",
			method:     http.MethodGet,
			path:       "/api/notes/6f1c2f38-8a55-4d7c-9d1e-2f0a4b6c8e10",
			wantStatus: http.StatusNotFound,
			wantError:  "Note not found",
		},
		{
			name:       "missing title",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       map[string]any{"content": "x"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Title is required and must be a non-empty string",
		},
		{
			name:       "empty body is an empty object",
			method:     http.MethodPost,
			path:       "/api/notes",
			wantStatus: http.StatusBadRequest,
			wantError:  "Title is required and must be a non-empty string",
		},
		{
			name:       "invalid url",
			method:     http.MethodPost,
			path:       "/api/bookmarks",
			body:       map[string]any{"url": "not-a-url"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Valid URL is required",
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Request body must be a JSON object",
		},
		{
			name:       "JSON array",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       `[1,2]`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Request body must be a JSON object",
		},
		{
			name:       "JSON null",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       `null`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Request body must be a JSON object",
		},
		{
			name:       "body too large",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       map[string]any{"title": "t", "content": strings.Repeat("x", 128)},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "Request body too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(tt.method, tt.path, "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env.Error != tt.wantError {
				t.Errorf("error = %q, want %q", env.Error, tt.wantError)
			}
		})
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.token("alice")
	bob := s.token("bob")

	rec, env := s.do(http.MethodPost, "/api/notes", alice, map[string]any{"title": "A", "content": "B"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %+v", rec.Code, env)
	}
	note := decodeData[domain.Note](t, env)
	if note.OwnerID != "alice" {
		t.Fatalf("userId = %q, want alice", note.OwnerID)
	}

	for name, tok := range map[string]string{"bob": bob, "anonymous": "", "garbage token": "not.a.jwt"} {
		rec, env := s.do(http.MethodGet, "/api/notes/"+note.ID, tok, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: get = %d %+v, want 404", name, rec.Code, env)
		}
		rec, _ = s.do(http.MethodPut, "/api/notes/"+note.ID, tok, map[string]any{"title": "stolen"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: update = %d, want 404", name, rec.Code)
		}
	}

	rec, env = s.do(http.MethodGet, "/api/notes", bob, nil)
	if list := decodeData[[]domain.Note](t, env); rec.Code != http.StatusOK || len(list) != 0 {
		t.Errorf("bob list = %d %v, want empty", rec.Code, list)
	}

	rec, _ = s.do(http.MethodGet, "/api/notes/"+note.ID, alice, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("alice get = %d, want 200", rec.Code)
	}
}

func TestBookmarkTitleResolution(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(http.MethodPost, "/api/bookmarks", "", map[string]any{"url": "example.com/page"})
	if rec.Code != http.StatusCreated || env.Message != "Bookmark created successfully" {
		t.Fatalf("create = %d %+v", rec.Code, env)
	}
	b := decodeData[domain.Bookmark](t, env)
	if b.Title != "Resolved Title" || b.URL != "example.com/page" {
		t.Errorf("bookmark = %+v", b)
	}

	rec, env = s.do(http.MethodPost, "/api/bookmarks", "", map[string]any{"url": "https://go.dev", "title": "Go"})
	if b := decodeData[domain.Bookmark](t, env); rec.Code != http.StatusCreated || b.Title != "Go" {
		t.Errorf("explicit title = %d %+v", rec.Code, b)
	}

	untitled := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.Bookmarks = service.NewBookmarks(memory.NewCollection[*domain.Bookmark](), stubTitles{})
	})
	_, env = untitled.do(http.MethodPost, "/api/bookmarks", "", map[string]any{"url": "https://unreachable.invalid"})
	if b := decodeData[domain.Bookmark](t, env); b.Title != domain.UntitledTitle {
		t.Errorf("title = %q, want %q", b.Title, domain.UntitledTitle)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK || env.Message != "Backend is running" {
		t.Errorf("health = %d %+v", rec.Code, env)
	}
	if !strings.Contains(rec.Body.String(), `"version":"test"`) {
		t.Errorf("health body = %s, want version", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	ok := deps.Check{Name: "store", Ping: func(context.Context) error { return nil }}
	down := deps.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name       string
		checks     []deps.Check
		wantStatus int
	}{
		{name: "no checks", wantStatus: http.StatusOK},
		{name: "all up", checks: []deps.Check{ok}, wantStatus: http.StatusOK},
		{name: "one down", checks: []deps.Check{ok, down}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.ReadyChecks = tt.checks })

			rec, _ := s.do(http.MethodGet, "/readyz", "", nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "connection refused") {
				t.Errorf("readyz leaks error details: %s", rec.Body.String())
			}
		})
	}
}

func TestReadyzRestrictedByCIDR(t *testing.T) {
	s := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.AllowedCIDRS = []string{"10.0.0.0/8"} })

	// httptest requests come from 192.0.2.1.
	rec, env := s.do(http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusForbidden || env.Error != "Forbidden" {
		t.Errorf("readyz = %d %+v, want 403", rec.Code, env)
	}

	rec, _ = s.do(http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health = %d, should not be restricted", rec.Code)
	}
}

func TestImportTrigger(t *testing.T) {
	disabled := newTestServer(t, nil)
	rec, _ := disabled.do(http.MethodPost, "/api/bookmarks/import", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("disabled importer = %d, want 404", rec.Code)
	}

	trigger := make(chan struct{}, 1)
	s := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.ImportTrigger = trigger })

	rec, _ = s.do(http.MethodPost, "/api/bookmarks/import", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first trigger = %d, want 202", rec.Code)
	}
	rec, _ = s.do(http.MethodPost, "/api/bookmarks/import", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("pending trigger = %d, want 429", rec.Code)
	}

	<-trigger
	rec, _ = s.do(http.MethodPost, "/api/bookmarks/import", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("trigger after drain = %d, want 202", rec.Code)
	}
}

func TestEnforceHost(t *testing.T) {
	s := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.AllowedHosts = []string{"notes.example.org"} })

	// httptest requests carry Host: example.com.
	rec, _ := s.do(http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong host = %d, want 403", rec.Code)
	}
}

func TestRateLimitOnlyOnAPI(t *testing.T) {
	s := newTestServer(t, func(c *config.Config, _ *deps.Deps) {
		c.RateLimitBurst = 2
		c.RateLimitRefillPerM = 1
	})

	for i := 0; i < 2; i++ {
		if rec, _ := s.do(http.MethodGet, "/api/notes", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, rec.Code)
		}
	}
	rec, _ := s.do(http.MethodGet, "/api/notes", "", nil)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("over limit = %d (Retry-After %q), want 429", rec.Code, rec.Header().Get("Retry-After"))
	}

	rec, _ = s.do(http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz = %d, should not be rate limited", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if rec.Code >= 300 {
		t.Errorf("preflight status = %d", rec.Code)
	}
}
