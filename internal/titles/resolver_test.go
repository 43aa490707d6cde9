package titles

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

type memCache struct {
	mu     sync.Mutex
	titles map[string]string
	getErr error
}

func newMemCache() *memCache { return &memCache{titles: map[string]string{}} }

func (c *memCache) Get(_ context.Context, url string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	t, ok := c.titles[url]
	return t, ok, nil
}

func (c *memCache) Set(_ context.Context, url, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles[url] = title
	return nil
}

func serve(status int, contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
		wantOK      bool
	}{
		{
			name:   "title element",
			status: http.StatusOK, contentType: "text/html; charset=utf-8",
			body: "<html><head><title>  Example Domain \n</title></head></html>",
			want: "Example Domain", wantOK: true,
		},
		{
			name:   "og title fallback",
			status: http.StatusOK, contentType: "text/html",
			body: `<html><head><title> </title><meta property="og:title" content="OG Title"></head></html>`,
			want: "OG Title", wantOK: true,
		},
		{
			name:   "title wins over og",
			status: http.StatusOK, contentType: "text/html",
			body: `<html><head><meta property="og:title" content="OG"><title>Real</title></head></html>`,
			want: "Real", wantOK: true,
		},
		{
			name:   "no title",
			status: http.StatusOK, contentType: "text/html",
			body: "<html><body>nothing</body></html>",
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError, contentType: "text/html",
			body: "<title>Oops</title>",
		},
		{
			name:   "not html",
			status: http.StatusOK, contentType: "application/json",
			body: `{"title":"json"}`,
		},
		{
			name:   "missing content type",
			status: http.StatusOK,
			body: "<title>Bare</title>",
			want: "Bare", wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(tt.status, tt.contentType, tt.body)
			defer srv.Close()

			r := New(time.Second, logger.NewNop())
			got, ok := r.Resolve(context.Background(), srv.URL)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	r := New(50*time.Millisecond, logger.NewNop())
	start := time.Now()
	if _, ok := r.Resolve(context.Background(), srv.URL); ok {
		t.Error("Resolve() on hanging server returned ok")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Resolve() took %v, timeout not applied", elapsed)
	}
}

func TestResolveUnreachable(t *testing.T) {
	r := New(time.Second, logger.NewNop())
	if _, ok := r.Resolve(context.Background(), "http://127.0.0.1:1/"); ok {
		t.Error("Resolve() on closed port returned ok")
	}
}

func TestResolveUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<title>Cached</title>"))
	}))
	defer srv.Close()

	cache := newMemCache()
	r := New(time.Second, logger.NewNop(), WithCache(cache))

	for i := 0; i < 3; i++ {
		got, ok := r.Resolve(context.Background(), srv.URL)
		if !ok || got != "Cached" {
			t.Fatalf("Resolve() = %q, %v", got, ok)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestResolveCacheErrorFallsThrough(t *testing.T) {
	srv := serve(http.StatusOK, "text/html", "<title>Live</title>")
	defer srv.Close()

	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	r := New(time.Second, logger.NewNop(), WithCache(cache))

	if got, ok := r.Resolve(context.Background(), srv.URL); !ok || got != "Live" {
		t.Errorf("Resolve() = %q, %v; want Live, true", got, ok)
	}
}

func TestExtractTitleLargeBody(t *testing.T) {
	body := "<html><head><title>Big</title></head><body>" + strings.Repeat("x", 2<<20) + "</body></html>"
	got, err := ExtractTitle(strings.NewReader(body))
	if err != nil || got != "Big" {
		t.Errorf("ExtractTitle() = %q, %v", got, err)
	}
}

func TestIsHTML(t *testing.T) {
	tests := map[string]bool{
		"":                          true,
		"text/html":                 true,
		"TEXT/HTML; charset=UTF-8":  true,
		"application/xhtml+xml":     true,
		"application/json":          false,
		"image/png":                 false,
		"text/plain; charset=utf-8": false,
	}
	for ct, want := range tests {
		if got := isHTML(ct); got != want {
			t.Errorf("isHTML(%q) = %v, want %v", ct, got, want)
		}
	}
}
