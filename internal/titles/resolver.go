// Package titles looks up the title of a web page for bookmarks saved
// without one.
package titles

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/utils"
)

const (
	// DefaultTimeout bounds the whole fetch, connect to last byte.
	DefaultTimeout = 5 * time.Second
	// maxBodyBytes caps how much of a page is parsed.
	maxBodyBytes = 1 << 20
	userAgent    = "notesd-title-resolver/1.0"
)

// Cache remembers resolved titles. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, url string) (title string, ok bool, err error)
	Set(ctx context.Context, url, title string) error
}

// Resolver fetches pages and extracts their title.
type Resolver struct {
	client *http.Client
	cache  Cache
	log    logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables the title cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// New creates a resolver; a non-positive timeout uses DefaultTimeout.
func New(timeout time.Duration, log logger.Logger, opts ...Option) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Resolver{
		client: newClient(timeout),
		log:    log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// Resolve returns the page title of url. ok is false when the page could
// not be fetched or has no usable title; the cause is logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, url string) (string, bool) {
	if r.cache != nil {
		title, ok, err := r.cache.Get(ctx, url)
		if err != nil {
			r.log.Warn("title cache read failed", logger.String("url", url), logger.Error(err))
		} else if ok {
			return title, true
		}
	}

	title, err := r.fetch(ctx, url)
	if err != nil {
		r.log.Debug("could not fetch title from url", logger.String("url", url), logger.Error(err))
		return "", false
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, url, title); err != nil {
			r.log.Warn("title cache write failed", logger.String("url", url), logger.Error(err))
		}
	}
	return title, true
}

func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return "", fmt.Errorf("unsupported content type %q", resp.Header.Get("Content-Type"))
	}

	title, err := ExtractTitle(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}
	return title, nil
}

// ExtractTitle returns the trimmed <title> text of an HTML document, or the
// og:title meta content when the former is empty.
func ExtractTitle(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}
	og, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	return strings.TrimSpace(og), nil
}

// isHTML accepts an absent content type; some servers omit it.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
