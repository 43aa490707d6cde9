package domain

import (
	"net"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// UntitledTitle is stored when no title was given and none could be resolved.
const UntitledTitle = "Untitled"

const (
	msgBookmarkURL         = "Valid URL is required"
	msgBookmarkTitle       = "Title must be a string"
	msgBookmarkTitleEmpty  = "Title must be a non-empty string"
	msgBookmarkDescription = "Description must be a string"
)

// Bookmark is a saved external URL.
type Bookmark struct {
	Record `bson:",inline"`

	// URL is stored as given by the caller.
	// Example: https://go.dev/doc/effective_go
	URL string `json:"url" bson:"url"`

	// Title is never empty once stored: user supplied, resolved from the
	// page, or UntitledTitle.
	Title string `json:"title" bson:"title"`

	Description string `json:"description" bson:"description"`
}

func (b *Bookmark) SearchFields() []string { return []string{b.Title, b.URL} }

func (b *Bookmark) Clone() *Bookmark {
	c := *b
	c.Record = b.Record.clone()
	return &c
}

// NewBookmark validates create input and returns an unsaved bookmark.
// Title is left empty when the caller did not provide a usable one; the
// service resolves it before saving.
func NewBookmark(ownerID string, in Fields, now time.Time) (*Bookmark, error) {
	rawURL, err := in.requiredString("url", msgBookmarkURL)
	if err != nil {
		return nil, err
	}
	if !ValidURL(rawURL) {
		return nil, NewValidationError("url", msgBookmarkURL)
	}

	title, err := in.optionalString("title", msgBookmarkTitle)
	if err != nil {
		return nil, err
	}
	description, err := in.optionalString("description", msgBookmarkDescription)
	if err != nil {
		return nil, err
	}

	tags, _ := in.tags().Get()
	t, _ := title.Get()
	if strings.TrimSpace(t) == "" {
		t = ""
	}
	d, _ := description.Get()

	return &Bookmark{
		Record:      newRecord(ownerID, cloneTags(tags), now),
		URL:         rawURL,
		Title:       t,
		Description: d,
	}, nil
}

// BookmarkPatch is a presence-based partial update of a bookmark.
type BookmarkPatch struct {
	URL         Optional[string]
	Title       Optional[string]
	Description Optional[string]
	Tags        Optional[[]string]
	IsFavorite  Optional[bool]
	UpdatedAt   time.Time
}

// NewBookmarkPatch reads update input. An explicit empty description is
// applied; url and title keep their non-empty invariants.
func NewBookmarkPatch(in Fields, now time.Time) (*BookmarkPatch, error) {
	p := &BookmarkPatch{
		Tags:       in.tags(),
		IsFavorite: in.boolean("isFavorite"),
		UpdatedAt:  now,
	}

	if _, ok := in.lookup("url"); ok {
		u, err := in.requiredString("url", msgBookmarkURL)
		if err != nil {
			return nil, err
		}
		if !ValidURL(u) {
			return nil, NewValidationError("url", msgBookmarkURL)
		}
		p.URL = Some(u)
	}

	if _, ok := in.lookup("title"); ok {
		t, err := in.requiredString("title", msgBookmarkTitleEmpty)
		if err != nil {
			return nil, err
		}
		p.Title = Some(t)
	}

	description, err := in.optionalString("description", msgBookmarkDescription)
	if err != nil {
		return nil, err
	}
	p.Description = description

	return p, nil
}

func (p *BookmarkPatch) Apply(b *Bookmark) {
	if v, ok := p.URL.Get(); ok {
		b.URL = v
	}
	if v, ok := p.Title.Get(); ok {
		b.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		b.Description = v
	}
	if v, ok := p.Tags.Get(); ok {
		b.Tags = cloneTags(v)
	}
	if v, ok := p.IsFavorite.Get(); ok {
		b.IsFavorite = v
	}
	b.UpdatedAt = p.UpdatedAt
}

func (p *BookmarkPatch) Changes() map[string]any {
	changes := map[string]any{"updatedAt": p.UpdatedAt}
	if v, ok := p.URL.Get(); ok {
		changes["url"] = v
	}
	if v, ok := p.Title.Get(); ok {
		changes["title"] = v
	}
	if v, ok := p.Description.Get(); ok {
		changes["description"] = v
	}
	if v, ok := p.Tags.Get(); ok {
		changes["tags"] = cloneTags(v)
	}
	if v, ok := p.IsFavorite.Get(); ok {
		changes["isFavorite"] = v
	}
	return changes
}

// ValidURL accepts http, https and ftp URLs whose host is an IP address or
// a dotted name with an alphabetic top-level label. A missing scheme is
// tolerated ("example.com/page").
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsFunc(raw, unicode.IsSpace) {
		return false
	}
	u, err := url.Parse(withScheme(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
	default:
		return false
	}
	// "mailto:x@host" would otherwise pass as userinfo once a scheme is added.
	if u.User != nil && !strings.Contains(raw, "://") {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// FetchURL returns raw with an http(s) scheme, suitable for a GET request.
func FetchURL(raw string) string {
	return withScheme(strings.TrimSpace(raw))
}

func withScheme(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}
