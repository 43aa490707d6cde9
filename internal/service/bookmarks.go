package service

import (
	"context"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store"
)

// TitleResolver looks up the title of a web page. ok is false when none
// could be determined.
type TitleResolver interface {
	Resolve(ctx context.Context, url string) (title string, ok bool)
}

// Bookmarks is the bookmark lifecycle.
type Bookmarks = Resource[*domain.Bookmark]

// NewBookmarks creates the bookmark service. Bookmarks created without a
// title get the page title from titles, or domain.UntitledTitle.
// titles may be nil.
func NewBookmarks(s store.Collection[*domain.Bookmark], titles TitleResolver, opts ...Option) *Bookmarks {
	build := func(ctx context.Context, ownerID string, in domain.Fields, now time.Time) (*domain.Bookmark, error) {
		b, err := domain.NewBookmark(ownerID, in, now)
		if err != nil {
			return nil, err
		}
		if b.Title == "" {
			b.Title = resolveTitle(ctx, titles, b.URL)
		}
		return b, nil
	}
	patch := func(in domain.Fields, now time.Time) (domain.Patch[*domain.Bookmark], error) {
		p, err := domain.NewBookmarkPatch(in, now)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return newResource[*domain.Bookmark](s, build, patch, opts)
}

func resolveTitle(ctx context.Context, titles TitleResolver, url string) string {
	if titles == nil {
		return domain.UntitledTitle
	}
	if title, ok := titles.Resolve(ctx, domain.FetchURL(url)); ok && title != "" {
		return title
	}
	return domain.UntitledTitle
}
