package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/sources/homepage"
)

// BookmarkService is the part of the bookmarks service the importer uses.
type BookmarkService interface {
	Create(ctx context.Context, ownerID string, in domain.Fields) (*domain.Bookmark, error)
	List(ctx context.Context, ownerID, query, tags string) ([]*domain.Bookmark, error)
}

// ImportResult counts what one import run did.
type ImportResult struct {
	Created  int
	Existing int // URL already bookmarked by the owner
	Invalid  int // no href, or rejected by validation
	Failed   int // store errors
}

// BookmarkImporter creates bookmarks from a Homepage bookmarks.yaml for a
// single owner, on start, every interval and on manual trigger.
type BookmarkImporter struct {
	loader        *homepage.Loader
	bookmarks     BookmarkService
	owner         string
	logger        logger.Logger
	interval      time.Duration // 0 => startup and manual runs only
	stopCh        chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
	started       bool
	manualTrigger <-chan struct{}
}

func NewBookmarkImporter(
	bookmarkFile string,
	bookmarks BookmarkService,
	owner string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *BookmarkImporter {
	return &BookmarkImporter{
		loader:        homepage.NewLoader(bookmarkFile),
		bookmarks:     bookmarks,
		owner:         owner,
		logger:        log.With(logger.String("component", "bookmark_import")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first import, then keeps importing in the background until
// Stop or ctx is done. A file that cannot be read at startup is an error.
func (bi *BookmarkImporter) Start(ctx context.Context) error {
	if _, err := bi.Import(ctx); err != nil {
		close(bi.done)
		return fmt.Errorf("initial bookmark import failed: %w", err)
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if bi.interval > 0 {
		ticker = time.NewTicker(bi.interval)
		tick = ticker.C
	}

	bi.started = true
	go func() {
		defer close(bi.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				bi.run(ctx)
			case <-bi.manualTrigger:
				bi.logger.Info("manual bookmark import triggered")
				bi.run(ctx)
			case <-bi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the background loop and waits for a running import to finish.
func (bi *BookmarkImporter) Stop() {
	if !bi.started {
		return
	}
	bi.stopOnce.Do(func() { close(bi.stopCh) })
	<-bi.done
}

func (bi *BookmarkImporter) run(ctx context.Context) {
	if _, err := bi.Import(ctx); err != nil {
		bi.logger.Error("failed to import bookmarks", logger.Error(err))
	}
}

// Import loads the file and creates every entry whose URL the owner does
// not already have. Per-entry failures are counted, not returned.
func (bi *BookmarkImporter) Import(ctx context.Context) (ImportResult, error) {
	var res ImportResult

	config, err := bi.loader.Load()
	if err != nil {
		return res, err
	}
	entries, skipped := homepage.Entries(config)
	res.Invalid = skipped

	existing, err := bi.bookmarks.List(ctx, bi.owner, "", "")
	if err != nil {
		return res, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	known := make(map[string]bool, len(existing)+len(entries))
	for _, b := range existing {
		known[normalizeURL(b.URL)] = true
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		key := normalizeURL(e.URL)
		if known[key] {
			res.Existing++
			continue
		}

		in, err := e.Fields()
		if err != nil {
			res.Invalid++
			continue
		}
		if _, err := bi.bookmarks.Create(ctx, bi.owner, in); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				bi.logger.Warn("skipping invalid bookmark",
					logger.String("name", e.Name),
					logger.String("url", e.URL),
					logger.String("reason", ve.Message))
				res.Invalid++
				continue
			}
			bi.logger.Warn("failed to import bookmark",
				logger.String("name", e.Name),
				logger.Error(err))
			res.Failed++
			continue
		}
		known[key] = true
		res.Created++
	}

	bi.logger.Info("bookmark import finished",
		logger.String("file", bi.loader.Path()),
		logger.String("owner", bi.owner),
		logger.Int("created", res.Created),
		logger.Int("existing", res.Existing),
		logger.Int("invalid", res.Invalid),
		logger.Int("failed", res.Failed))

	return res, nil
}

// normalizeURL treats "https://x.dev" and "https://x.dev/" as the same bookmark.
func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}
