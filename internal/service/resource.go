// Package service implements the create/list/get/update/delete lifecycle
// shared by notes and bookmarks. Every operation is scoped to an explicit
// owner id.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store"
)

// BuildFunc validates create input and returns an unsaved document.
type BuildFunc[D any] func(ctx context.Context, ownerID string, in domain.Fields, now time.Time) (D, error)

// PatchFunc validates update input.
type PatchFunc[D any] func(in domain.Fields, now time.Time) (domain.Patch[D], error)

// Resource runs the lifecycle of one document kind against a store.
type Resource[D domain.Document[D]] struct {
	store store.Collection[D]
	build BuildFunc[D]
	patch PatchFunc[D]
	now   func() time.Time
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newResource[D domain.Document[D]](s store.Collection[D], build BuildFunc[D], patch PatchFunc[D], opts []Option) *Resource[D] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[D]{
		store: s,
		build: build,
		patch: patch,
		now:   func() time.Time { return o.now().UTC() },
	}
}

// Create validates in, stores a new document owned by ownerID and returns
// it with its assigned id. Nothing is stored when validation fails.
func (r *Resource[D]) Create(ctx context.Context, ownerID string, in domain.Fields) (D, error) {
	var zero D
	doc, err := r.build(ctx, ownerID, in, r.now())
	if err != nil {
		return zero, err
	}
	stored, err := r.store.Insert(ctx, doc)
	if err != nil {
		return zero, upstream(err)
	}
	return stored, nil
}

// List returns the owner's documents matching the raw `q` and `tags`
// parameters, newest first. An empty result is an empty slice.
func (r *Resource[D]) List(ctx context.Context, ownerID, query, tags string) ([]D, error) {
	docs, err := r.store.Find(ctx, domain.BuildFilter(ownerID, query, tags))
	if err != nil {
		return nil, upstream(err)
	}
	if docs == nil {
		docs = []D{}
	}
	return docs, nil
}

func (r *Resource[D]) Get(ctx context.Context, ownerID, id string) (D, error) {
	var zero D
	if !r.store.ValidID(id) {
		return zero, domain.ErrNotFound
	}
	doc, err := r.store.FindOne(ctx, ownerID, id)
	if err != nil {
		return zero, upstream(err)
	}
	return doc, nil
}

// Update applies the fields present in `in` and refreshes updatedAt.
func (r *Resource[D]) Update(ctx context.Context, ownerID, id string, in domain.Fields) (D, error) {
	var zero D
	if !r.store.ValidID(id) {
		return zero, domain.ErrNotFound
	}
	p, err := r.patch(in, r.now())
	if err != nil {
		return zero, err
	}
	doc, err := r.store.UpdateOne(ctx, ownerID, id, p)
	if err != nil {
		return zero, upstream(err)
	}
	return doc, nil
}

func (r *Resource[D]) Delete(ctx context.Context, ownerID, id string) error {
	if !r.store.ValidID(id) {
		return domain.ErrNotFound
	}
	if err := r.store.DeleteOne(ctx, ownerID, id); err != nil {
		return upstream(err)
	}
	return nil
}

// ValidID reports whether id could have been assigned by the store.
func (r *Resource[D]) ValidID(id string) bool {
	return r.store.ValidID(id)
}

// upstream tags store failures other than ErrNotFound.
func upstream(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}
