// Package store defines the persistence contract shared by every backend
// (MongoDB, Redis, in-memory).
package store

import (
	"context"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// Collection names, shared by every backend.
const (
	NotesCollection     = "notes"
	BookmarksCollection = "bookmarks"
)

// Collection stores one resource kind. Every lookup is scoped to
// (ownerID, id); a record owned by someone else yields domain.ErrNotFound.
type Collection[D domain.Document[D]] interface {
	// Insert assigns a fresh id and persists doc. The returned document is
	// what was stored.
	Insert(ctx context.Context, doc D) (D, error)

	// Find returns all documents matching f, newest first. Ties keep
	// insertion order. Never returns nil on success.
	Find(ctx context.Context, f domain.Filter) ([]D, error)

	FindOne(ctx context.Context, ownerID, id string) (D, error)

	// UpdateOne applies p atomically and returns the updated document.
	UpdateOne(ctx context.Context, ownerID, id string, p domain.Patch[D]) (D, error)

	DeleteOne(ctx context.Context, ownerID, id string) error

	// ValidID reports whether id has the shape this backend assigns.
	ValidID(id string) bool
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
