package domain

import (
	"slices"
	"time"
)

// Record holds the fields shared by every stored resource.
//
// Wire names (`_id`, `userId`) are the ones the web client reads directly
// off the JSON payloads.
type Record struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the persistence layer on insert and never reused.
	// MongoDB stores it as an ObjectID; other backends as a UUID string.
	ID string `json:"_id" bson:"_id,omitempty"`

	// OwnerID is the identity that created the record.
	// Every read, update and delete is scoped to it.
	OwnerID string `json:"userId" bson:"userId"`

	// ─────────────────────────────
	// Classification
	// ─────────────────────────────

	// Tags keeps the caller's order. Never nil once stored.
	Tags []string `json:"tags" bson:"tags"`

	IsFavorite bool `json:"isFavorite" bson:"isFavorite"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	// CreatedAt is set once on create.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`

	// UpdatedAt is refreshed on every successful update.
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Meta exposes the shared fields of any resource embedding Record.
func (r *Record) Meta() *Record { return r }

// Searchable is what the filter builder needs to evaluate a record.
type Searchable interface {
	Meta() *Record
	// SearchFields returns the values covered by full-text search.
	SearchFields() []string
}

// Document is a stored resource kind (Note or Bookmark) as seen by the
// persistence layer. D is the pointer type itself, e.g. *Note.
type Document[D any] interface {
	Searchable
	Clone() D
}

// Patch is a partial update of a document. Only present fields change.
type Patch[D any] interface {
	// Apply mutates doc in place.
	Apply(doc D)
	// Changes returns the stored field names and their new values,
	// always including updatedAt.
	Changes() map[string]any
}

func newRecord(ownerID string, tags []string, now time.Time) Record {
	return Record{
		OwnerID:    ownerID,
		Tags:       tags,
		IsFavorite: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r Record) clone() Record {
	r.Tags = cloneTags(r.Tags)
	return r
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
