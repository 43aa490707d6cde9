package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// Collection keeps documents in process memory. It backs tests and the
// "memory" store backend; contents are lost on restart.
type Collection[D domain.Document[D]] struct {
	mu    sync.RWMutex
	docs  map[string]D // ID -> document
	order []string     // insertion order
}

// NewCollection creates an empty collection.
func NewCollection[D domain.Document[D]]() *Collection[D] {
	return &Collection[D]{
		docs: make(map[string]D),
	}
}

// Insert stores a copy of doc under a new UUID.
func (c *Collection[D]) Insert(_ context.Context, doc D) (D, error) {
	stored := doc.Clone()
	stored.Meta().ID = uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs[stored.Meta().ID] = stored
	c.order = append(c.order, stored.Meta().ID)
	return stored.Clone(), nil
}

// Find returns copies of the matching documents, newest first.
func (c *Collection[D]) Find(_ context.Context, f domain.Filter) ([]D, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]D, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if f.Match(doc) {
			result = append(result, doc.Clone())
		}
	}
	domain.SortNewestFirst(result)
	return result, nil
}

func (c *Collection[D]) FindOne(_ context.Context, ownerID, id string) (D, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.owned(ownerID, id)
	if !ok {
		var zero D
		return zero, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

func (c *Collection[D]) UpdateOne(_ context.Context, ownerID, id string, p domain.Patch[D]) (D, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.owned(ownerID, id)
	if !ok {
		var zero D
		return zero, domain.ErrNotFound
	}
	p.Apply(doc)
	return doc.Clone(), nil
}

func (c *Collection[D]) DeleteOne(_ context.Context, ownerID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.owned(ownerID, id); !ok {
		return domain.ErrNotFound
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}

func (c *Collection[D]) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Count returns the number of stored documents across all owners.
func (c *Collection[D]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}

// Ping always succeeds.
func (c *Collection[D]) Ping(context.Context) error { return nil }

// owned must be called with c.mu held.
func (c *Collection[D]) owned(ownerID, id string) (D, bool) {
	doc, ok := c.docs[id]
	if !ok || doc.Meta().OwnerID != ownerID {
		var zero D
		return zero, false
	}
	return doc, true
}
