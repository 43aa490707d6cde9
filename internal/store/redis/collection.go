// Package redis keeps notes and bookmarks as JSON documents in Redis.
//
// Layout per collection:
//
//	notesd:<collection>:doc:<id>      JSON document
//	notesd:<collection>:owner:<owner> ZSET of ids scored by insertion sequence
//	notesd:<collection>:seq           insertion counter
//
// Redis has no secondary indexes here, so Find loads the owner's documents
// and filters them in-process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// maxTxRetries bounds optimistic transaction retries on concurrent writes.
const maxTxRetries = 100

// Collection stores one resource kind in Redis.
type Collection[D domain.Document[D]] struct {
	client *redis.Client
	name   string
	newDoc func() D
}

// NewCollection creates a collection named name. newDoc must return an
// empty, non-nil document to decode into.
func NewCollection[D domain.Document[D]](client *redis.Client, name string, newDoc func() D) *Collection[D] {
	return &Collection[D]{
		client: client,
		name:   name,
		newDoc: newDoc,
	}
}

func (c *Collection[D]) Insert(ctx context.Context, doc D) (D, error) {
	var zero D
	stored := doc.Clone()
	meta := stored.Meta()
	meta.ID = uuid.NewString()

	data, err := json.Marshal(stored)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal %s document: %w", c.name, err)
	}

	seq, err := c.client.Incr(ctx, SeqKey(c.name)).Result()
	if err != nil {
		return zero, fmt.Errorf("failed to allocate %s sequence: %w", c.name, err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, DocKey(c.name, meta.ID), data, 0)
		pipe.ZAdd(ctx, OwnerKey(c.name, meta.OwnerID), redis.Z{Score: float64(seq), Member: meta.ID})
		return nil
	})
	if err != nil {
		return zero, fmt.Errorf("failed to save %s document: %w", c.name, err)
	}
	return stored, nil
}

func (c *Collection[D]) Find(ctx context.Context, f domain.Filter) ([]D, error) {
	ids, err := c.client.ZRange(ctx, OwnerKey(c.name, f.OwnerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s ids: %w", c.name, err)
	}

	docs := make([]D, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = DocKey(c.name, id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s documents: %w", c.name, err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between ZRANGE and MGET
			continue
		}
		doc, err := c.decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s document %s: %w", c.name, ids[i], err)
		}
		if f.Match(doc) {
			docs = append(docs, doc)
		}
	}

	domain.SortNewestFirst(docs)
	return docs, nil
}

func (c *Collection[D]) FindOne(ctx context.Context, ownerID, id string) (D, error) {
	return c.get(ctx, c.client, ownerID, id)
}

// UpdateOne applies p inside a WATCH transaction on the document key and
// retries when another writer got there first.
func (c *Collection[D]) UpdateOne(ctx context.Context, ownerID, id string, p domain.Patch[D]) (D, error) {
	var updated D
	key := DocKey(c.name, id)

	txf := func(tx *redis.Tx) error {
		doc, err := c.get(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}
		p.Apply(doc)

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal %s document: %w", c.name, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = doc
		return nil
	}

	if err := c.watch(ctx, txf, key); err != nil {
		var zero D
		return zero, err
	}
	return updated, nil
}

func (c *Collection[D]) DeleteOne(ctx context.Context, ownerID, id string) error {
	key := DocKey(c.name, id)

	txf := func(tx *redis.Tx) error {
		if _, err := c.get(ctx, tx, ownerID, id); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, OwnerKey(c.name, ownerID), id)
			return nil
		})
		return err
	}

	return c.watch(ctx, txf, key)
}

// ValidID accepts UUIDs.
func (c *Collection[D]) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (c *Collection[D]) watch(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to write %s document: %w", c.name, err)
		}
		return err
	}
	return fmt.Errorf("failed to write %s document %s: too much contention", c.name, key)
}

// get loads one document and enforces the owner scope.
func (c *Collection[D]) get(ctx context.Context, r redis.Cmdable, ownerID, id string) (D, error) {
	var zero D
	data, err := r.Get(ctx, DocKey(c.name, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("failed to get %s document: %w", c.name, err)
	}

	doc, err := c.decode(data)
	if err != nil {
		return zero, fmt.Errorf("failed to unmarshal %s document: %w", c.name, err)
	}
	if doc.Meta().OwnerID != ownerID {
		return zero, domain.ErrNotFound
	}
	return doc, nil
}

func (c *Collection[D]) decode(data []byte) (D, error) {
	doc := c.newDoc()
	if err := json.Unmarshal(data, doc); err != nil {
		var zero D
		return zero, err
	}
	return doc, nil
}

// Ping reports whether Redis answers.
func (c *Collection[D]) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
