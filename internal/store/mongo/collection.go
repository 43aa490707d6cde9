package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// Collection stores one resource kind in a MongoDB collection.
//
// `_id` is a real ObjectID on disk, as written by earlier deployments, and
// its hex form in domain.Record.ID.
type Collection[D domain.Document[D]] struct {
	coll   *mongo.Collection
	newDoc func() D
}

// NewCollection wraps the named collection of db. newDoc must return an
// empty, non-nil document to decode into.
func NewCollection[D domain.Document[D]](db *mongo.Database, name string, newDoc func() D) *Collection[D] {
	return &Collection[D]{
		coll:   db.Collection(name, options.Collection().SetBSONOptions(bsonOptions())),
		newDoc: newDoc,
	}
}

// bsonOptions decodes ObjectIDs into string fields as hex.
func bsonOptions() *options.BSONOptions {
	return &options.BSONOptions{ObjectIDAsHexString: true}
}

// Insert leaves `_id` empty so the driver generates the ObjectID.
func (c *Collection[D]) Insert(ctx context.Context, doc D) (D, error) {
	var zero D
	stored := doc.Clone()
	stored.Meta().ID = ""

	res, err := c.coll.InsertOne(ctx, stored)
	if err != nil {
		return zero, fmt.Errorf("failed to insert into %s: %w", c.coll.Name(), err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return zero, fmt.Errorf("unexpected %T id from %s", res.InsertedID, c.coll.Name())
	}
	stored.Meta().ID = oid.Hex()
	return stored, nil
}

func (c *Collection[D]) Find(ctx context.Context, f domain.Filter) ([]D, error) {
	opts := options.Find().SetSort(sortNewestFirst())

	cursor, err := c.coll.Find(ctx, filterDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}

	docs := make([]D, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.coll.Name(), err)
	}
	for _, doc := range docs {
		normalize(doc)
	}
	return docs, nil
}

func (c *Collection[D]) FindOne(ctx context.Context, ownerID, id string) (D, error) {
	var zero D
	scope, err := scopeDocument(ownerID, id)
	if err != nil {
		return zero, err
	}

	doc := c.newDoc()
	if err := c.coll.FindOne(ctx, scope).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("failed to get from %s: %w", c.coll.Name(), err)
	}
	normalize(doc)
	return doc, nil
}

// UpdateOne runs a single FindOneAndUpdate, which is atomic per document.
func (c *Collection[D]) UpdateOne(ctx context.Context, ownerID, id string, p domain.Patch[D]) (D, error) {
	var zero D
	scope, err := scopeDocument(ownerID, id)
	if err != nil {
		return zero, err
	}

	set := bson.D{}
	for field, value := range p.Changes() {
		set = append(set, bson.E{Key: field, Value: value})
	}
	update := bson.D{{Key: "$set", Value: set}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	doc := c.newDoc()
	if err := c.coll.FindOneAndUpdate(ctx, scope, update, opts).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("failed to update %s: %w", c.coll.Name(), err)
	}
	normalize(doc)
	return doc, nil
}

func (c *Collection[D]) DeleteOne(ctx context.Context, ownerID, id string) error {
	scope, err := scopeDocument(ownerID, id)
	if err != nil {
		return err
	}

	res, err := c.coll.DeleteOne(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ValidID accepts 24-character ObjectID hex strings.
func (c *Collection[D]) ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// normalize fills fields that older documents may lack.
func normalize[D domain.Document[D]](doc D) {
	if m := doc.Meta(); m.Tags == nil {
		m.Tags = []string{}
	}
}

// Ping reports whether the primary answers.
func (c *Collection[D]) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, readpref.Primary())
}
