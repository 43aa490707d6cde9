package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store"
)

// Server codes returned when the keys are already indexed under another
// name or options, including a second text index on a collection.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// textFields lists the fields covered by each collection's text index.
var textFields = map[string][]string{
	store.NotesCollection:     {"title", "content"},
	store.BookmarksCollection: {"title", "url"},
}

// EnsureIndexes creates the owner, tag and text indexes used by Find.
// Indexes keep the server's default names (tags_1, title_text_content_text)
// so databases that already carry them are left as they are.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, fields := range textFields {
		indexes := db.Collection(name).Indexes()
		for _, model := range indexModels(fields) {
			if _, err := indexes.CreateOne(ctx, model); err != nil && !indexConflict(err) {
				return fmt.Errorf("failed to create index %v on %s: %w", model.Keys, name, err)
			}
		}
	}
	return nil
}

func indexModels(fields []string) []mongo.IndexModel {
	text := bson.D{}
	for _, f := range fields {
		text = append(text, bson.E{Key: f, Value: "text"})
	}

	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: text},
	}
}

// indexConflict reports an equivalent index created under other options.
func indexConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(codeIndexOptionsConflict) || se.HasErrorCode(codeIndexKeySpecsConflict)
}
