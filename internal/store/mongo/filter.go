package mongo

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// filterDocument translates a domain.Filter into a query document.
// Example: {userId: "u1", $text: {$search: "go"}, tags: {$in: ["a","b"]}}
func filterDocument(f domain.Filter) bson.D {
	doc := bson.D{{Key: "userId", Value: f.OwnerID}}
	if f.HasQuery() {
		doc = append(doc, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: searchTerms(f.Query)}}})
	}
	if f.HasTags() {
		doc = append(doc, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: f.Tags}}})
	}
	return doc
}

// searchTerms reduces q to the words domain.Filter.Match looks at, so
// `-word` exclusions and "quoted phrases" are plain words here too.
func searchTerms(q string) string {
	return strings.Join(domain.Tokenize(q), " ")
}

// scopeDocument addresses a single record of one owner. An id that is not
// an ObjectID cannot exist.
func scopeDocument(ownerID, id string) (bson.D, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "userId", Value: ownerID},
	}, nil
}

// sortNewestFirst orders by creation time; ObjectIDs grow with insertion,
// so ascending _id keeps ties in insertion order.
func sortNewestFirst() bson.D {
	return bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	}
}
