package redis

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// KeyPrefix namespaces every key written by this service.
	KeyPrefix = "notesd:"
	// KeyPrefixTitle is the prefix for cached page titles
	KeyPrefixTitle = KeyPrefix + "title:"
)

// DocKey returns the key holding one JSON document.
// Example: notesd:notes:doc:0b7c...
func DocKey(collection, id string) string {
	return KeyPrefix + collection + ":doc:" + id
}

// OwnerKey returns the sorted set of an owner's document ids, scored by
// insertion sequence.
func OwnerKey(collection, ownerID string) string {
	return KeyPrefix + collection + ":owner:" + ownerID
}

// SeqKey returns the insertion counter of a collection.
func SeqKey(collection string) string {
	return KeyPrefix + collection + ":seq"
}

// TitleKey returns the cache key for a page URL.
func TitleKey(url string) string {
	return KeyPrefixTitle + generateURLHash(url)
}

// generateURLHash creates a short stable hash of a URL.
func generateURLHash(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
