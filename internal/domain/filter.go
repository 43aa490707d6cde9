package domain

import (
	"slices"
	"strings"
	"unicode"
)

// Filter selects the records a list request should return.
// Terms are ANDed; an empty Query or Tags drops that term.
type Filter struct {
	// OwnerID is always an exact-match term.
	OwnerID string

	// Query is the trimmed free-text search, matched word by word,
	// case-insensitively, against the record's SearchFields.
	Query string

	// Tags requires at least one shared tag (OR across entries).
	Tags []string
}

// BuildFilter turns the raw `q` and `tags` query parameters into a Filter.
// Examples:
//   - ("u1", "", "")          -> owner scope only
//   - ("u1", "go", "a, b,,")  -> owner + text("go") + tags in [a b]
func BuildFilter(ownerID, query, tags string) Filter {
	return Filter{
		OwnerID: ownerID,
		Query:   strings.TrimSpace(query),
		Tags:    ParseTags(tags),
	}
}

// ParseTags splits a comma separated list, trims each entry and drops
// empty and repeated ones. Returns nil for an empty list.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	tags := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(tags, part) {
			continue
		}
		tags = append(tags, part)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func (f Filter) HasQuery() bool { return f.Query != "" }

func (f Filter) HasTags() bool { return len(f.Tags) > 0 }

// Match evaluates the filter against a record in-process. Stores without a
// native text index use it; the Mongo store translates the Filter instead.
func (f Filter) Match(doc Searchable) bool {
	meta := doc.Meta()
	if meta.OwnerID != f.OwnerID {
		return false
	}
	if f.HasTags() && !sharesTag(meta.Tags, f.Tags) {
		return false
	}
	if f.HasQuery() && !matchText(Tokenize(f.Query), doc.SearchFields()) {
		return false
	}
	return true
}

func sharesTag(have, want []string) bool {
	for _, t := range have {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}

// matchText reports whether any query word appears as a word of any field.
func matchText(queryWords []string, fields []string) bool {
	if len(queryWords) == 0 {
		return false
	}
	words := make(map[string]struct{})
	for _, field := range fields {
		for _, w := range Tokenize(field) {
			words[w] = struct{}{}
		}
	}
	for _, q := range queryWords {
		if _, ok := words[q]; ok {
			return true
		}
	}
	return false
}

// Tokenize lowercases s and splits it into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SortNewestFirst orders docs by CreatedAt descending. The sort is stable,
// so records created at the same instant keep their incoming order.
func SortNewestFirst[D Searchable](docs []D) {
	slices.SortStableFunc(docs, func(a, b D) int {
		return b.Meta().CreatedAt.Compare(a.Meta().CreatedAt)
	})
}
