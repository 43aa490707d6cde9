package homepage

import (
	"sort"
	"strings"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

// Entry is one importable bookmark.
type Entry struct {
	Name        string // key in bookmarks.yaml, used in logs
	Title       string
	URL         string
	Description string
	Tags        []string
}

// Fields returns the bookmark create input for e.
func (e Entry) Fields() (domain.Fields, error) {
	values := map[string]any{
		"url":   e.URL,
		"title": e.Title,
		"tags":  e.Tags,
	}
	if e.Description != "" {
		values["description"] = e.Description
	}
	return domain.FieldsFrom(values)
}

// Entries flattens config into import entries, in file order. Entries
// without an href are counted in skipped.
//
// title = abbr, else the bookmark name; tags = [category].
func Entries(config BookmarksConfig) (entries []Entry, skipped int) {
	entries = make([]Entry, 0)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			tags := []string{}
			if c := strings.TrimSpace(categoryName); c != "" {
				tags = append(tags, c)
			}

			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						skipped++
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" {
						skipped++
						continue
					}

					title := strings.TrimSpace(entry.Abbr)
					if title == "" {
						title = strings.TrimSpace(bookmarkName)
					}

					entries = append(entries, Entry{
						Name:        bookmarkName,
						Title:       title,
						URL:         href,
						Description: strings.TrimSpace(entry.Description),
						Tags:        append([]string(nil), tags...),
					})
				}
			}
		}
	}

	return entries, skipped
}

// sortedKeys keeps the mapping deterministic when a YAML map holds more
// than one key.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
