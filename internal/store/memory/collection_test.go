package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
)

func newNote(owner, title string, createdAt time.Time, tags ...string) *domain.Note {
	return &domain.Note{
		Record: domain.Record{
			OwnerID:   owner,
			Tags:      tags,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		Title:   title,
		Content: "content",
	}
}

func TestNewCollection(t *testing.T) {
	c := NewCollection[*domain.Note]()
	if c == nil {
		t.Fatal("NewCollection() returned nil")
	}
	if c.Count() != 0 {
		t.Errorf("NewCollection() should start empty, got %v", c.Count())
	}
}

func TestInsertAssignsUniqueIDs(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		stored, err := c.Insert(ctx, newNote("u", "t", time.Now()))
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if stored.ID == "" || !c.ValidID(stored.ID) {
			t.Fatalf("Insert() assigned invalid id %q", stored.ID)
		}
		if seen[stored.ID] {
			t.Fatalf("Insert() reused id %q", stored.ID)
		}
		seen[stored.ID] = true
	}
}

func TestInsertDoesNotAliasCaller(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()

	doc := newNote("u", "original", time.Now(), "a")
	stored, _ := c.Insert(ctx, doc)
	doc.Title = "mutated"
	doc.Tags[0] = "mutated"

	got, err := c.FindOne(ctx, "u", stored.ID)
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if got.Title != "original" || got.Tags[0] != "a" {
		t.Errorf("stored document changed through caller pointer: %+v", got)
	}
}

func TestFindOrderAndScope(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, _ = c.Insert(ctx, newNote("u", "old", base))
	_, _ = c.Insert(ctx, newNote("u", "new", base.Add(time.Hour)))
	_, _ = c.Insert(ctx, newNote("u", "tie-1", base))
	_, _ = c.Insert(ctx, newNote("other", "foreign", base.Add(2*time.Hour)))

	docs, err := c.Find(ctx, domain.BuildFilter("u", "", ""))
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	want := []string{"new", "old", "tie-1"}
	if len(docs) != len(want) {
		t.Fatalf("Find() returned %d docs, want %d", len(docs), len(want))
	}
	for i, d := range docs {
		if d.Title != want[i] {
			t.Errorf("Find()[%d] = %q, want %q", i, d.Title, want[i])
		}
	}
}

func TestFindEmptyIsNotNil(t *testing.T) {
	c := NewCollection[*domain.Bookmark]()
	docs, err := c.Find(context.Background(), domain.BuildFilter("nobody", "", ""))
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("Find() = %#v, want empty non-nil slice", docs)
	}
}

func TestOwnerScoping(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()
	stored, _ := c.Insert(ctx, newNote("alice", "secret", time.Now()))

	if _, err := c.FindOne(ctx, "bob", stored.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindOne() by foreign owner error = %v, want ErrNotFound", err)
	}

	patch, _ := domain.NewNotePatch(domain.Fields{}, time.Now())
	if _, err := c.UpdateOne(ctx, "bob", stored.ID, patch); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateOne() by foreign owner error = %v, want ErrNotFound", err)
	}
	if err := c.DeleteOne(ctx, "bob", stored.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteOne() by foreign owner error = %v, want ErrNotFound", err)
	}
	if c.Count() != 1 {
		t.Errorf("foreign delete removed the record")
	}
}

func TestDeleteTwice(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()
	stored, _ := c.Insert(ctx, newNote("u", "t", time.Now()))

	if err := c.DeleteOne(ctx, "u", stored.ID); err != nil {
		t.Fatalf("DeleteOne() error = %v", err)
	}
	if err := c.DeleteOne(ctx, "u", stored.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteOne() error = %v, want ErrNotFound", err)
	}
	docs, _ := c.Find(ctx, domain.BuildFilter("u", "", ""))
	if len(docs) != 0 {
		t.Errorf("Find() after delete returned %d docs", len(docs))
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCollection[*domain.Note]()
	ctx := context.Background()
	stored, _ := c.Insert(ctx, newNote("u", "t", time.Now()))

	var wg sync.WaitGroup

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Find(ctx, domain.BuildFilter("u", "", ""))
		}()
	}

	// Concurrent writers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			patch, _ := domain.NewNotePatch(domain.Fields{"isFavorite": []byte("true")}, time.Now())
			_, _ = c.UpdateOne(ctx, "u", stored.ID, patch)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Insert(ctx, newNote("u", "x", time.Now()))
		}()
	}

	wg.Wait()

	if c.Count() != 101 {
		t.Errorf("Count() after concurrent inserts = %v, want 101", c.Count())
	}
	got, _ := c.FindOne(ctx, "u", stored.ID)
	if !got.IsFavorite {
		t.Error("concurrent UpdateOne() was lost")
	}
}
