package service

import (
	"context"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store"
)

// Notes is the note lifecycle.
type Notes = Resource[*domain.Note]

func NewNotes(s store.Collection[*domain.Note], opts ...Option) *Notes {
	build := func(_ context.Context, ownerID string, in domain.Fields, now time.Time) (*domain.Note, error) {
		return domain.NewNote(ownerID, in, now)
	}
	patch := func(in domain.Fields, now time.Time) (domain.Patch[*domain.Note], error) {
		p, err := domain.NewNotePatch(in, now)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return newResource[*domain.Note](s, build, patch, opts)
}
