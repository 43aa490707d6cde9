package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
)

// defaultMaxBodyBytes applies when deps.MaxBodyBytes is unset (1 MiB).
const defaultMaxBodyBytes = 1 << 20

// resourceService is the lifecycle both notes and bookmarks expose.
type resourceService[D any] interface {
	Create(ctx context.Context, ownerID string, in domain.Fields) (D, error)
	List(ctx context.Context, ownerID, query, tags string) ([]D, error)
	Get(ctx context.Context, ownerID, id string) (D, error)
	Update(ctx context.Context, ownerID, id string, in domain.Fields) (D, error)
	Delete(ctx context.Context, ownerID, id string) error
	ValidID(id string) bool
}

// messages holds the user-facing texts of one resource kind.
type messages struct {
	created, listed, retrieved, updated, deleted string
	notFound, invalidID                          string
}

func messagesFor(singular, plural string) messages {
	return messages{
		created:   singular + " created successfully",
		listed:    plural + " retrieved successfully",
		retrieved: singular + " retrieved successfully",
		updated:   singular + " updated successfully",
		deleted:   singular + " deleted successfully",
		notFound:  singular + " not found",
		invalidID: "Invalid " + strings.ToLower(singular) + " ID",
	}
}

// ResourceHandlers serves the five operations of one resource under
// /api/<resource>.
type ResourceHandlers struct {
	Create http.HandlerFunc
	List   http.HandlerFunc
	Get    http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}

// Notes returns the handlers for /api/notes.
func Notes(d deps.Deps) ResourceHandlers {
	return newResourceHandlers[*domain.Note](d.Notes, messagesFor("Note", "Notes"), d)
}

// Bookmarks returns the handlers for /api/bookmarks.
func Bookmarks(d deps.Deps) ResourceHandlers {
	return newResourceHandlers[*domain.Bookmark](d.Bookmarks, messagesFor("Bookmark", "Bookmarks"), d)
}

func newResourceHandlers[D any](svc resourceService[D], m messages, d deps.Deps) ResourceHandlers {
	maxBody := d.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	log := d.Logger

	return ResourceHandlers{
		Create: func(w http.ResponseWriter, r *http.Request) {
			in, ok := decodeFields(w, r, maxBody)
			if !ok {
				return
			}
			doc, err := svc.Create(r.Context(), auth.OwnerFrom(r.Context()), in)
			if err != nil {
				writeServiceError(w, log, m.notFound, err)
				return
			}
			writeJSON(w, http.StatusCreated, dataResponse{Message: m.created, Data: doc})
		},

		List: func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			docs, err := svc.List(r.Context(), auth.OwnerFrom(r.Context()), q.Get("q"), q.Get("tags"))
			if err != nil {
				writeServiceError(w, log, m.notFound, err)
				return
			}
			writeJSON(w, http.StatusOK, dataResponse{Message: m.listed, Data: docs})
		},

		Get: func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, svc, m)
			if !ok {
				return
			}
			doc, err := svc.Get(r.Context(), auth.OwnerFrom(r.Context()), id)
			if err != nil {
				writeServiceError(w, log, m.notFound, err)
				return
			}
			writeJSON(w, http.StatusOK, dataResponse{Message: m.retrieved, Data: doc})
		},

		Update: func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, svc, m)
			if !ok {
				return
			}
			in, ok := decodeFields(w, r, maxBody)
			if !ok {
				return
			}
			doc, err := svc.Update(r.Context(), auth.OwnerFrom(r.Context()), id, in)
			if err != nil {
				writeServiceError(w, log, m.notFound, err)
				return
			}
			writeJSON(w, http.StatusOK, dataResponse{Message: m.updated, Data: doc})
		},

		Delete: func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r, svc, m)
			if !ok {
				return
			}
			if err := svc.Delete(r.Context(), auth.OwnerFrom(r.Context()), id); err != nil {
				writeServiceError(w, log, m.notFound, err)
				return
			}
			writeJSON(w, http.StatusOK, messageResponse{Message: m.deleted})
		},
	}
}

// pathID reads {id} and rejects ids the store could never have assigned.
func pathID[D any](w http.ResponseWriter, r *http.Request, svc resourceService[D], m messages) (string, bool) {
	id := chi.URLParam(r, "id")
	if !svc.ValidID(id) {
		writeError(w, http.StatusBadRequest, m.invalidID)
		return "", false
	}
	return id, true
}

// decodeFields reads a JSON object body. An empty body counts as {}.
func decodeFields(w http.ResponseWriter, r *http.Request, maxBody int64) (domain.Fields, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooBig)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}

	in := domain.Fields{}
	if len(bytes.TrimSpace(body)) == 0 {
		return in, true
	}
	if err := json.Unmarshal(body, &in); err != nil || in == nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return in, true
}

