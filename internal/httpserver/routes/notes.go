package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/handlers"
)

func init() { Register("notes", registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	h := handlers.Notes(d)
	r.Route("/api/notes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
