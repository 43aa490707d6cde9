package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/handlers"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	h := handlers.Bookmarks(d)
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		// Registered before /{id} so "import" is never taken for an id.
		r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
			Post("/import", handlers.ImportBookmarks(d))

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
