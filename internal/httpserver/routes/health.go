package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/handlers"
)

func init() { Register("health", registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/api/health", handlers.Health(d))
}
