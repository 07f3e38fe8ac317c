package api

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/songlist/internal/auth"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/repositories"
	"github.com/go-chi/chi/v5"
)

// Handler serves the catalogue API over a [repositories.Store].
type Handler struct {
	store  *repositories.Store
	gate   *auth.Gate
	logger *log.Logger
}

// NewHandler creates a Handler. A nil logger uses the default charmbracelet logger.
func NewHandler(store *repositories.Store, gate *auth.Gate, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, gate: gate, logger: logger}
}

// Mount registers the routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/login", h.Login)
	r.Get("/health", h.Health)

	r.Get("/songs", h.List(models.Songs))
	r.Get("/todo", h.List(models.Todo))

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Middleware)

		r.Post("/songs/new", h.Create(models.Songs))
		r.Post("/todo/new", h.Create(models.Todo))

		r.Post("/songs/update", h.Update(models.Collections...))
		r.Post("/todo/update", h.Update(models.Todo))

		r.Post("/move", h.Move)

		r.Post("/songs/delete", h.Delete(models.Songs))
		r.Post("/todo/delete", h.Delete(models.Todo))
	})
}
