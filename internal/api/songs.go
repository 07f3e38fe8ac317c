package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
)

// List returns every song in collection c.
func (h *Handler) List(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var songs []models.Song

		err := h.store.WithConn(r.Context(), func(conn *sql.Conn) error {
			var err error
			songs, err = h.store.Songs(conn, c).List(r.Context())
			return err
		})
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, songs)
	}
}

// Create validates a full payload and stores it in collection c under a fresh id.
func (h *Handler) Create(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.SongInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.handleError(w, r, err)
			return
		}
		if err := in.Validate(); err != nil {
			h.handleError(w, r, err)
			return
		}

		song := in.Song(shared.GenerateID())

		err := h.store.WithConn(r.Context(), func(conn *sql.Conn) error {
			return h.store.Songs(conn, c).Insert(r.Context(), song)
		})
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		h.logger.Debug("song created", "collection", c, "id", song.ID)
		respondJSON(w, http.StatusOK, song)
	}
}

// Update applies a partial payload to the first collection in lookup that holds the id.
func (h *Handler) Update(lookup ...models.Collection) http.HandlerFunc {
	notFound := &notFoundError{detail: lookup[0].NotFoundMessage()}

	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.SongPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			h.handleError(w, r, err)
			return
		}
		if err := patch.Validate(); err != nil {
			h.handleError(w, r, err)
			return
		}
		if !shared.ValidID(patch.ID) {
			h.handleError(w, r, notFound)
			return
		}

		var (
			song  models.Song
			found bool
		)

		err := h.store.WithConn(r.Context(), func(conn *sql.Conn) error {
			for _, c := range lookup {
				repo := h.store.Songs(conn, c)

				current, err := repo.Get(r.Context(), patch.ID)
				if errors.Is(err, shared.ErrSongNotFound) {
					continue
				}
				if err != nil {
					return err
				}

				patch.Apply(&current)
				if err := repo.Update(r.Context(), current); err != nil {
					return err
				}

				song, found = current, true
				return nil
			}
			return nil
		})
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if !found {
			h.handleError(w, r, notFound)
			return
		}

		respondJSON(w, http.StatusOK, song)
	}
}
