package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/validation"
)

// Move copies each id into the target collection and then deletes it from the source.
// Ids missing from the source are reported in request order; the others are still moved.
// The copy and delete are separate statements, so a failure between them can leave the
// id in both collections.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req models.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.handleError(w, r, verr)
		return
	}

	var notFound []string

	err = h.store.WithConn(r.Context(), func(conn *sql.Conn) error {
		source := h.store.Songs(conn, direction.Source())
		target := h.store.Songs(conn, direction.Target())

		for _, id := range req.IDs {
			if !shared.ValidID(id) {
				notFound = append(notFound, id)
				continue
			}

			song, err := source.Get(r.Context(), id)
			if errors.Is(err, shared.ErrSongNotFound) {
				notFound = append(notFound, id)
				continue
			}
			if err != nil {
				return err
			}

			if err := target.Upsert(r.Context(), song); err != nil {
				return err
			}
			if err := source.Delete(r.Context(), id); err != nil && !errors.Is(err, shared.ErrSongNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result := models.NewBulkResult(notFound)
	h.logger.Info("songs moved",
		"direction", direction,
		"requested", len(req.IDs),
		"not_found", len(result.NotFound),
	)
	respondJSON(w, http.StatusOK, result)
}

// Delete removes each id from collection c, reporting the ids that were not present.
func (h *Handler) Delete(c models.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.DeleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.handleError(w, r, err)
			return
		}
		if verr := validation.ValidateStruct(&req); verr != nil {
			h.handleError(w, r, verr)
			return
		}

		var notFound []string

		err := h.store.WithConn(r.Context(), func(conn *sql.Conn) error {
			repo := h.store.Songs(conn, c)

			for _, id := range req.IDs {
				if !shared.ValidID(id) {
					notFound = append(notFound, id)
					continue
				}

				exists, err := repo.Exists(r.Context(), id)
				if err != nil {
					return err
				}
				if !exists {
					notFound = append(notFound, id)
					continue
				}

				if err := repo.Delete(r.Context(), id); err != nil && !errors.Is(err, shared.ErrSongNotFound) {
					return err
				}
			}
			return nil
		})
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		result := models.NewBulkResult(notFound)
		h.logger.Info("songs deleted",
			"collection", c,
			"requested", len(req.IDs),
			"not_found", len(result.NotFound),
		)
		respondJSON(w, http.StatusOK, result)
	}
}
