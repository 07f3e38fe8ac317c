package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/validation"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// respondError writes a `{detail}` body.
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

// decodeJSON reads the request body into v.
// Malformed or oversized bodies return [shared.ErrInvalidInput].
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return nil
}

// notFoundError carries the collection-specific detail for a missing song.
type notFoundError struct {
	detail string
}

func (e *notFoundError) Error() string { return e.detail }

func (e *notFoundError) Unwrap() error { return shared.ErrSongNotFound }

// handleError maps an error to its status and writes it.
// Unexpected errors are logged with the request id and reported without detail.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *validation.RequestValidationError
		nf   *notFoundError
	)

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, shared.ErrInvalidDirection):
		respondError(w, http.StatusBadRequest, "Invalid direction value")
	case errors.Is(err, shared.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Invalid request body")
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, nf.detail)
	case errors.Is(err, shared.ErrSongNotFound):
		respondError(w, http.StatusNotFound, models.Songs.NotFoundMessage())
	case errors.Is(err, shared.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrServiceUnavailable):
		h.logger.Warn("database unavailable", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		h.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
