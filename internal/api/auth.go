package api

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/songlist/internal/auth"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/validation"
)

// Login exchanges the operator credential for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.handleError(w, r, verr)
		return
	}

	token, err := h.gate.Login(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login rejected", "username", req.Username)
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: auth.TokenType})
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

// Health reports whether the database answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
