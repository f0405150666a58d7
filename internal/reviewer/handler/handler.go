// Package handler exposes reviewer login over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ensemble/internal/reviewer/service"
	"ensemble/pkg/platform/httputil"
	"ensemble/pkg/requestcontext"
)

// Service defines the reviewer operations the handler needs.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// Handler wires auth endpoints to the reviewer service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[loginRequest](w, r)
	if !ok {
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "reviewer logged in",
		"request_id", requestcontext.RequestID(ctx),
		"reviewer_id", session.Reviewer.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, session)
}
