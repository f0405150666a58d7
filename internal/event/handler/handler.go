// Package handler exposes the event catalog over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ensemble/internal/event/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/httputil"
)

// Service defines the event operations the handler needs.
type Service interface {
	List(ctx context.Context, search string, page, perPage int) ([]models.Event, int, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
}

// Handler wires event endpoints to the event service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an event handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts event endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.HandleList)
	r.Get("/events/{eventID}", h.HandleGet)
}

type listResponse struct {
	Items []models.Event `json:"items"`
	Total int            `json:"total"`
}

// HandleList handles GET /events?search&page&per_page. Pages are zero-based.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page, err := intParam(params.Get("page"), 0)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "page must be an integer"))
		return
	}
	perPage, err := intParam(params.Get("per_page"), 0)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "per_page must be an integer"))
		return
	}

	events, total, err := h.service.List(r.Context(), params.Get("search"), page, perPage)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Items: events, Total: total})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// HandleGet handles GET /events/{eventID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}
