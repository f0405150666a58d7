// Package handler exposes the intake wizard over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ensemble/internal/intake/service"
	id "ensemble/pkg/domain"
	"ensemble/pkg/platform/httputil"
	"ensemble/pkg/requestcontext"
)

// Service defines the intake operations the handler needs.
type Service interface {
	StartDraft(ctx context.Context, eventID id.EventID) (*service.DraftView, error)
	GetDraft(ctx context.Context, draftID id.DraftID) (*service.DraftView, error)
	SetFields(ctx context.Context, draftID id.DraftID, values map[string]string) (*service.DraftView, error)
	Next(ctx context.Context, draftID id.DraftID) (*service.DraftView, error)
	Previous(ctx context.Context, draftID id.DraftID) (*service.DraftView, error)
	Reset(ctx context.Context, draftID id.DraftID) (*service.DraftView, error)
	Abandon(ctx context.Context, draftID id.DraftID) error
	Submit(ctx context.Context, draftID id.DraftID) (*service.Receipt, error)
}

// Handler wires intake endpoints to the intake service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intake handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts intake endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{eventID}/drafts", h.HandleStartDraft)
	r.Route("/drafts/{draftID}", func(r chi.Router) {
		r.Get("/", h.HandleGetDraft)
		r.Delete("/", h.HandleAbandon)
		r.Put("/fields", h.HandleSetFields)
		r.Post("/next", h.HandleNext)
		r.Post("/previous", h.HandlePrevious)
		r.Post("/reset", h.HandleReset)
		r.Post("/submit", h.HandleSubmit)
	})
}

// HandleStartDraft handles POST /events/{eventID}/drafts.
func (h *Handler) HandleStartDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.StartDraft(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "draft started",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", eventID,
		"draft_id", view.DraftID,
	)
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleGetDraft handles GET /drafts/{draftID}.
func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.GetDraft(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

// HandleSetFields handles PUT /drafts/{draftID}/fields.
func (h *Handler) HandleSetFields(w http.ResponseWriter, r *http.Request) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[setFieldsRequest](w, r)
	if !ok {
		return
	}

	view, err := h.service.SetFields(r.Context(), draftID, req.Fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleNext handles POST /drafts/{draftID}/next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Next)
}

// HandlePrevious handles POST /drafts/{draftID}/previous.
func (h *Handler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Previous)
}

// HandleReset handles POST /drafts/{draftID}/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Reset)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request,
	op func(context.Context, id.DraftID) (*service.DraftView, error)) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := op(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleAbandon handles DELETE /drafts/{draftID}.
func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Abandon(r.Context(), draftID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit handles POST /drafts/{draftID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draftID, err := id.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.service.Submit(ctx, draftID)
	if err != nil {
		h.logger.InfoContext(ctx, "submission not accepted",
			"request_id", requestcontext.RequestID(ctx),
			"draft_id", draftID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestcontext.RequestID(ctx),
		"draft_id", draftID,
		"registration_id", receipt.RegistrationID,
	)
	httputil.WriteJSON(w, http.StatusCreated, receipt)
}
