// Package handler exposes the review console over HTTP. All routes here are
// expected to sit behind the reviewer auth middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	eventmodels "ensemble/internal/event/models"
	"ensemble/internal/export"
	"ensemble/internal/review/action"
	"ensemble/internal/review/console"
	"ensemble/internal/review/models"
	"ensemble/internal/review/service"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
	"ensemble/pkg/platform/httputil"
	"ensemble/pkg/requestcontext"
)

// Service defines the review operations the handler needs.
type Service interface {
	OpenConsole(ctx context.Context, eventID id.EventID) (*service.ConsoleView, error)
	Query(ctx context.Context, eventID id.EventID, q console.Query) (*service.ConsoleView, error)
	Detail(ctx context.Context, regID id.RegistrationID) (*models.Registration, *action.Action, error)
	OpenReview(ctx context.Context, regID id.RegistrationID) (*action.Action, error)
	ChooseDecision(ctx context.Context, regID id.RegistrationID, proposed models.RegistrationStatus) error
	BackToChoosing(ctx context.Context, regID id.RegistrationID) error
	CloseReview(ctx context.Context, regID id.RegistrationID) error
	Decide(ctx context.Context, eventID id.EventID, regID id.RegistrationID) (*models.Registration, error)
	Export(ctx context.Context, eventID id.EventID) (*eventmodels.Event, []models.Registration, error)
}

// Handler wires review console endpoints to the review service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a review handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts review endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/console", h.HandleOpenConsole)
		r.Get("/registrations", h.HandleQuery)
		r.Get("/registrations/export", h.HandleExport)
		r.Post("/registrations/{registrationID}/decide", h.HandleDecide)
	})
	r.Route("/registrations/{registrationID}", func(r chi.Router) {
		r.Get("/", h.HandleDetail)
		r.Post("/review", h.HandleOpenReview)
		r.Post("/review/choose", h.HandleChoose)
		r.Post("/review/back", h.HandleBack)
		r.Delete("/review", h.HandleCloseReview)
	})
}

type queryResponse struct {
	Search    string `json:"search"`
	Status    string `json:"status"`
	SortKey   string `json:"sort"`
	Direction string `json:"direction"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
}

type consoleResponse struct {
	Event *eventmodels.Event    `json:"event"`
	Query queryResponse         `json:"query"`
	Items []models.Registration `json:"items"`
	Total int                   `json:"total"`
}

func toConsoleResponse(view *service.ConsoleView) consoleResponse {
	return consoleResponse{
		Event: view.Event,
		Query: queryResponse{
			Search:    view.Query.Search,
			Status:    view.Query.Status,
			SortKey:   string(view.Query.SortKey),
			Direction: string(view.Query.Direction),
			Page:      view.Query.Page,
			PerPage:   view.Query.PerPage,
		},
		Items: view.View.Items,
		Total: view.View.Total,
	}
}

type actionResponse struct {
	RegistrationID id.RegistrationID `json:"registration_id"`
	Proposed       string            `json:"proposed,omitempty"`
	Phase          string            `json:"phase"`
	InFlight       bool              `json:"in_flight"`
}

func toActionResponse(a *action.Action) *actionResponse {
	if a == nil {
		return nil
	}
	return &actionResponse{
		RegistrationID: a.Registration,
		Proposed:       string(a.Proposed),
		Phase:          string(a.Phase),
		InFlight:       a.InFlight,
	}
}

// HandleOpenConsole handles GET /events/{eventID}/console.
func (h *Handler) HandleOpenConsole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.OpenConsole(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "console opened",
		"request_id", requestcontext.RequestID(ctx),
		"reviewer_id", requestcontext.ReviewerID(ctx),
		"event_id", eventID,
	)
	httputil.WriteJSON(w, http.StatusOK, toConsoleResponse(view))
}

// HandleQuery handles GET /events/{eventID}/registrations.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Query(r.Context(), eventID, q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConsoleResponse(view))
}

func parseQuery(r *http.Request) (console.Query, error) {
	q := console.DefaultQuery()
	params := r.URL.Query()

	q.Search = params.Get("search")
	if v := params.Get("status"); v != "" {
		q.Status = v
	}
	if v := params.Get("sort"); v != "" {
		q.SortKey = console.SortKey(v)
	}
	if v := params.Get("direction"); v != "" {
		q.Direction = console.Direction(v)
	}
	var err error
	if q.Page, err = intParam(params.Get("page"), q.Page); err != nil {
		return q, dErrors.New(dErrors.CodeBadRequest, "page must be an integer")
	}
	if q.PerPage, err = intParam(params.Get("per_page"), q.PerPage); err != nil {
		return q, dErrors.New(dErrors.CodeBadRequest, "per_page must be an integer")
	}
	return q, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

type detailResponse struct {
	Registration *models.Registration `json:"registration"`
	Action       *actionResponse      `json:"action,omitempty"`
}

// HandleDetail handles GET /registrations/{registrationID}.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, a, err := h.service.Detail(r.Context(), regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detailResponse{
		Registration: reg,
		Action:       toActionResponse(a),
	})
}

// HandleOpenReview handles POST /registrations/{registrationID}/review.
func (h *Handler) HandleOpenReview(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	a, err := h.service.OpenReview(r.Context(), regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActionResponse(a))
}

type chooseRequest struct {
	Decision string `json:"decision"`
}

// HandleChoose handles POST /registrations/{registrationID}/review/choose.
func (h *Handler) HandleChoose(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[chooseRequest](w, r)
	if !ok {
		return
	}
	proposed, err := models.ParseRegistrationStatus(req.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.ChooseDecision(r.Context(), regID, proposed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBack handles POST /registrations/{registrationID}/review/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.BackToChoosing(r.Context(), regID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCloseReview handles DELETE /registrations/{registrationID}/review.
func (h *Handler) HandleCloseReview(w http.ResponseWriter, r *http.Request) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.CloseReview(r.Context(), regID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDecide handles POST /events/{eventID}/registrations/{registrationID}/decide.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.Decide(ctx, eventID, regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "decision committed",
		"request_id", requestcontext.RequestID(ctx),
		"reviewer_id", requestcontext.ReviewerID(ctx),
		"registration_id", regID,
		"status", updated.RegistrationStatus,
	)
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// HandleExport handles GET /events/{eventID}/registrations/export. The
// download reflects the console's current search and status filters and
// ignores pagination.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, regs, err := h.service.Export(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rows, err := export.Project(regs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(event.Name)+`"`)
	if err := export.WriteXLSX(w, rows); err != nil {
		h.logger.ErrorContext(ctx, "export write failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", eventID,
			"error", err,
		)
		return
	}
	h.logger.InfoContext(ctx, "registrations exported",
		"request_id", requestcontext.RequestID(ctx),
		"reviewer_id", requestcontext.ReviewerID(ctx),
		"event_id", eventID,
		"rows", len(rows),
	)
}
