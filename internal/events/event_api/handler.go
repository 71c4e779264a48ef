package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/events"
	"eventhub/internal/httpapi"
	"eventhub/internal/logger"
)

const malformedBodyDetail = "Invalid JSON format or date format. Expected ISO-8601 format (e.g., 2026-01-26T19:46:49.544Z)"

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, r, h.Logger, &httpapi.MalformedRequestError{Detail: malformedBodyDetail})
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	event, err := h.Service.Create(r.Context(), req.Title, req.StartsAt.UTC(), toUTC(req.EndsAt))
	if err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusCreated, toResponse(event))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, toResponse(event))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	responses := make([]eventResponse, len(list))
	for i, event := range list {
		responses[i] = toResponse(event)
	}
	httpapi.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, r, h.Logger, &httpapi.MalformedRequestError{Detail: malformedBodyDetail})
		return
	}
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	event, err := h.Service.Update(r.Context(), id, events.UpdateInput{
		Title:    req.Title,
		StartsAt: toUTC(req.StartsAt),
		EndsAt:   toUTC(req.EndsAt),
	})
	if err != nil {
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, toResponse(event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Debug("API", fmt.Sprintf("DeleteEvent: %v", err))
		httpapi.WriteError(w, r, h.Logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
