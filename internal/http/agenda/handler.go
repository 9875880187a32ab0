package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/DxMxTx/autonomia/internal/agenda"
)

type Handler struct {
	svc *agenda.Service
}

func NewHandler(svc *agenda.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type createEventRequest struct {
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Start       time.Time `json:"fecha_inicio"`
	End         time.Time `json:"fecha_fin"`
	ClientID    *string   `json:"cliente_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Create(r.Context(), agenda.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		ClientID:    req.ClientID,
	})
	if err != nil {
		if errors.Is(err, agenda.ErrMissingTitle) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(e); err != nil {
		log.Error().Err(err).Msg("failed to encode agenda event response")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []*agenda.Event{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(events); err != nil {
		log.Error().Err(err).Msg("failed to encode agenda event list")
	}
}
