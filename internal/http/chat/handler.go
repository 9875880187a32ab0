package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/DxMxTx/autonomia/internal/assistant"
)

type Handler struct {
	svc *assistant.Service
}

func NewHandler(svc *assistant.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/greeting", h.greeting)
	r.Post("/", h.send)
}

type sendRequest struct {
	History []assistant.Message `json:"history"`
}

type sendResponse struct {
	Reply       string `json:"reply"`
	DataChanged bool   `json:"dataChanged"`
	Invoice     any    `json:"invoice,omitempty"`
	Event       any    `json:"event,omitempty"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.History) == 0 {
		http.Error(w, "history must contain at least one message", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Handle(r.Context(), req.History)
	if err != nil {
		if errors.Is(err, assistant.ErrBusy) {
			http.Error(w, "a request is already in progress", http.StatusConflict)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := sendResponse{Reply: result.Reply, DataChanged: result.DataChanged}
	if result.Invoice != nil {
		resp.Invoice = result.Invoice
	}
	if result.Event != nil {
		resp.Event = result.Event
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode chat response")
	}
}

func (h *Handler) greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]string{"text": assistant.Greeting}); err != nil {
		log.Error().Err(err).Msg("failed to encode greeting")
	}
}
