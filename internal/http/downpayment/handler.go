package downpayment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/downpayment"
)

type Handler struct {
	svc *downpayment.Service
}

func NewHandler(svc *downpayment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type createDownPaymentRequest struct {
	ClientID    string          `json:"cliente_id"`
	Amount      decimal.Decimal `json:"monto"`
	Description string          `json:"descripcion"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDownPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.svc.Add(r.Context(), req.ClientID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, downpayment.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(d); err != nil {
		log.Error().Err(err).Msg("failed to encode down payment response")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if payments == nil {
		payments = []*downpayment.DownPayment{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payments); err != nil {
		log.Error().Err(err).Msg("failed to encode down payment list")
	}
}
