package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/latest", h.latest)
	r.Get("/number/{number}", h.byNumber)
	r.Post("/", h.create)
	r.Patch("/{id}/status", h.updateStatus)
}

type createInvoiceRequest struct {
	ClientID  string           `json:"cliente_id"`
	TaxRate   *decimal.Decimal `json:"tipo_iva"`
	IssueDate *time.Time       `json:"fecha_emision"`
	DueDate   *time.Time       `json:"fecha_vencimiento"`
	Lines     []struct {
		Concept   string          `json:"concepto"`
		Quantity  decimal.Decimal `json:"cantidad"`
		UnitPrice decimal.Decimal `json:"precio_unitario"`
	} `json:"lineas"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lines := make([]invoice.LineParams, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = invoice.LineParams{Concept: l.Concept, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		ClientID:  req.ClientID,
		Lines:     lines,
		TaxRate:   req.TaxRate,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
	})
	if err != nil {
		if errors.Is(err, invoice.ErrNoLines) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	encode(w, inv)
}

type updateStatusRequest struct {
	Status invoice.Status `json:"estado"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if invoices == nil {
		invoices = []*invoice.Invoice{}
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, invoices)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, func() (*invoice.Invoice, error) {
		return h.svc.Latest(r.Context())
	})
}

func (h *Handler) byNumber(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, func() (*invoice.Invoice, error) {
		return h.svc.ByNumber(r.Context(), chi.URLParam(r, "number"))
	})
}

func (h *Handler) lookup(w http.ResponseWriter, find func() (*invoice.Invoice, error)) {
	inv, err := find()
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(w, inv)
}

func encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode invoice response")
	}
}
