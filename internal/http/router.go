package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DxMxTx/autonomia/internal/http/agenda"
	"github.com/DxMxTx/autonomia/internal/http/backup"
	"github.com/DxMxTx/autonomia/internal/http/chat"
	"github.com/DxMxTx/autonomia/internal/http/client"
	"github.com/DxMxTx/autonomia/internal/http/downpayment"
	"github.com/DxMxTx/autonomia/internal/http/invoice"
	"github.com/DxMxTx/autonomia/internal/http/profile"
)

func New(
	chatV1 *chat.Handler,
	clientsV1 *client.Handler,
	invoicesV1 *invoice.Handler,
	downPaymentsV1 *downpayment.Handler,
	agendaV1 *agenda.Handler,
	profileV1 *profile.Handler,
	backupV1 *backup.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", chatV1.Routes)

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			clientsV1.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/downpayments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			downPaymentsV1.Routes(r)
		})

		r.Route("/agenda", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			agendaV1.Routes(r)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			profileV1.Routes(r)
		})

		r.Route("/backup", backupV1.Routes)
	})

	return router
}
