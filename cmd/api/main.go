package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/DxMxTx/autonomia/internal/agenda"
	agendaStore "github.com/DxMxTx/autonomia/internal/agenda/store"
	"github.com/DxMxTx/autonomia/internal/assistant"
	"github.com/DxMxTx/autonomia/internal/backup"
	"github.com/DxMxTx/autonomia/internal/client"
	clientStore "github.com/DxMxTx/autonomia/internal/client/store"
	"github.com/DxMxTx/autonomia/internal/config"
	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	downPaymentStore "github.com/DxMxTx/autonomia/internal/downpayment/store"
	autonomiaHttp "github.com/DxMxTx/autonomia/internal/http"
	agendaHandler "github.com/DxMxTx/autonomia/internal/http/agenda"
	backupHandler "github.com/DxMxTx/autonomia/internal/http/backup"
	chatHandler "github.com/DxMxTx/autonomia/internal/http/chat"
	clientHandler "github.com/DxMxTx/autonomia/internal/http/client"
	downPaymentHandler "github.com/DxMxTx/autonomia/internal/http/downpayment"
	invoiceHandler "github.com/DxMxTx/autonomia/internal/http/invoice"
	profileHandler "github.com/DxMxTx/autonomia/internal/http/profile"
	"github.com/DxMxTx/autonomia/internal/invoice"
	invoiceStore "github.com/DxMxTx/autonomia/internal/invoice/store"
	"github.com/DxMxTx/autonomia/internal/logger"
	"github.com/DxMxTx/autonomia/internal/profile"
	profileStore "github.com/DxMxTx/autonomia/internal/profile/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("failed to open database")
	}
	defer db.Close()

	var (
		clientService      = client.NewService(clientStore.New(db))
		invoiceService     = invoice.NewService(invoiceStore.New(db))
		downPaymentService = downpayment.NewService(downPaymentStore.New(db))
		agendaService      = agenda.NewService(agendaStore.New(db))
		profileService     = profile.NewService(profileStore.New(db))
		backupService      = backup.NewService(db)
	)

	interpreter := assistant.NewOpenAIInterpreter(
		openai.NewClient(cfg.OpenAI.APIKey),
		cfg.OpenAI.Model,
		cfg.OpenAI.Timeout,
	)

	dispatcher := assistant.NewDispatcher(clientService, invoiceService, downPaymentService, agendaService)
	chatService := assistant.NewService(
		interpreter, dispatcher,
		clientService, invoiceService, agendaService, downPaymentService, profileService,
	)

	var (
		chatH        = chatHandler.NewHandler(chatService)
		clientH      = clientHandler.NewHandler(clientService)
		invoiceH     = invoiceHandler.NewHandler(invoiceService)
		downPaymentH = downPaymentHandler.NewHandler(downPaymentService)
		agendaH      = agendaHandler.NewHandler(agendaService)
		profileH     = profileHandler.NewHandler(profileService)
		backupH      = backupHandler.NewHandler(backupService)
	)

	router := autonomiaHttp.New(chatH, clientH, invoiceH, downPaymentH, agendaH, profileH, backupH)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info().Str("addr", addr).Str("db", cfg.DB.Path).Msg("starting server")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
