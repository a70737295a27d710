package main

import (
	"fmt"
	"os"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/audit"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/auth"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/config"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/db"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/excel"
	httphandler "github.com/nullbyte2020/TadbeerPlus-sub000/internal/http"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/http/middleware"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/logger"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/notify"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/sequence"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/service"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	clientRepo := repository.NewClientRepository(database)
	workerRepo := repository.NewWorkerRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	reportRepo := repository.NewReportRepository(database)
	auditRepo := repository.NewAuditRepository(database)

	provider := settings.NewViperProvider(cfg.Settings)
	auditLogger := audit.NewLogger(auditRepo, log)

	var notifier notify.Notifier
	if cfg.AMQP.URL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect message broker")
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	} else {
		log.Warn().Msg("AMQP_URL not set, notifications are log-only")
		notifier = notify.NewLogNotifier(log)
	}

	contractService := service.NewContractService(
		database,
		contractRepo,
		clientRepo,
		workerRepo,
		invoiceRepo,
		provider,
		sequence.NewGenerator(),
		notifier,
		auditLogger,
		log,
	)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, reportService, auth.NewRoleOracle(), log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
