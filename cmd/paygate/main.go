package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rookgm/paygate/config"
	"github.com/rookgm/paygate/internal/cashfree"
	handler "github.com/rookgm/paygate/internal/handler/http"
	"github.com/rookgm/paygate/internal/logger"
	"github.com/rookgm/paygate/internal/middleware"
	"github.com/rookgm/paygate/internal/repository"
	"github.com/rookgm/paygate/internal/repository/postgres"
	"github.com/rookgm/paygate/internal/service"
	"go.uber.org/zap"
)

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	// dependency injection
	appRepo := repository.NewApplicationRepository(db)
	gateway := cashfree.NewClient(cashfree.BaseURLForEnv(cfg.CashfreeEnv), cfg.CashfreeAppID, cfg.CashfreeSecretKey)
	paymentService := service.NewPaymentService(appRepo, gateway, cfg.ReturnURL)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := chi.NewRouter()

	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logging(logger.Log))
	router.Use(middleware.Cors)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Post("/api/payment/create", paymentHandler.CreatePayment())
	router.Post("/api/payment/verify", paymentHandler.VerifyPayment())

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
