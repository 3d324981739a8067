package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/comanda/comanda/internal/api"
	v1 "github.com/comanda/comanda/internal/api/v1"
	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/email"
	"github.com/comanda/comanda/internal/gateway"
	"github.com/comanda/comanda/internal/httpclient"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	pubsubmemory "github.com/comanda/comanda/internal/pubsub/memory"
	"github.com/comanda/comanda/internal/repository"
	"github.com/comanda/comanda/internal/security"
	"github.com/comanda/comanda/internal/sentry"
	"github.com/comanda/comanda/internal/service"
	"github.com/comanda/comanda/internal/validator"
	"github.com/comanda/comanda/internal/webhook"
	webhookhandler "github.com/comanda/comanda/internal/webhook/handler"
	"github.com/comanda/comanda/internal/webhook/publisher"
)

func init() {
	// All timestamps are stored and compared in UTC
	time.Local = time.UTC
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(logger.Config{Level: cfg.Logging.Level})
	if err != nil {
		panic(err)
	}

	validator.NewValidator()

	if cfg.Deployment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sentryService := sentry.NewSentryService(cfg, log)
	if err := sentryService.Start(); err != nil {
		log.Errorw("failed to start sentry", "error", err)
	}
	defer sentryService.Stop()

	db, err := postgres.NewClient(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	vault, err := security.NewVault(cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize credential vault", "error", err)
	}

	repos := repository.NewRepositories(db, log)
	gatewayClient := gateway.NewClient(cfg, httpclient.NewDefaultClient(), log)

	pubSub := pubsubmemory.NewPubSub(log)
	eventPublisher := publisher.NewPublisher(pubSub, cfg, log)

	emailSender := email.NewSender(cfg, log)
	eventHandler := webhookhandler.NewHandler(pubSub, cfg, emailSender, log)
	if err := eventHandler.Start(ctx); err != nil {
		log.Fatalw("failed to start event handler", "error", err)
	}

	params := service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		Vault:            vault,
		Gateway:          gatewayClient,
		Sentry:           sentryService,
		EventPublisher:   eventPublisher,
		CredentialRepo:   repos.Credential,
		WebhookEventRepo: repos.WebhookEvent,
		CheckoutRepo:     repos.Checkout,
		OrderRepo:        repos.Order,
	}

	transitionService := service.NewTransitionService(params)
	orderService := service.NewOrderService(params, transitionService)
	checkoutService := service.NewCheckoutService(params)
	credentialService := service.NewCredentialService(params)
	ledgerService := service.NewEventLedgerService(params)
	resolverService := service.NewCredentialResolverService(params)
	verifier := webhook.NewSignatureVerifier(cfg, log)
	reconciler := service.NewWebhookReconcilerService(params, verifier, ledgerService, resolverService, transitionService)

	router := api.NewRouter(api.Handlers{
		Health:     v1.NewHealthHandler(),
		Order:      v1.NewOrderHandler(orderService, log),
		Checkout:   v1.NewCheckoutHandler(checkoutService, log),
		Credential: v1.NewCredentialHandler(credentialService, log),
		Webhook:    v1.NewWebhookHandler(reconciler, log),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Infow("starting server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	if err := eventPublisher.Close(); err != nil {
		log.Errorw("failed to close event publisher", "error", err)
	}
	cancel()
}
