package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/hidecraft/storefront-webhooks/internal/api"
	v1 "github.com/hidecraft/storefront-webhooks/internal/api/v1"
	"github.com/hidecraft/storefront-webhooks/internal/config"
	"github.com/hidecraft/storefront-webhooks/internal/domain/notification"
	"github.com/hidecraft/storefront-webhooks/internal/httpclient"
	"github.com/hidecraft/storefront-webhooks/internal/integration/shopify"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
	"github.com/hidecraft/storefront-webhooks/internal/notify/telegram"
	"github.com/hidecraft/storefront-webhooks/internal/postgres"
	"github.com/hidecraft/storefront-webhooks/internal/repository"
	"github.com/hidecraft/storefront-webhooks/internal/sentry"
	"github.com/hidecraft/storefront-webhooks/internal/service"
	"github.com/hidecraft/storefront-webhooks/internal/types"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Store
			provideNotificationRepository,

			// Integrations
			shopify.NewWebhookVerifier,
			shopify.NewClient,
			telegram.NewClient,

			// Services
			service.NewOrderNotificationService,
			service.NewPaymentConfirmationService,

			// Handlers
			v1.NewHealthHandler,
			v1.NewWebhookHandler,
			provideHandlers,

			// Router
			api.NewRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	health *v1.HealthHandler,
	webhook *v1.WebhookHandler,
) api.Handlers {
	return api.Handlers{
		Health:  health,
		Webhook: webhook,
	}
}

// provideNotificationRepository opens the throttle store when it is enabled.
// A nil repository is a valid configuration: the cooldown then lives only in
// process memory.
func provideNotificationRepository(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	log *logger.Logger,
) (notification.Repository, error) {
	if !cfg.Notification.ThrottleStore {
		log.Warnw("notification throttle store disabled, cooldown is in-process only")
		return nil, nil
	}

	db, err := postgres.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return repository.NewNotificationRepository(db, log), nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
