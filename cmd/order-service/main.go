package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/clients"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/jobs"
	"storefront/internal/logger"
	"storefront/internal/services"
	"storefront/pkg/kafka"
	"storefront/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
)

const serviceTokenTTL = time.Minute

// newPublisher connects to the configured event broker. With rabbitmq the
// service also consumes its own queue into the audit log.
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventBroker {
	case "rabbitmq":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, err
		}
		if err := mqClient.ConsumeOrderEvents(events.AuditOrderEvent); err != nil {
			mqClient.Close()
			return nil, err
		}
		return events.NewBrokerPublisher(mqClient), nil
	case "kafka":
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return nil, err
		}
		return events.NewBrokerPublisher(producer), nil
	case "none":
		return events.NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unsupported EVENT_BROKER %q", cfg.EventBroker)
	}
}

// productAuth authenticates calls to the product service, whose stock
// endpoint is guarded when AUTH_ENABLED is set there.
func productAuth(cfg *config.Config) clients.Option {
	if cfg.ProductServiceToken != "" {
		return clients.WithAuthToken(cfg.ProductServiceToken)
	}
	return clients.WithTokenSource(func() (string, error) {
		return services.IssueServiceToken(cfg.JWTSecret, "order-service", serviceTokenTTL)
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.EventBroker).Msg("failed to initialize event publisher")
	}

	orderApp := app.NewOrderApp(cfg, db,
		clients.NewProductClient(cfg.ProductServiceURL, cfg.ClientTimeout, productAuth(cfg)),
		clients.NewPaymentClient(cfg.PaymentServiceURL, cfg.ClientTimeout),
		publisher,
	)

	scheduler, err := jobs.StartOrderReconciler(orderApp.Orders, cfg.OrderReconcileInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start order reconciler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.OrderAppPort).
			Str("broker", cfg.EventBroker).
			Str("product_service", cfg.ProductServiceURL).
			Str("payment_service", cfg.PaymentServiceURL).
			Msg("starting order service")
		if err := orderApp.Fiber.Listen(cfg.OrderAppPort); err != nil {
			log.Fatal().Err(err).Msg("order service failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down order service")

	if err := orderApp.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error stopping order reconciler")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event publisher")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info().Msg("order service stopped")
}
