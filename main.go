package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/kafka"
	"checkout-service/logger"
	"checkout-service/routes"
	"checkout-service/services"
	"checkout-service/sns"
	"checkout-service/webhook"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Webhook delivery channel. Without a URL, orders are logged so nothing
	// disappears silently during development.
	var notifier webhook.Notifier
	if cfg.WebhookURL != "" {
		notifier = webhook.NewClient(cfg.WebhookURL, cfg.WebhookTimeout, cfg.WebhookRetries, log)
	} else {
		log.Warn("No webhook URL configured, orders will be logged only")
		notifier = webhook.NewLogNotifier(log)
	}

	// The dispatcher deadline covers all retry attempts for one order.
	deliveryWindow := cfg.WebhookTimeout*time.Duration(cfg.WebhookRetries) + 5*time.Second
	dispatcher := webhook.NewDispatcher(notifier, deliveryWindow, 256, log)

	// Optional Redis-backed submission dedupe.
	var idemStore database.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("Redis connection failed", zap.Error(err))
		}
		idemStore = database.NewIdempotencyRepository(redisClient, cfg.IdempotencyTTL)
		log.Info("Idempotency store enabled", zap.Duration("ttl", cfg.IdempotencyTTL))
	}

	// Optional order.accepted fan-out.
	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	}

	var snsClient sns.Publisher
	if cfg.SNSTopicARN != "" {
		awsCfg, err := sns.LoadAWSConfig(context.Background())
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		snsClient = sns.NewClient(awsCfg)
	}

	var eventProducer services.EventProducer
	if producer != nil {
		eventProducer = producer
	}

	orderService := services.NewOrderService(
		dispatcher, idemStore, eventProducer, snsClient, cfg.SNSTopicARN, log)
	orderController := controllers.NewOrderController(orderService, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterOrderRoutes(router, orderController, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Checkout service is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}

	// Drain queued webhook deliveries before exiting.
	dispatcher.Close()
	if producer != nil {
		_ = producer.Close()
	}
	log.Info("Server shutdown complete")
}
