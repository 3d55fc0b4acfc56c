package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/aurelius/mintbid/internal/adapters/ai"
	"github.com/aurelius/mintbid/internal/adapters/cache"
	"github.com/aurelius/mintbid/internal/adapters/database"
	"github.com/aurelius/mintbid/internal/adapters/events"
	"github.com/aurelius/mintbid/internal/adapters/metalsfeed"
	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/metals"
	"github.com/aurelius/mintbid/internal/domain/notifications"
	"github.com/aurelius/mintbid/internal/worker"
	pkgdb "github.com/aurelius/mintbid/pkg/database"
	pkgevents "github.com/aurelius/mintbid/pkg/events"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load environment variables (local overrides .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Postgres Connection Pool
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Error("Unable to parse database config", "error", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("Unable to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if pingErr := pool.Ping(ctx); pingErr != nil {
		logger.Error("Unable to ping database", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Postgres Connected")

	// 2. Connect to RabbitMQ
	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		logger.Error("RABBITMQ_URL is not set")
		os.Exit(1)
	}
	amqpConn, err := amqp.Dial(rabbitURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()
	logger.Info("RabbitMQ Connected")

	// 3. Connect to Redis (spot price cache)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
		logger.Error("Redis connection failed", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Redis Connected")

	// 4. Initialize Repositories
	txManager := pkgdb.NewPostgresTransactionManager(pool, 3*time.Second)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	orderRepo := database.NewPostgresOrderRepository(pool)
	productRepo := database.NewPostgresProductRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)
	metalsRepo := database.NewPostgresMetalsRepository(pool)
	sourceRepo := database.NewPostgresSourceRepository(pool)
	notificationRepo := database.NewPostgresNotificationRepository(pool)

	// 5. Initialize Services
	auctionService := auctions.NewService(txManager, auctionRepo, bidRepo, orderRepo, productRepo, outboxRepo, logger)
	metalsFeed := metalsfeed.NewClient(
		os.Getenv("METALS_FEED_URL"),
		os.Getenv("METALS_FEED_API_KEY"),
	)
	metalsService := metals.NewService(cache.NewRedisQuoteCache(rdb), metalsFeed, metalsRepo, metals.DefaultTTL, logger)
	notificationService := notifications.NewService(notificationRepo, txManager)

	// 6. Scheduled jobs and the notification consumer
	jobs := worker.New(auctionService, metalsService, sourceRepo, ai.NewCompsScraper(), logger)
	consumer := events.NewNotificationConsumer(amqpConn, notificationService, pkgevents.DefaultExchange, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return jobs.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("Starting Notification Consumer...")
		return consumer.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
