package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/aurelius/mintbid/internal/adapters/ai"
	"github.com/aurelius/mintbid/internal/adapters/api"
	"github.com/aurelius/mintbid/internal/adapters/cache"
	"github.com/aurelius/mintbid/internal/adapters/database"
	"github.com/aurelius/mintbid/internal/adapters/marketplace"
	"github.com/aurelius/mintbid/internal/adapters/metalsfeed"
	"github.com/aurelius/mintbid/internal/adapters/payments"
	"github.com/aurelius/mintbid/internal/domain/accounts"
	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/catalog"
	"github.com/aurelius/mintbid/internal/domain/consignment"
	"github.com/aurelius/mintbid/internal/domain/integrations"
	"github.com/aurelius/mintbid/internal/domain/metals"
	"github.com/aurelius/mintbid/internal/domain/notifications"
	"github.com/aurelius/mintbid/internal/domain/orders"
	"github.com/aurelius/mintbid/internal/domain/reviews"
	"github.com/aurelius/mintbid/pkg/auth"
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

	// 1. Load JWT signing keys
	privateKeyPath := os.Getenv("AUTH_PRIVATE_KEY_PATH")
	publicKeyPath := os.Getenv("AUTH_PUBLIC_KEY_PATH")
	if privateKeyPath == "" || publicKeyPath == "" {
		logger.Error("AUTH_PRIVATE_KEY_PATH and AUTH_PUBLIC_KEY_PATH must be set")
		os.Exit(1)
	}

	privateKeyPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		logger.Error("Failed to read private key", "path", privateKeyPath, "error", err)
		os.Exit(1)
	}
	publicKeyPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		logger.Error("Failed to read public key", "path", publicKeyPath, "error", err)
		os.Exit(1)
	}

	signer, err := auth.NewSigner(privateKeyPEM, publicKeyPEM, envOrDefault("JWT_ISSUER", "mintbid"))
	if err != nil {
		logger.Error("Failed to create signer", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Postgres Connection Pool
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

	// 3. Connect to RabbitMQ
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

	publisher, err := pkgevents.NewRabbitMQPublisher(amqpConn)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// 4. Connect to Redis (spot price cache)
	redisAddr := envOrDefault("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
		logger.Error("Redis connection failed", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Redis Connected")

	// 5. Initialize Repositories (Infrastructure Layer)
	txManager := pkgdb.NewPostgresTransactionManager(pool, 3*time.Second)
	userRepo := database.NewPostgresUserRepository(pool)
	tokenRepo := database.NewPostgresTokenRepository(pool)
	productRepo := database.NewPostgresProductRepository(pool)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	orderRepo := database.NewPostgresOrderRepository(pool)
	reviewRepo := database.NewPostgresReviewRepository(pool)
	submissionRepo := database.NewPostgresSubmissionRepository(pool)
	sourceRepo := database.NewPostgresSourceRepository(pool)
	metalsRepo := database.NewPostgresMetalsRepository(pool)
	integrationRepo := database.NewPostgresIntegrationRepository(pool)
	notificationRepo := database.NewPostgresNotificationRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	// 6. Outward adapters
	paymentGateway := payments.NewHTTPGateway(
		envOrDefault("PAYMENTS_URL", "http://localhost:9400"),
		os.Getenv("PAYMENTS_API_KEY"),
	)
	metalsFeed := metalsfeed.NewClient(
		envOrDefault("METALS_FEED_URL", "http://localhost:9500"),
		os.Getenv("METALS_FEED_API_KEY"),
	)
	quoteCache := cache.NewRedisQuoteCache(rdb)
	analyzer := ai.NewAnthropicAnalyzer(
		os.Getenv("ANTHROPIC_API_KEY"),
		envOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
	)

	providers := map[string]integrations.ProviderClient{}
	if tokenURL := os.Getenv("MARKETPLACE_TOKEN_URL"); tokenURL != "" {
		providers["ebay"] = marketplace.NewClient(marketplace.Config{
			TokenURL:     tokenURL,
			ListingURL:   os.Getenv("MARKETPLACE_LISTING_URL"),
			ClientID:     os.Getenv("MARKETPLACE_CLIENT_ID"),
			ClientSecret: os.Getenv("MARKETPLACE_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("MARKETPLACE_REDIRECT_URI"),
		})
	}

	houseAccountID, err := uuid.Parse(os.Getenv("HOUSE_ACCOUNT_ID"))
	if err != nil {
		logger.Error("HOUSE_ACCOUNT_ID must be a valid UUID", "error", err)
		os.Exit(1)
	}

	// 7. Initialize Services (Domain Layer)
	accountService := accounts.NewService(userRepo, tokenRepo, signer, txManager)
	catalogService := catalog.NewService(productRepo)
	auctionService := auctions.NewService(txManager, auctionRepo, bidRepo, orderRepo, productRepo, outboxRepo, logger)
	orderService := orders.NewService(orderRepo, productRepo, paymentGateway, houseAccountID)
	reviewService := reviews.NewService(reviewRepo, orderRepo)
	consignmentService := consignment.NewService(submissionRepo, sourceRepo, analyzer, logger)
	metalsService := metals.NewService(quoteCache, metalsFeed, metalsRepo, metals.DefaultTTL, logger)
	integrationService := integrations.NewService(integrationRepo, providers, logger)
	notificationService := notifications.NewService(notificationRepo, txManager)

	// 8. HTTP router
	router := api.NewRouter(api.Handlers{
		Accounts:      api.NewAccountHandler(accountService),
		Auctions:      api.NewAuctionHandler(auctionService),
		Catalog:       api.NewCatalogHandler(catalogService),
		Consignment:   api.NewConsignmentHandler(consignmentService),
		Orders:        api.NewOrderHandler(orderService),
		Reviews:       api.NewReviewHandler(reviewService),
		Metals:        api.NewMetalsHandler(metalsService),
		Integrations:  api.NewIntegrationHandler(integrationService),
		Notifications: api.NewNotificationHandler(notificationService),
	}, signer)

	srv := &http.Server{
		Addr:              envOrDefault("HTTP_ADDR", ":8080"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 9. Outbox relay publishes committed domain events to RabbitMQ
	outboxRelay := pkgevents.NewOutboxRelay(
		outboxRepo,
		publisher,
		txManager,
		10,            // batch size
		1*time.Second, // interval
		pkgevents.DefaultExchange,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting Outbox Relay...")
		return outboxRelay.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("Starting API server", "addr", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("API stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("API stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
