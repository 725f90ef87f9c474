package main // Entry point package

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/ticket-marketplace/internal/config"
	"github.com/iliyamo/ticket-marketplace/internal/database"
	"github.com/iliyamo/ticket-marketplace/internal/handler"
	"github.com/iliyamo/ticket-marketplace/internal/middleware"
	"github.com/iliyamo/ticket-marketplace/internal/queue"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
	"github.com/iliyamo/ticket-marketplace/internal/router"
	"github.com/iliyamo/ticket-marketplace/internal/service"
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env wins

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load() // Load environment config, exits on missing keys
	if cfg.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional. A nil client turns the cache and the rate
	// limiter into pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tickets := repository.NewTicketRepo(db)
	listings := repository.NewListingRepo(db)
	requests := repository.NewBuyRequestRepo(db)
	transactions := repository.NewTransactionRepo(db)
	reviews := repository.NewReviewRepo(db)

	publisher := service.NewPublisher(cfg.BrokerURL, log)
	if cfg.BrokerURL != "" {
		go queue.StartSalesConsumer(cfg.BrokerURL, log)
	} else {
		log.Warn("RABBITMQ_URL not set, sale events will not be published")
	}

	h := router.Handlers{
		Users:        handler.NewUserHandler(cfg, users),
		Tickets:      handler.NewTicketHandler(users, tickets, transactions, publisher),
		Listings:     handler.NewListingHandler(users, listings, tickets, requests, publisher),
		Requests:     handler.NewRequestHandler(users, requests, listings),
		Reviews:      handler.NewReviewHandler(users, reviews, transactions),
		Transactions: handler.NewTransactionHandler(transactions),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAPI(e, h, cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
