package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/adapter/handler"
	redislock "ticketcore/internal/adapter/locker/redis"
	"ticketcore/internal/adapter/notifier/rabbitmq"
	"ticketcore/internal/adapter/repository/memory"
	"ticketcore/internal/adapter/repository/postgres"
	"ticketcore/internal/core/ports"
	"ticketcore/internal/core/services"
	"ticketcore/internal/platform/config"
	"ticketcore/internal/platform/database"
	"ticketcore/internal/platform/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(os.Getenv("APP_ENV") != "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var (
		store  ports.Stores
		uow    ports.UnitOfWork
		locker ports.SeatLocker
	)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	log.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	switch cfg.Mode {
	case "memory":
		mem := memory.NewStore()
		store, uow, locker = mem, mem, mem
		log.Info("using in-memory store")
	default:
		db, err := database.NewPostgresDB(database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		}, log)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		defer db.Close()

		repo := postgres.NewRepo(db)
		store, uow = repo, repo
		locker = redislock.NewLocker(redisClient)
	}

	var notifier ports.ChangeNotifier
	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL)
	if err != nil {
		// Notification is best-effort; the core keeps selling without it.
		log.Warn("rabbitmq unavailable, seat change events disabled", zap.Error(err))
	} else {
		notifier = publisher
		defer publisher.Close()
	}

	svcCfg := services.Config{
		HoldTTL:      cfg.HoldTTL,
		RetryHoldTTL: cfg.RetryHoldTTL,
		LockWait:     cfg.LockWait,
	}

	holds, err := services.NewHoldService(cfg.HoldStrategy, store, uow, locker, notifier, redisClient, svcCfg, log)
	if err != nil {
		log.Fatal("hold service init failed", zap.Error(err))
	}
	log.Info("hold coordinator ready", zap.String("strategy", cfg.HoldStrategy))

	purchases := services.NewPurchaseService(store, uow, notifier, redisClient, svcCfg, log)
	payments := services.NewPaymentService(store, uow, notifier, redisClient, svcCfg, log)
	catalog := services.NewCatalogService(store, redisClient, log)
	sweeper := services.NewSweeper(store, uow, notifier, redisClient, cfg.SweepEvery, svcCfg, log)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	mux := http.NewServeMux()
	handler.NewTicketHandler(holds, purchases, payments, catalog, log).Register(mux)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
