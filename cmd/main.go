package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillswap/backend/internal/admin"
	"skillswap/backend/internal/ads"
	"skillswap/backend/internal/api/handler"
	"skillswap/backend/internal/auth"
	"skillswap/backend/internal/chat"
	"skillswap/backend/internal/chathub"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/gamification"
	"skillswap/backend/internal/localization"
	"skillswap/backend/internal/logger"
	"skillswap/backend/internal/storage"
	"skillswap/backend/internal/telegram"
	"skillswap/backend/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.Debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)

	// Перевірка з'єднання Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Database and Redis connections established.")
	return db, rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	log.WithField("instance", cfg.InstanceID).Printf("Starting %s...", cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	store := storage.NewStorageService(db, rdb)
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	localizer, err := localization.NewLocalizer(cfg.LocalesDir)
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	// 2. Chat registry, relay і fan-out між інстансами
	registry := chathub.NewRegistry()
	relay := chathub.NewRelay(registry)
	fanout := chathub.NewRedisFanout(rdb, cfg.InstanceID)
	relay.SetPublisher(fanout)
	go fanout.Listen(ctx, relay)

	// 3. Telegram
	bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	var sender telegram.Sender
	if bot != nil {
		sender = bot
	}
	notifier := telegram.NewNotifier(sender, store, localizer, cfg.TelegramBotUsername)
	if bot != nil {
		go telegram.NewBotService(bot, telegram.NewCommandHandler(bot, localizer)).Run(ctx)
	}

	// 4. Сервіси
	gamSvc := gamification.NewService(store, notifier)
	if err := gamSvc.SeedBadges(ctx); err != nil {
		log.Fatalf("Failed to seed badges: %v", err)
	}

	sms, err := auth.NewSMSProvider(cfg.SMSProvider, cfg.SMSAPIKey)
	if err != nil {
		log.Fatalf("Failed to configure SMS provider: %v", err)
	}
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.AccessTokenExpire, cfg.RefreshTokenExpire)
	authSvc := auth.NewService(store, tokens, sms, auth.Options{
		CodeExpiry:   cfg.CodeExpiry,
		RequestLimit: cfg.CodeRequestLimit,
		Window:       cfg.CodeRequestWindow,
		Debug:        cfg.Debug,
	}, gamSvc)

	dealSvc := deal.NewService(store, relay, gamSvc, notifier)

	h := &handler.Handler{
		Auth:          authSvc,
		Users:         users.NewService(store),
		Ads:           ads.NewService(store),
		Chats:         chat.NewService(store, relay, registry, notifier),
		Deals:         dealSvc,
		Gamification:  gamSvc,
		Admin:         admin.NewService(store, dealSvc, notifier),
		Telegram:      notifier,
		Relay:         relay,
		SecureCookies: !cfg.Debug,
	}

	// 5. Налаштування Gin та роутингу
	r, err := handler.NewRouter(h, cfg.AllowedOrigins())
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("ERROR: graceful shutdown failed")
	}
	registry.CloseAll()

	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("WARN: failed to close redis")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Bye")
}
