package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/altynbek07/cafe-order-bot/internal/bot"
	"github.com/altynbek07/cafe-order-bot/internal/catalog"
	"github.com/altynbek07/cafe-order-bot/internal/completion"
	"github.com/altynbek07/cafe-order-bot/internal/database"
	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/internal/health"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
	"github.com/altynbek07/cafe-order-bot/internal/idempotency"
	"github.com/altynbek07/cafe-order-bot/internal/notify"
	"github.com/altynbek07/cafe-order-bot/internal/receipt"
	"github.com/altynbek07/cafe-order-bot/internal/repository"
	"github.com/altynbek07/cafe-order-bot/pkg/config"
	"github.com/altynbek07/cafe-order-bot/pkg/graceful"
	"github.com/altynbek07/cafe-order-bot/pkg/logger"
	"github.com/altynbek07/cafe-order-bot/pkg/metrics"
	appredis "github.com/altynbek07/cafe-order-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	log.Info("starting cafe order bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port))

	config.Watch(v, log, func(updated *config.Config) {
		log.Info("configuration reloaded", slog.String("env", updated.AppEnv))
	})

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, migrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	cat, err := catalog.Load(ctx, catalog.NewPostgresSource(db, log))
	if err != nil {
		log.Error("failed to load menu catalog", slog.Any("error", err))
		os.Exit(1)
	}

	messages, err := i18n.LoadFromDir(cfg.I18n.Dir, cfg.I18n.DefaultLang)
	if err != nil {
		log.Error("failed to load message catalog", slog.Any("error", err))
		os.Exit(1)
	}
	tr := messages.Translator(cfg.I18n.DefaultLang)

	var (
		store       flow.Store
		idemManager idempotency.Manager
	)
	redisClient, redisErr := connectRedis(ctx, cfg)
	if redisErr != nil {
		log.Error("failed to connect to redis", slog.Any("error", redisErr))
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("error closing redis", slog.Any("error", cerr))
			}
		}()

		store = flow.NewRedisStorage(redisClient, log, cfg.Session.TTL)
		idemManager = idempotency.NewManager(idempotency.NewRedisStore(redisClient, log), log)
	} else {
		log.Warn("redis is not configured, using in-memory sessions without locking")
		store = flow.NewMemoryStore()
	}

	renderer := receipt.NewPDFRenderer(cfg.Receipt.FontPath, tr)
	mailer := notify.NewMailer(notify.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Subject:  tr.T("receipt.email_subject"),
		Body:     tr.T("receipt.email_body"),
	}, log)

	pipeline := completion.NewPipeline(
		repository.NewClientRepository(db, log),
		repository.NewOrderRepository(db, log),
		renderer,
		mailer,
		idemManager,
		tr,
		log,
	)

	machine := flow.NewMachine(store, cat, catalog.NewResolver(catalog.DefaultThreshold), pipeline, tr, redisClient, log)

	b, err := bot.New(*cfg, log, machine, tr)
	if err != nil {
		log.Error("failed to create bot", slog.Any("error", err))
		os.Exit(1)
	}

	cleaner := flow.NewCleaner(store, log, cfg.Session.TTL, cfg.Session.CleanupInterval)
	go cleaner.Run(ctx)

	collector := metrics.NewSessionCollector(store)
	go collector.Run(ctx)

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	mux := http.NewServeMux()
	mux.Handle("/healthz", logger.Middleware(checker.Handler()))
	mux.Handle("/metrics", promhttp.Handler())

	srv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped with error", slog.Any("error", err))
		}
	}()

	go b.Start()

	<-ctx.Done()

	b.Stop()
	log.Info("cafe order bot shutting down")
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redisv9.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	return appredis.New(ctx, appredis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolTimeout:  cfg.Redis.PoolTimeout,
		IdleTimeout:  cfg.Redis.IdleTimeout,
	})
}
