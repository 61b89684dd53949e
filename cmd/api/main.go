package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/israelsanchezdev/entrepreneur-dashboard/db"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/config"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/directory"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/logger"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/platform/ratelimit"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/platform/validation"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/version"

	accounts "github.com/israelsanchezdev/entrepreneur-dashboard/internal/accounts"
	emailsvc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/service"
	eventsvc "github.com/israelsanchezdev/entrepreneur-dashboard/internal/events/service"
	notify "github.com/israelsanchezdev/entrepreneur-dashboard/internal/notify"
	referrals "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals"
	stats "github.com/israelsanchezdev/entrepreneur-dashboard/internal/stats"
)

func main() {
	if handleCLICommand(os.Args[1:]) {
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Msg("starting api server")

	if cfg.AutoMigrate {
		if err := db.MigrateUp(context.Background(), cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	// Init Postgres
	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DATABASE_URL")
	}
	pgPool, err := pgxpool.NewWithConfig(context.Background(), pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create pg pool")
	}
	defer pgPool.Close()

	// Partner directory: built-in list unless a JSON file is configured.
	dir := directory.Default()
	if cfg.PartnerDirectoryFile != "" {
		dir, err = directory.LoadFile(cfg.PartnerDirectoryFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.PartnerDirectoryFile).Msg("unable to load partner directory")
		}
	}
	log.Info().Int("partners", dir.Len()).Msg("partner directory loaded")

	sender, err := emailsvc.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build mail transport")
	}

	events := eventsvc.NewLogger(log)

	repo := referrals.NewRepository(pgPool)
	dispatcher := notify.NewDispatcher(dir, sender, events, cfg, log)
	dispatcher.SetOutcomeLog(repo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-User-Id"},
	}))

	// Validator
	e.Validator = validation.New()

	// Optional Redis for distributed rate limiting; falls back to the
	// in-memory window when REDIS_ADDR is unset.
	notifyPolicy := ratelimit.Policy{
		Name:   "notify_partner",
		Window: cfg.NotifyRateWindow,
		Limit:  cfg.NotifyRateLimit,
		Key:    ratelimit.KeyIP("notify"),
	}
	notifyLimiter := ratelimit.Middleware(notifyPolicy)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		defer redisClient.Close()
		notifyLimiter = ratelimit.MiddlewareWithStore(notifyPolicy, ratelimit.NewRedisStore(redisClient))
	}

	// Register domain routes via factories
	api := e.Group("/api/v1")
	referrals.Register(api, repo, dispatcher, events, log)
	notify.Register(api, dispatcher, dir, notifyLimiter)
	stats.Register(api, repo)
	accounts.Register(api, sender, cfg, log)

	// Health endpoint pings DB (and Redis when configured)
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		dbStatus := "ok"
		if err := pgPool.Ping(ctx); err != nil {
			dbStatus = "down"
		}

		body := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"version": version.String(),
			"db":      dbStatus,
		}
		if redisClient != nil {
			cacheStatus := "ok"
			if _, err := redisClient.Ping(ctx).Result(); err != nil {
				cacheStatus = "down"
			}
			body["cache"] = cacheStatus
		}
		return c.JSON(http.StatusOK, body)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Start server
	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if closer, ok := sender.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	log.Info().Msg("server stopped")
}
