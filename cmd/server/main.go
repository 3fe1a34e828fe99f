package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zenithbooks/zenithbooks/internal/config"
	"github.com/zenithbooks/zenithbooks/internal/database"
	"github.com/zenithbooks/zenithbooks/internal/handler"
	"github.com/zenithbooks/zenithbooks/internal/limiter"
	"github.com/zenithbooks/zenithbooks/internal/logging"
	"github.com/zenithbooks/zenithbooks/internal/middleware"
	"github.com/zenithbooks/zenithbooks/internal/queue"
	"github.com/zenithbooks/zenithbooks/internal/repository"
	"github.com/zenithbooks/zenithbooks/internal/router"
	"github.com/zenithbooks/zenithbooks/internal/service"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
	"github.com/zenithbooks/zenithbooks/internal/storage"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	vaultCfg := config.LoadVaultConfig()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()
	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	// Redis backs the lockout, token bucket and cache.  Without it those
	// features are disabled rather than fatal.
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable: lockout, rate limit and cache disabled")
	} else {
		defer rdb.Close()
	}

	presigner, err := storage.NewPresigner(ctx, vaultCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage setup failed")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	codes := repository.NewShareCodeRepo(db)
	docs := repository.NewDocumentRepo(db)
	accessLogs := repository.NewAccessLogRepo(db)
	vouchers := repository.NewVoucherRepo(db)
	accounts := repository.NewAccountRepo(db)

	shares := sharecode.NewService(codes, docs,
		limiter.NewLockout(rdb, config.LoadLockoutConfig()),
		service.NewAccessPublisher(cfg.AMQPURL),
		vaultCfg, log)

	go queue.StartAccessConsumer(ctx, cfg.AMQPURL, accessLogs, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(log))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterVault(e,
		handler.NewShareCodeHandler(shares, accessLogs),
		handler.NewDocumentHandler(docs, presigner),
		cfg.JWTSecret)
	router.RegisterAccess(e,
		handler.NewAccessHandler(cfg.JWTSecret, vaultCfg.GrantTTL, shares, docs, presigner),
		shares,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterLedger(e,
		handler.NewLedgerHandler(vouchers, accounts, cfg.Currency),
		cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("stopped")
}
