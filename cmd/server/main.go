package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/smartplay/internal/ai"
	"github.com/iliyamo/smartplay/internal/config"
	"github.com/iliyamo/smartplay/internal/database"
	"github.com/iliyamo/smartplay/internal/handler"
	"github.com/iliyamo/smartplay/internal/middleware"
	"github.com/iliyamo/smartplay/internal/queue"
	"github.com/iliyamo/smartplay/internal/repository"
	"github.com/iliyamo/smartplay/internal/router"
	"github.com/iliyamo/smartplay/internal/service"
	"github.com/iliyamo/smartplay/internal/transcript"
	"github.com/iliyamo/smartplay/internal/youtube"
)

func main() {
	// .env is a development convenience; production sets real variables.
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	cfg := config.Load()
	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	opts.Level = slog.LevelDebug
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("database ready", slog.String("host", cfg.DBHost), slog.String("name", cfg.DBName))

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	videos := repository.NewVideoRepo(db)

	yt := youtube.NewClient(cfg.Transcript.BaseURL, cfg.Transcript.Langs, &http.Client{Timeout: cfg.Transcript.Timeout})
	fetcher := transcript.NewFetcher(yt, cfg.Transcript.Timeout, log)
	if cfg.AI.APIKey == "" {
		log.Warn("LLM_API_KEY is empty; questions will fail until it is set")
	}
	completer := ai.New(cfg.AI)

	var events service.EventPublisher = service.NoopPublisher{}
	if cfg.Events.Enabled {
		pub := queue.NewPublisher(cfg.Events.URL, log)
		defer pub.Close()
		events = pub

		consumer := queue.NewActivityConsumer(cfg.Events.URL, "logs/activity.log", log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", slog.Any("error", err))
			}
		}()
	}

	ingest := service.NewIngestService(videos, fetcher, events, log)
	qa := service.NewQAService(videos, completer, events, service.QAOptions{
		MaxContextChars: cfg.AI.MaxContextChars,
		Temperature:     cfg.AI.Temperature,
		MaxTokens:       cfg.AI.MaxTokens,
	}, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger(log))

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	router.RegisterRoutes(e, handler.NewStatusHandler(videos, log))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, log), cfg.JWTSecret)
	router.RegisterVideos(e, handler.NewVideoHandler(ingest, log), cfg.JWTSecret, limiter)
	router.RegisterChat(e, handler.NewChatHandler(qa, log), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
