package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docsum/internal/auth"
	"docsum/internal/bot"
	"docsum/internal/config"
	"docsum/internal/database"
	"docsum/internal/export"
	"docsum/internal/pipeline"
	"docsum/internal/scheduler"
	"docsum/internal/server"
	"docsum/internal/summarizer"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	summarizerInst := initSummarizer(ctx, cfg, log)
	docPipeline := pipeline.New(summarizerInst, cfg.CompletionTimeout, log)

	authService, err := initAuth(ctx, cfg, db, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize auth",
			"error", err)

		return
	}

	var google *auth.Google
	if cfg.GoogleEnabled() {
		google = auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		log.InfoContext(ctx, "Google sign-in is enabled",
			"redirectURL", cfg.GoogleRedirectURL)
	}

	exporter, err := initExporter(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize exporter",
			"error", err,
			"pdfFontPath", cfg.PDFFontPath)

		return
	}

	srv := server.New(docPipeline, db, authService, google, server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.CookieSecure,
		Exporter:       exporter,
	}, log)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	log.InfoContext(ctx, "HTTP server is started",
		"addr", cfg.Addr())

	if cfg.HistoryRetention > 0 {
		sched := scheduler.New(ctx, db, cfg.HistoryRetention, log)

		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", scheduler.HourlyRetentionSpec)

			return
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", scheduler.HourlyRetentionSpec,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String(),
			"retention", cfg.HistoryRetention.String())
	}

	var botInst *bot.Bot
	if cfg.TelegramToken != "" {
		botInst, err = bot.New(cfg.TelegramToken, docPipeline, cfg.TelegramAllowedUsers, cfg.MaxUploadBytes, log)
		if err != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", err,
				"allowedUsersCount", len(cfg.TelegramAllowedUsers))

			return
		}

		go func() {
			botInst.Start(ctx)
		}()
		log.InfoContext(ctx, "Bot is started",
			"allowedUsersCount", len(cfg.TelegramAllowedUsers),
			"updateTimeoutSeconds", bot.BotUpdateTimeout)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serverErr:
		log.ErrorContext(ctx, "HTTP server failed",
			"error", err,
			"addr", cfg.Addr())
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	if botInst != nil {
		botInst.Stop()
		log.InfoContext(ctx, "Bot is stopped",
			"uptimeSeconds", time.Since(start).Seconds())
	}
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	var (
		s     summarizer.Summarizer
		model string
	)

	switch cfg.CompletionProvider {
	case config.ProviderAnthropic:
		model = cfg.AnthropicModel
		s = summarizer.NewAnthropicSummarizer(summarizer.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   model,
		})
	default:
		model = cfg.OpenAIModel
		s = summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   model,
		})
	}

	log.InfoContext(ctx, "Summarizer is initialized",
		"provider", cfg.CompletionProvider,
		"model", model,
		"cacheSize", cfg.SummaryCacheSize,
		"cacheTTL", cfg.SummaryCacheTTL.String())

	return summarizer.NewCachedSummarizer(s, cfg.SummaryCacheSize, cfg.SummaryCacheTTL, log)
}

func initExporter(ctx context.Context, cfg config.Config, log *slog.Logger) (*export.Exporter, error) {
	if cfg.PDFFontPath == "" {
		return export.New(nil)
	}

	font, err := os.ReadFile(cfg.PDFFontPath)
	if err != nil {
		return nil, fmt.Errorf("read PDF font: %w", err)
	}

	exporter, err := export.New(font)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "PDF font is loaded",
		"pdfFontPath", cfg.PDFFontPath,
		"size", len(font))

	return exporter, nil
}

func initAuth(ctx context.Context, cfg config.Config, users auth.UserStore, log *slog.Logger) (*auth.Service, error) {
	secret := []byte(cfg.AuthSecret)

	if len(secret) == 0 {
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			return nil, err
		}

		log.WarnContext(ctx, "AUTH_SECRET is missing so sessions will not survive a restart",
			"envVar", "AUTH_SECRET")
	}

	return auth.NewService(users, secret, cfg.SessionTTL, log)
}
