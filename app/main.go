package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedloop/feedloop/app/api"
	"github.com/feedloop/feedloop/app/cfg"
	"github.com/feedloop/feedloop/app/database"
	"github.com/feedloop/feedloop/app/feed"
	"github.com/feedloop/feedloop/app/seed"
	"github.com/feedloop/feedloop/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting feedloop", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)
	ruleRepo := database.NewRuleRepository(db)
	tagRepo := database.NewTagRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	if appCfg.SeedFile != "" {
		seedFile, err := seed.Load(appCfg.SeedFile)
		if err != nil {
			slog.Error("Failed to load seed file", "path", appCfg.SeedFile, "error", err)
			os.Exit(1)
		}

		importer := seed.NewImporter(feedRepo, tagRepo)
		registered, err := importer.Run(seedFile)
		if err != nil {
			slog.Error("Failed to import seed subscriptions", "error", err)
			os.Exit(1)
		}
		slog.Info("Seed subscriptions registered", "count", registered)
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	parser := feed.NewParser(feed.NewSanitizer())
	ingester := feed.NewIngester(articleRepo, ruleRepo, tagRepo)
	health := feed.NewHealthTracker(feedRepo)
	archiver := feed.NewArchiver(articleRepo, settingsRepo)
	ruleApplier := feed.NewRuleApplier(articleRepo, ruleRepo)

	scheduler := tasks.NewScheduler(feedRepo, fetcher, parser, ingester, health, archiver, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "workers", appCfg.WorkerCount)

	apiHandler := api.NewHandler(feedRepo, articleRepo, ruleApplier, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
