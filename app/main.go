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

	"github.com/lysyi3m/duyuru/app/api"
	"github.com/lysyi3m/duyuru/app/cfg"
	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
	"github.com/lysyi3m/duyuru/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appConfig.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Duyuru server", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appConfig.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	rulesCache := feed.NewRulesCache(appConfig.RulesFile)
	if err := rulesCache.Run(); err != nil {
		slog.Error("Failed to load scrape rules", "file", appConfig.RulesFile, "error", err)
		os.Exit(1)
	}

	postRepo := database.NewPostRepository(db)
	announcementRepo := database.NewAnnouncementRepository(db)

	allowlist := feed.NewAllowlist(appConfig.AllowedDomain)
	fetcher := feed.NewFetcher(feed.NewHTTPClient(allowlist), appConfig.UserAgent, appConfig.FetchTimeout)
	normalizer := feed.NewDateNormalizer()

	var proxyBase string
	if appConfig.EmbedMode == cfg.EmbedModeProxy {
		proxyBase = feed.ProxyBase(appConfig.BaseUrl)
	}

	rewriter := feed.NewRewriter(rulesCache, allowlist, proxyBase, appConfig.ViewerURL)
	scraper := feed.NewScraper(allowlist, fetcher, rulesCache, rewriter, feed.NewContentExtractor())
	lister := feed.NewLister(appConfig.ListingURL, fetcher, rulesCache, feed.NewFilterer())

	scheduler := tasks.NewScheduler(lister, scraper, postRepo, normalizer, tasks.SchedulerOptions{
		ListingURL: appConfig.ListingURL,
		ChunkSize:  appConfig.ChunkSize,
		Interval:   appConfig.SyncInterval,
		MinSpacing: appConfig.SyncMinSpacing,
	})
	scheduler.Start()

	apiHandler := api.NewHandler(postRepo, announcementRepo, lister, scraper, allowlist, fetcher, normalizer, scheduler)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appConfig.FetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening",
			"port", appConfig.Port,
			"listing_url", appConfig.ListingURL,
			"embed_mode", appConfig.EmbedMode,
			"sync_interval", appConfig.SyncInterval)

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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Waits for an in-flight sync to finish
	scheduler.Stop()

	slog.Info("Shutdown complete")
}
