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

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-sync/app/api"
	"github.com/lysyi3m/feed-sync/app/cache"
	"github.com/lysyi3m/feed-sync/app/cfg"
	"github.com/lysyi3m/feed-sync/app/feed"
	"github.com/lysyi3m/feed-sync/app/fetcher"
	"github.com/lysyi3m/feed-sync/app/store"
	"github.com/lysyi3m/feed-sync/app/tasks"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	appCfg, err := cfg.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if appCfg == nil {
		return 0
	}

	setupLogging(appCfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cacheFile := cache.NewFile(appCfg.CachePath, feed.NewValidator())

	switch {
	case appCfg.Check:
		err = tasks.Run(ctx, tasks.NewCheckTask(cacheFile))
	case appCfg.Serve:
		err = serve(ctx, appCfg, cacheFile)
	default:
		err = syncFeed(ctx, appCfg, cacheFile)
	}

	if err != nil {
		slog.Error("Run failed", "error", err)
		return 1
	}
	return 0
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadSource(appCfg *cfg.Cfg) (*feed.Source, error) {
	return feed.LoadSource(appCfg.SourceFile, feed.SourceOverrides{
		URL:     appCfg.FeedURL,
		Author:  appCfg.Author,
		Timeout: appCfg.Timeout,
	})
}

func syncFeed(ctx context.Context, appCfg *cfg.Cfg, cacheFile *cache.File) error {
	source, err := loadSource(appCfg)
	if err != nil {
		return err
	}

	var f fetcher.Fetcher
	switch appCfg.Fetcher {
	case cfg.FetcherHTTP:
		f = fetcher.NewHTTPFetcher(&http.Client{}, appCfg.UserAgent, source.GetTimeout())
	default:
		f = fetcher.NewBrowserFetcher(fetcher.BrowserOptions{
			Bin:       appCfg.BrowserBin,
			NoSandbox: appCfg.NoSandbox,
			UserAgent: appCfg.UserAgent,
			Timeout:   source.GetTimeout(),
		})
	}

	slog.Debug("Starting sync", "version", appCfg.Version, "fetcher", appCfg.Fetcher, "cache", appCfg.CachePath)

	return tasks.Run(ctx, tasks.NewSyncTask(source, cacheFile, f, feed.NewValidator(), appCfg.DryRun))
}

func serve(ctx context.Context, appCfg *cfg.Cfg, cacheFile *cache.File) error {
	source, err := loadSource(appCfg)
	if err != nil {
		return err
	}

	s, err := store.Open(cacheFile)
	if err != nil {
		return err
	}

	if !appCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(s, source, feed.NewGenerator(appCfg.Version))
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "items", s.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down HTTP server")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}
