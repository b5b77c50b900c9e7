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

	"github.com/lysyi3m/rss-picks/app/api"
	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/cfg"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/feed"
	"github.com/lysyi3m/rss-picks/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting RSS Picks", "version", appCfg.Version)

	db, err := database.NewConnection(database.Options{
		Driver:   appCfg.DBDriver,
		Path:     appCfg.DBPath,
		Host:     appCfg.DBHost,
		Port:     appCfg.DBPort,
		User:     appCfg.DBUser,
		Password: appCfg.DBPassword,
		Name:     appCfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "driver", db.Driver, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed sources: %w", err)
	}
	if appCfg.FeedURL != "" {
		registered, err := configCache.RegisterIfAbsent(&feed.Config{
			Name:     "default",
			URL:      appCfg.FeedURL,
			Settings: feed.ConfigSettings{Enabled: true},
		})
		if err != nil {
			return fmt.Errorf("invalid feed URL: %w", err)
		}
		if !registered {
			slog.Warn("FEED_URL ignored, a 'default' source is already configured", "feed_url", appCfg.FeedURL)
		}
	}
	slog.Info("Feed sources loaded", "count", configCache.GetConfigCount(), "default", appCfg.DefaultSource)

	source := feed.NewSource(configCache, feed.NewHTTPClient(), feed.NewParser(), appCfg.UserAgent, appCfg.RequestTimeout)
	statuses := feed.NewStatusBoard()

	userRepo := database.NewUserRepository(db)
	prefRepo := database.NewPreferenceRepository(db)

	hasher := auth.NewBcryptHasher(appCfg.BcryptCost)
	verifier, err := auth.NewVerifier(userRepo, hasher, database.UsernameMatch(appCfg.UsernameMatch))
	if err != nil {
		return fmt.Errorf("failed to initialize verifier: %w", err)
	}

	scheduler := tasks.NewScheduler(configCache, source, statuses, prefRepo, appCfg.SchedulerInterval, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.Deps{
		Verifier:      verifier,
		Accounts:      auth.NewAccounts(userRepo, hasher),
		Users:         userRepo,
		Preferences:   prefRepo,
		Fetcher:       source,
		Generator:     feed.NewGenerator(appCfg.BaseUrl, appCfg.Version),
		Configs:       configCache,
		Statuses:      statuses,
		DefaultSource: appCfg.DefaultSource,
		Version:       appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: configCache.LongestTimeout(appCfg.RequestTimeout) + 30*time.Second,
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
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("RSS Picks stopped")
	return nil
}
