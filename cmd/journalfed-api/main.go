package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanpo/journalfed/api"
	"github.com/sanpo/journalfed/config"
	"github.com/sanpo/journalfed/logger"
	"github.com/sanpo/journalfed/sources"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config", getEnv("JOURNALFED_CONFIG", "journalfed.yaml"), "Path to config file")
	addr := flag.String("addr", getEnv("JOURNALFED_ADDR", "localhost:8080"), "Listen address")
	dbPath := flag.String("db", getEnv("JOURNALFED_DB", ""), "Source registry database; enables /api/v1/sources")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level)

	if *dbPath == "" {
		*dbPath = cfg.Output.Database
	}
	var store *sources.SourceStore
	if *dbPath != "" {
		store, err = sources.NewSourceStore(*dbPath)
		if err != nil {
			log.Error("open source store", slog.Any("err", err))
			os.Exit(1)
		}
		defer store.Close()
	}

	server := api.NewJournalAPIServer(cfg.Output.JSON, store, log)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", *addr), slog.String("result", cfg.Output.JSON))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
