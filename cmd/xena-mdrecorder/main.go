package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/xena-client/internal/config"
	"github.com/rickgao/xena-client/internal/database"
	"github.com/rickgao/xena-client/internal/marketdata"
	"github.com/rickgao/xena-client/internal/recorder"
	"github.com/rickgao/xena-client/internal/session"
	"github.com/rickgao/xena-client/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/xena.local.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	if err := run(*configPath, *envPath); err != nil {
		slog.Error("xena-mdrecorder failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRecorder(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting xena-mdrecorder", append(version.LogAttrs(), "config", configPath)...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database",
		"host", cfg.Database.Timescale.Host,
		"port", cfg.Database.Timescale.Port,
		"database", cfg.Database.Timescale.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		return fmt.Errorf("connect timescale: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("database connected")

	rec := recorder.New(recorder.Config{
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
		BufferSize:    cfg.Recorder.BufferSize,
	}, pool, logger)
	rec.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rec.Stop(stopCtx)
	}()

	client, err := marketdata.New(marketdata.Config{
		Conn: cfg.Connection.ConnConfig("market-data", cfg.API.MarketDataWSURL),
	}, logger)
	if err != nil {
		return fmt.Errorf("create market-data client: %w", err)
	}
	defer client.Shutdown()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHealthHandler(cfg.Metrics.Path, pool, client, rec),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		start := func(ctx context.Context) error {
			if err := client.Connect(ctx); err != nil {
				return err
			}
			return subscribeAll(ctx, client, cfg.MarketData, rec.Handle, logger)
		}
		return session.Run(gctx, cfg.Connection.SessionConfig(), client, start, logger)
	})

	err = g.Wait()
	logger.Info("xena-mdrecorder stopped", "recorder", rec.Stats())
	return err
}

// createHealthHandler serves metrics, database health and subscriptions.
func createHealthHandler(metricsPath string, pool *pgxpool.Pool, client *marketdata.Client, rec *recorder.Recorder) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		subs := client.Subscriptions()
		health.Components["market_data"] = map[string]any{
			"connected":     client.IsConnected(),
			"subscriptions": subs,
		}
		if health.Status == "healthy" && (!client.IsConnected() || len(subs) == 0) {
			health.Status = "degraded"
		}

		health.Components["recorder"] = rec.Stats()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
