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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/xena-client/internal/auth"
	"github.com/rickgao/xena-client/internal/config"
	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/session"
	"github.com/rickgao/xena-client/internal/trading"
	"github.com/rickgao/xena-client/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/xena.local.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional .env file")
	requestStatus := flag.Bool("status", true, "request an account status report after each logon")
	flag.Parse()

	if err := run(*configPath, *envPath, *requestStatus); err != nil {
		slog.Error("xena-trader failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, requestStatus bool) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTrading(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting xena-trader", append(version.LogAttrs(), "config", configPath)...)

	signer, err := loadSigner(cfg.API)
	if err != nil {
		return err
	}

	client, err := trading.New(trading.Config{
		Conn:         cfg.Connection.ConnConfig("trading", cfg.API.TradingWSURL),
		APIKey:       cfg.API.APIKey,
		Signer:       signer,
		Accounts:     cfg.API.Accounts,
		LogonTimeout: cfg.Connection.LogonTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("create trading client: %w", err)
	}
	defer client.Shutdown()

	if err := registerListeners(client, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHealthHandler(cfg.Metrics.Path, client),
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
			logon, err := client.ConnectAndLogon(ctx)
			if err != nil {
				return err
			}
			if requestStatus {
				requestAccountStatus(ctx, client, accountsFor(cfg.API.Accounts, logon), logger)
			}
			return nil
		}
		return session.Run(gctx, cfg.Connection.SessionConfig(), client, start, logger)
	})

	err = g.Wait()
	logger.Info("xena-trader stopped")
	return err
}

func loadSigner(api config.APIConfig) (auth.Signer, error) {
	if api.APISecretPath != "" {
		return auth.LoadSignerPEM(api.APISecretPath)
	}
	return auth.NewSigner(api.APISecret)
}

// accountsFor prefers the configured accounts and falls back to the ones
// the venue reported in the logon response.
func accountsFor(configured []uint64, logon *fix.Logon) []uint64 {
	if len(configured) > 0 {
		return configured
	}
	if logon == nil {
		return nil
	}
	return logon.Account
}

func requestAccountStatus(ctx context.Context, client *trading.Client, accounts []uint64, logger *slog.Logger) {
	for _, account := range accounts {
		reqID, err := client.AccountStatusReport(ctx, account, "")
		if err != nil {
			logger.Warn("account status request failed", "account", account, "error", err)
			continue
		}
		logger.Debug("requested account status", "account", account, "req_id", reqID)
	}
}

// createHealthHandler serves metrics and the connection state.
func createHealthHandler(metricsPath string, client *trading.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status    string `json:"status"`
			Connected bool   `json:"connected"`
			Version   string `json:"version"`
		}{
			Status:    "healthy",
			Connected: client.IsConnected(),
			Version:   version.String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if !health.Connected {
			health.Status = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
