// Package session keeps a websocket client connected. The clients never
// reconnect on their own; Run redials after every disconnect and reruns
// the caller's setup (logon, subscriptions) on the new connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/xena-client/internal/connection"
)

// ErrDisconnected wraps the disconnect that ended a session.
var ErrDisconnected = errors.New("session disconnected")

// Conn is the part of a client Run drives. trading.Client,
// marketdata.Client and connection.Conn satisfy it.
type Conn interface {
	Close() error
	OnDisconnect(fn func(connection.DisconnectInfo)) (unsubscribe func())
	Errors() <-chan error
}

// StartFunc connects and performs per-session setup.
type StartFunc func(ctx context.Context) error

// Config controls retry pacing.
type Config struct {
	Delay    time.Duration // wait after a session ends
	MaxDelay time.Duration // cap for the delay, doubled after each failed start
}

// Run keeps conn connected until ctx is done. It returns nil on
// cancellation; conn is closed but not shut down.
func Run(ctx context.Context, cfg Config, conn Conn, start StartFunc, logger *slog.Logger) error {
	if cfg.Delay <= 0 {
		return errors.New("session delay must be > 0")
	}
	if cfg.MaxDelay < cfg.Delay {
		cfg.MaxDelay = cfg.Delay
	}
	if logger == nil {
		logger = slog.Default()
	}

	wait := cfg.Delay
	for attempt := 1; ; attempt++ {
		started, err := runOnce(ctx, conn, start, logger)
		if ctx.Err() != nil {
			return nil
		}

		if started {
			wait = cfg.Delay
			logger.Warn("session ended", "error", err, "retry_in", wait)
		} else {
			logger.Warn("session start failed",
				"attempt", attempt,
				"error", err,
				"retry_in", wait,
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if started {
			attempt = 0
		} else {
			wait = min(wait*2, cfg.MaxDelay)
		}
	}
}

// runOnce reports whether start succeeded and why the session ended.
func runOnce(ctx context.Context, conn Conn, start StartFunc, logger *slog.Logger) (bool, error) {
	drainErrors(conn, logger)

	disconnected := make(chan connection.DisconnectInfo, 1)
	unsubscribe := conn.OnDisconnect(func(info connection.DisconnectInfo) {
		select {
		case disconnected <- info:
		default:
		}
	})
	defer unsubscribe()

	if err := start(ctx); err != nil {
		conn.Close()
		return false, err
	}
	logger.Info("session started")

	select {
	case <-ctx.Done():
		conn.Close()
		return true, nil
	case info := <-disconnected:
		if info.Err != nil {
			return true, fmt.Errorf("%w: %s: %w", ErrDisconnected, info.Type, info.Err)
		}
		return true, fmt.Errorf("%w: %s", ErrDisconnected, info.Type)
	case err := <-conn.Errors():
		conn.Close()
		return true, err
	}
}

// drainErrors discards errors left over from the previous session.
func drainErrors(conn Conn, logger *slog.Logger) {
	for {
		select {
		case err := <-conn.Errors():
			logger.Debug("discarding stale connection error", "error", err)
		default:
			return
		}
	}
}
