package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/session"
)

// ConnConfig returns the connection settings for one client. Each call
// gets its own send limiter.
func (c *ConnectionConfig) ConnConfig(name, url string) connection.Config {
	cfg := connection.Config{
		Name:                 name,
		URL:                  url,
		PingInterval:         c.PingInterval,
		CheckInterval:        c.CheckInterval,
		InactivityMultiplier: c.InactivityMultiplier,
		BufferWarnThreshold:  c.BufferWarnThreshold,
		HandleWarnThreshold:  c.HandleWarnThreshold,
	}
	if c.SendRate > 0 {
		cfg.SendLimiter = rate.NewLimiter(rate.Limit(c.SendRate), c.SendBurst)
	}
	return cfg
}

// SessionConfig returns the reconnect pacing.
func (c *ConnectionConfig) SessionConfig() session.Config {
	return session.Config{Delay: c.ReconnectDelay, MaxDelay: c.ReconnectMaxDelay}
}

// ThrottleFor returns the stream throttle or the default.
func (m *MarketDataConfig) ThrottleFor(s StreamConfig) time.Duration {
	if s.Throttle != nil {
		return *s.Throttle
	}
	return m.DefaultThrottle
}

// AggregationFor returns the stream aggregation or the default.
func (m *MarketDataConfig) AggregationFor(s StreamConfig) int64 {
	if s.Aggregation != nil {
		return *s.Aggregation
	}
	return m.DefaultAggregation
}

// NewLogger builds the slog logger described by the log section.
func (l *LogConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
