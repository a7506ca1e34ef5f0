package config

import (
	"time"

	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/marketdata"
	"github.com/rickgao/xena-client/internal/trading"
)

// Default values for optional configuration fields.
const (
	DefaultTradingWSURL         = trading.DefaultURL
	DefaultMarketDataWSURL      = marketdata.DefaultURL
	DefaultPingInterval         = connection.DefaultPingInterval
	DefaultCheckInterval        = connection.DefaultCheckInterval
	DefaultInactivityMultiplier = connection.DefaultInactivityMultiplier
	DefaultLogonTimeout         = trading.DefaultLogonTimeout
	DefaultSendRate             = 20.0
	DefaultSendBurst            = 40
	DefaultBufferWarnThreshold  = connection.DefaultBufferWarnThreshold
	DefaultHandleWarnThreshold  = connection.DefaultHandleWarnThreshold
	DefaultReconnectDelay       = 5 * time.Second
	DefaultReconnectMaxDelay    = time.Minute
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultBatchSize            = 1000
	DefaultFlushInterval        = 1 * time.Second
	DefaultBufferSize           = 10000
	DefaultMetricsPort          = 9090
	DefaultMetricsPath          = "/metrics"
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.TradingWSURL == "" {
		c.API.TradingWSURL = DefaultTradingWSURL
	}
	if c.API.MarketDataWSURL == "" {
		c.API.MarketDataWSURL = DefaultMarketDataWSURL
	}

	// Connection defaults
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.CheckInterval == 0 {
		c.Connection.CheckInterval = DefaultCheckInterval
	}
	if c.Connection.InactivityMultiplier == 0 {
		c.Connection.InactivityMultiplier = DefaultInactivityMultiplier
	}
	if c.Connection.LogonTimeout == 0 {
		c.Connection.LogonTimeout = DefaultLogonTimeout
	}
	if c.Connection.SendRate == 0 {
		c.Connection.SendRate = DefaultSendRate
	}
	if c.Connection.SendBurst == 0 {
		c.Connection.SendBurst = DefaultSendBurst
	}
	if c.Connection.BufferWarnThreshold == 0 {
		c.Connection.BufferWarnThreshold = DefaultBufferWarnThreshold
	}
	if c.Connection.HandleWarnThreshold == 0 {
		c.Connection.HandleWarnThreshold = DefaultHandleWarnThreshold
	}
	if c.Connection.ReconnectDelay == 0 {
		c.Connection.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Connection.ReconnectMaxDelay == 0 {
		c.Connection.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
