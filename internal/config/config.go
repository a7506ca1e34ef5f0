// Package config loads the YAML configuration shared by the CLIs.
package config

import "time"

// Config is the root configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Connection ConnectionConfig `yaml:"connection"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Database   DatabaseConfig   `yaml:"database"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// APIConfig holds endpoints and credentials.
type APIConfig struct {
	TradingWSURL    string   `yaml:"trading_ws_url"`
	MarketDataWSURL string   `yaml:"market_data_ws_url"`
	APIKey          string   `yaml:"api_key"`
	APISecret       string   `yaml:"api_secret"`      // hex SEC1 DER, as issued by Xena
	APISecretPath   string   `yaml:"api_secret_path"` // PEM file, takes precedence over api_secret
	Accounts        []uint64 `yaml:"accounts"`
}

// ConnectionConfig tunes every websocket connection.
type ConnectionConfig struct {
	PingInterval         time.Duration `yaml:"ping_interval"`
	CheckInterval        time.Duration `yaml:"check_interval"`
	InactivityMultiplier float64       `yaml:"inactivity_multiplier"`
	LogonTimeout         time.Duration `yaml:"logon_timeout"`
	SendRate             float64       `yaml:"send_rate"` // commands per second, pings excluded; negative disables
	SendBurst            int           `yaml:"send_burst"`
	BufferWarnThreshold  int           `yaml:"buffer_warn_threshold"`
	HandleWarnThreshold  time.Duration `yaml:"handle_warn_threshold"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"`
}

// MarketDataConfig lists the streams the recorder subscribes to.
type MarketDataConfig struct {
	DefaultThrottle    time.Duration  `yaml:"default_throttle"`
	DefaultAggregation int64          `yaml:"default_aggregation"`
	Streams            []StreamConfig `yaml:"streams"`
}

// Stream types.
const (
	StreamDOM         = "dom"
	StreamTrades      = "trades"
	StreamCandles     = "candles"
	StreamMarketWatch = "market-watch"
)

// StreamConfig is one market-data subscription. Unset throttle and
// aggregation fall back to the market_data defaults.
type StreamConfig struct {
	Type        string         `yaml:"type"`
	Symbol      string         `yaml:"symbol"`
	Timeframe   string         `yaml:"timeframe"` // candles only
	Throttle    *time.Duration `yaml:"throttle"`
	Aggregation *int64         `yaml:"aggregation"` // dom only
}

// DatabaseConfig holds the recorder's database.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig is a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RecorderConfig tunes batching of market-data rows.
type RecorderConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
