package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rickgao/xena-client/internal/fix"
)

var (
	logLevels   = []string{"debug", "info", "warn", "error"}
	logFormats  = []string{"text", "json"}
	streamTypes = []string{StreamDOM, StreamTrades, StreamCandles, StreamMarketWatch}
)

// Validate checks the sections every command uses.
func (c *Config) Validate() error {
	if c.API.TradingWSURL == "" {
		return errors.New("api.trading_ws_url is required")
	}
	if c.API.MarketDataWSURL == "" {
		return errors.New("api.market_data_ws_url is required")
	}

	if c.Connection.PingInterval <= 0 {
		return errors.New("connection.ping_interval must be > 0")
	}
	if c.Connection.CheckInterval <= 0 {
		return errors.New("connection.check_interval must be > 0")
	}
	if c.Connection.CheckInterval > c.Connection.PingInterval {
		return fmt.Errorf("connection.check_interval (%s) cannot exceed ping_interval (%s)",
			c.Connection.CheckInterval, c.Connection.PingInterval)
	}
	if c.Connection.InactivityMultiplier < 1 {
		return errors.New("connection.inactivity_multiplier must be >= 1")
	}
	if c.Connection.SendRate > 0 && c.Connection.SendBurst < 1 {
		return errors.New("connection.send_burst must be >= 1")
	}

	if c.Connection.ReconnectDelay <= 0 {
		return errors.New("connection.reconnect_delay must be > 0")
	}
	if c.Connection.ReconnectMaxDelay < c.Connection.ReconnectDelay {
		return fmt.Errorf("connection.reconnect_max_delay (%s) cannot be less than reconnect_delay (%s)",
			c.Connection.ReconnectMaxDelay, c.Connection.ReconnectDelay)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v, got %q", logFormats, c.Log.Format)
	}

	return nil
}

// ValidateTrading additionally checks the credentials used for logon.
func (c *Config) ValidateTrading() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.API.APIKey == "" {
		return errors.New("api.api_key is required")
	}
	if c.API.APISecret == "" && c.API.APISecretPath == "" {
		return errors.New("api.api_secret or api.api_secret_path is required")
	}
	if c.Connection.LogonTimeout <= 0 {
		return errors.New("connection.logon_timeout must be > 0")
	}
	return nil
}

// ValidateRecorder additionally checks the database, recorder and
// stream sections.
func (c *Config) ValidateRecorder() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := c.Database.Timescale.validate("database.timescale"); err != nil {
		return err
	}

	if c.Recorder.BatchSize < 1 {
		return errors.New("recorder.batch_size must be >= 1")
	}
	if c.Recorder.BufferSize < 1 {
		return errors.New("recorder.buffer_size must be >= 1")
	}
	if c.Recorder.FlushInterval <= 0 {
		return errors.New("recorder.flush_interval must be > 0")
	}

	if c.MarketData.DefaultThrottle < 0 {
		return errors.New("market_data.default_throttle must be >= 0")
	}
	if c.MarketData.DefaultAggregation < 0 {
		return errors.New("market_data.default_aggregation must be >= 0")
	}
	if len(c.MarketData.Streams) == 0 {
		return errors.New("market_data.streams must not be empty")
	}
	for i, s := range c.MarketData.Streams {
		if err := s.validate(fmt.Sprintf("market_data.streams[%d]", i)); err != nil {
			return err
		}
	}

	return nil
}

func (s *StreamConfig) validate(prefix string) error {
	if !slices.Contains(streamTypes, s.Type) {
		return fmt.Errorf("%s.type must be one of %v, got %q", prefix, streamTypes, s.Type)
	}
	if s.Type != StreamMarketWatch && s.Symbol == "" {
		return fmt.Errorf("%s.symbol is required", prefix)
	}
	if s.Type == StreamCandles && !slices.Contains(fix.CandleTimeframes, s.Timeframe) {
		return fmt.Errorf("%s.timeframe must be one of %v, got %q", prefix, fix.CandleTimeframes, s.Timeframe)
	}
	if s.Throttle != nil && *s.Throttle < 0 {
		return fmt.Errorf("%s.throttle must be >= 0", prefix)
	}
	if s.Aggregation != nil && *s.Aggregation < 0 {
		return fmt.Errorf("%s.aggregation must be >= 0", prefix)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
