package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/metrics"
)

// Errors
var (
	ErrDuplicateSubscription = connection.ErrDuplicateSubscription
	ErrSubscriptionNotFound  = connection.ErrSubscriptionNotFound
	ErrNotConnected          = connection.ErrNotConnected
)

// DefaultURL is the production market-data endpoint.
const DefaultURL = "wss://trading.xena.exchange/api/ws/market-data"

// Stream names.
const (
	StreamDOM         = "DOM"
	StreamCandles     = "candles"
	StreamTrades      = "trades"
	StreamMarketWatch = "market-watch"

	postfixAggregated = "aggregated"
)

// Handler receives refreshes and the terminal reject of one stream.
type Handler func(ctx context.Context, c *Client, msg fix.Message) error

// Config configures a Client.
type Config struct {
	Conn connection.Config // URL, ping and queue settings; Handler is set by the client
}

type subscription struct {
	request *fix.MarketDataRequest
	handler Handler
}

// Client is a market-data websocket client.
type Client struct {
	logger *slog.Logger
	conn   *connection.Conn

	subs sync.Map // stream key -> *subscription
}

// New creates a market-data client. Nothing is dialled until Connect.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Conn.URL == "" {
		cfg.Conn.URL = DefaultURL
	}
	if cfg.Conn.Name == "" {
		cfg.Conn.Name = "market-data"
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		logger: logger.With("client", cfg.Conn.Name),
	}

	connCfg := cfg.Conn
	connCfg.Handler = c.handle
	next := connCfg.OnDisconnect
	connCfg.OnDisconnect = func(info connection.DisconnectInfo) {
		c.clear()
		if next != nil {
			next(info)
		}
	}

	conn, err := connection.New(connCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	c.conn = conn

	return c, nil
}

// StreamKey joins a stream name with its optional symbol and postfix.
func StreamKey(stream, symbol, postfix string) string {
	key := stream
	if symbol != "" {
		key += ":" + symbol
	}
	if postfix != "" {
		key += ":" + postfix
	}
	return key
}

// Conn returns the underlying connection.
func (c *Client) Conn() *connection.Conn { return c.conn }

// Connect opens the connection. Market data needs no logon.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Subscribe requests snapshots and updates for a stream and returns its key.
// throttle is sent with millisecond resolution.
func (c *Client) Subscribe(ctx context.Context, stream, symbol, postfix string, h Handler, throttle time.Duration, aggregation int64) (string, error) {
	if err := fix.NotEmpty("stream", stream); err != nil {
		return "", err
	}
	if h == nil {
		return "", fmt.Errorf("%w: handler cannot be nil", fix.ErrInvalidArgument)
	}
	if err := fix.NotNegative("throttle", throttle); err != nil {
		return "", err
	}
	if err := fix.NotNegative("aggregation", aggregation); err != nil {
		return "", err
	}

	key := StreamKey(stream, symbol, postfix)
	sub := &subscription{
		request: &fix.MarketDataRequest{
			Header:                  fix.Header{MsgType: fix.MsgTypeMarketDataRequest},
			MDStreamID:              key,
			SubscriptionRequestType: fix.SubscriptionRequestTypeSnapshotAndUpdates,
			ThrottleType:            fix.ThrottleTypeOutstandingRequests,
			ThrottleTimeInterval:    throttle.Milliseconds(),
			ThrottleTimeUnit:        fix.ThrottleTimeUnitMilliseconds,
			AggregatedBook:          aggregation,
		},
		handler: h,
	}

	if _, loaded := c.subs.LoadOrStore(key, sub); loaded {
		return "", fmt.Errorf("%w: %s done or in progress", ErrDuplicateSubscription, key)
	}
	metrics.ActiveSubscriptions.Inc()

	if err := c.conn.SendMessage(ctx, sub.request); err != nil {
		if c.subs.CompareAndDelete(key, sub) {
			metrics.ActiveSubscriptions.Dec()
		}
		return "", fmt.Errorf("subscribe %s: %w", key, err)
	}

	c.logger.Debug("subscribed", "stream", key)
	return key, nil
}

// SubscribeDOMAggregated subscribes to the aggregated order book of symbol.
func (c *Client) SubscribeDOMAggregated(ctx context.Context, symbol string, h Handler, throttle time.Duration, aggregation int64) (string, error) {
	if err := fix.NotEmpty("symbol", symbol); err != nil {
		return "", err
	}
	return c.Subscribe(ctx, StreamDOM, symbol, postfixAggregated, h, throttle, aggregation)
}

// SubscribeCandles subscribes to candles of symbol for one of
// fix.CandleTimeframes.
func (c *Client) SubscribeCandles(ctx context.Context, symbol, timeframe string, h Handler, throttle time.Duration) (string, error) {
	if err := fix.NotEmpty("symbol", symbol); err != nil {
		return "", err
	}
	if err := fix.OneOf("timeframe", timeframe, fix.CandleTimeframes); err != nil {
		return "", err
	}
	return c.Subscribe(ctx, StreamCandles, symbol, timeframe, h, throttle, 0)
}

// SubscribeTrades subscribes to trade reports of symbol.
func (c *Client) SubscribeTrades(ctx context.Context, symbol string, h Handler, throttle time.Duration) (string, error) {
	if err := fix.NotEmpty("symbol", symbol); err != nil {
		return "", err
	}
	return c.Subscribe(ctx, StreamTrades, symbol, "", h, throttle, 0)
}

// SubscribeMarketWatch subscribes to the market-watch stream.
func (c *Client) SubscribeMarketWatch(ctx context.Context, h Handler) (string, error) {
	return c.Subscribe(ctx, StreamMarketWatch, "", "", h, 0, 0)
}

// Unsubscribe disables the stream and forgets it.
func (c *Client) Unsubscribe(ctx context.Context, key string) error {
	v, ok := c.subs.Load(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, key)
	}
	sub := v.(*subscription)

	req := sub.request.Clone()
	req.SubscriptionRequestType = fix.SubscriptionRequestTypeDisable
	if err := c.conn.SendMessage(ctx, req); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", key, err)
	}

	if c.subs.CompareAndDelete(key, sub) {
		metrics.ActiveSubscriptions.Dec()
	}
	c.logger.Debug("unsubscribed", "stream", key)
	return nil
}

// Subscriptions returns the keys of all active subscriptions, sorted.
func (c *Client) Subscriptions() []string {
	var keys []string
	c.subs.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

func (c *Client) clear() {
	n := 0
	c.subs.Range(func(k, _ any) bool {
		if _, deleted := c.subs.LoadAndDelete(k); deleted {
			n++
		}
		return true
	})
	metrics.ActiveSubscriptions.Sub(float64(n))

	if n > 0 {
		c.logger.Info("cleared subscriptions after disconnect", "count", n)
	}
}

func (c *Client) handle(ctx context.Context, msg fix.Message) {
	switch m := msg.(type) {
	case *fix.Logon:
		c.logger.Info("logon response", "reject_text", m.RejectText)
	case *fix.MarketDataRefresh:
		c.dispatch(ctx, m.MDStreamID, m, false)
	case *fix.MarketDataRequestReject:
		c.logger.Warn("subscription rejected",
			"stream", m.MDStreamID,
			"reason", m.MDReqRejReason,
			"text", m.Text,
		)
		c.dispatch(ctx, m.MDStreamID, m, true)
	default:
		c.logger.Warn("unexpected market-data message", "kind", msg.Kind())
	}
}

func (c *Client) dispatch(ctx context.Context, key string, msg fix.Message, terminal bool) {
	var v any
	var ok bool
	if terminal {
		v, ok = c.subs.LoadAndDelete(key)
		if ok {
			metrics.ActiveSubscriptions.Dec()
		}
	} else {
		v, ok = c.subs.Load(key)
	}

	if !ok {
		c.logger.Warn("no handler for stream", "stream", key, "kind", msg.Kind())
		return
	}

	if err := v.(*subscription).handler(ctx, c, msg); err != nil {
		c.logger.Error("handler failed",
			"stream", key,
			"kind", msg.Kind(),
			"error", err,
		)
	}
}

// IsConnected reports whether the connection is running.
func (c *Client) IsConnected() bool { return c.conn.IsConnected() }

// OnDisconnect registers a disconnect observer. Subscriptions are already
// cleared when it runs.
func (c *Client) OnDisconnect(fn func(connection.DisconnectInfo)) (unsubscribe func()) {
	return c.conn.OnDisconnect(fn)
}

// Errors returns fatal inbound errors.
func (c *Client) Errors() <-chan error { return c.conn.Errors() }

// Close closes the connection. The client can connect again.
func (c *Client) Close() error { return c.conn.Close() }

// Shutdown closes the connection and releases the client.
func (c *Client) Shutdown() { c.conn.Shutdown() }
