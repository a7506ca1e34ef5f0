package trading

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/xena-client/internal/auth"
	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/fix"
)

// Client is a trading websocket client.
type Client struct {
	cfg    Config
	logger *slog.Logger
	conn   *connection.Conn

	general  atomic.Pointer[Handler]
	handlers sync.Map // fix.Kind -> Handler

	logonMu sync.Mutex
	pending chan *fix.Logon
}

// New creates a trading client. Nothing is dialled until ConnectAndLogon.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if cfg.LogonTimeout <= 0 {
		cfg.LogonTimeout = DefaultLogonTimeout
	}
	if cfg.Conn.URL == "" {
		cfg.Conn.URL = DefaultURL
	}
	if cfg.Conn.Name == "" {
		cfg.Conn.Name = "trading"
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:    cfg,
		logger: logger.With("client", cfg.Conn.Name),
	}

	connCfg := cfg.Conn
	connCfg.Handler = c.handle

	conn, err := connection.New(connCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	c.conn = conn

	return c, nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() *connection.Conn { return c.conn }

// ConnectAndLogon connects if needed and authenticates the session.
func (c *Client) ConnectAndLogon(ctx context.Context) (*fix.Logon, error) {
	if err := c.conn.Connect(ctx); err != nil {
		return nil, err
	}
	return c.logon(ctx)
}

func (c *Client) logon(ctx context.Context) (*fix.Logon, error) {
	nonce, payload := auth.LogonPayload(time.Now())
	signature, err := c.cfg.Signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign logon: %w", err)
	}

	msg := &fix.Logon{
		Header:      fix.Header{MsgType: fix.MsgTypeLogon},
		Username:    c.cfg.APIKey,
		SendingTime: nonce,
		RawData:     payload,
		Password:    signature,
		Account:     slices.Clone(c.cfg.Accounts),
	}

	slot := make(chan *fix.Logon, 1)
	c.logonMu.Lock()
	if c.pending != nil {
		c.logonMu.Unlock()
		return nil, ErrLogonInProgress
	}
	c.pending = slot
	c.logonMu.Unlock()

	defer func() {
		c.logonMu.Lock()
		if c.pending == slot {
			c.pending = nil
		}
		c.logonMu.Unlock()
	}()

	if err := c.conn.SendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send logon: %w", err)
	}

	timer := time.NewTimer(c.cfg.LogonTimeout)
	defer timer.Stop()

	var resp *fix.Logon
	select {
	case resp = <-slot:
	case <-timer.C:
		c.logger.Error("logon response timed out", "timeout", c.cfg.LogonTimeout)
		return nil, ErrLogonResponseTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if strings.TrimSpace(resp.RejectText) != "" {
		c.logger.Error("logon rejected", "reason", resp.RejectText)
		return nil, &LogonRejectedError{Text: resp.RejectText}
	}

	c.logger.Info("logon successful", "accounts", resp.Account)
	return resp, nil
}

// handle routes one inbound message. Logon responses go to the pending
// logon; everything else fans out to the general and kind handlers.
func (c *Client) handle(ctx context.Context, msg fix.Message) {
	if logon, ok := msg.(*fix.Logon); ok {
		c.deliverLogon(logon)
		return
	}

	kind := msg.Kind()
	general := c.general.Load()
	typed, hasTyped := c.handlers.Load(kind)

	if general == nil && !hasTyped {
		c.logger.Warn("no handler for message", "kind", kind)
		return
	}

	var g errgroup.Group
	if general != nil {
		g.Go(func() error {
			return c.logHandlerError(kind, "general", (*general)(ctx, c, msg))
		})
	}
	if hasTyped {
		h := typed.(Handler)
		g.Go(func() error {
			return c.logHandlerError(kind, "typed", h(ctx, c, msg))
		})
	}
	g.Wait()
}

func (c *Client) logHandlerError(kind fix.Kind, handler string, err error) error {
	if err != nil {
		c.logger.Error("handler failed",
			"kind", kind,
			"handler", handler,
			"error", err,
		)
	}
	return err
}

func (c *Client) deliverLogon(logon *fix.Logon) {
	c.logonMu.Lock()
	slot := c.pending
	c.logonMu.Unlock()

	if slot == nil {
		c.logger.Warn("unexpected logon response", "reject_text", logon.RejectText)
		return
	}

	select {
	case slot <- logon:
	default:
		c.logger.Warn("dropping duplicate logon response")
	}
}

// ListenAll registers a handler for every routed message. Only one may be
// registered.
func (c *Client) ListenAll(h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: handler cannot be nil", fix.ErrInvalidArgument)
	}
	if !c.general.CompareAndSwap(nil, &h) {
		return fmt.Errorf("%w: already listening to all messages", ErrDuplicateSubscription)
	}
	return nil
}

// Listen registers a handler for messages of type T.
func Listen[T fix.Message](c *Client, h TypedHandler[T]) error {
	if h == nil {
		return fmt.Errorf("%w: handler cannot be nil", fix.ErrInvalidArgument)
	}

	var zero T
	kind := zero.Kind()

	wrapped := Handler(func(ctx context.Context, c *Client, msg fix.Message) error {
		typed, ok := msg.(T)
		if !ok {
			return fmt.Errorf("message %T does not match handler for %s", msg, kind)
		}
		return h(ctx, c, typed)
	})

	if _, loaded := c.handlers.LoadOrStore(kind, wrapped); loaded {
		return fmt.Errorf("%w: already listening to %s", ErrDuplicateSubscription, kind)
	}
	return nil
}

// RemoveListener removes the handler for type T, if any.
func RemoveListener[T fix.Message](c *Client) {
	var zero T
	c.RemoveListenerKind(zero.Kind())
}

// RemoveListenerKind removes the handler for kind, if any.
func (c *Client) RemoveListenerKind(kind fix.Kind) {
	c.handlers.Delete(kind)
}

// SendCommand encodes and sends msg.
func (c *Client) SendCommand(ctx context.Context, msg fix.Message) error {
	return c.conn.SendMessage(ctx, msg)
}

// IsConnected reports whether the connection is running.
func (c *Client) IsConnected() bool { return c.conn.IsConnected() }

// OnDisconnect registers a disconnect observer.
func (c *Client) OnDisconnect(fn func(connection.DisconnectInfo)) (unsubscribe func()) {
	return c.conn.OnDisconnect(fn)
}

// Errors returns fatal inbound errors.
func (c *Client) Errors() <-chan error { return c.conn.Errors() }

// Close closes the connection. The client can connect again.
func (c *Client) Close() error { return c.conn.Close() }

// Shutdown closes the connection and releases the client.
func (c *Client) Shutdown() { c.conn.Shutdown() }
