package connection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/xena-client/internal/fix"
)

// Errors
var (
	ErrNotConnected          = errors.New("not connected")
	ErrShutdown              = errors.New("connection shut down")
	ErrTransportDisposed     = errors.New("transport disposed")
	ErrDuplicateSubscription = errors.New("duplicate subscription")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// DisconnectType is the cause of a disconnect.
type DisconnectType int

const (
	DisconnectExit DisconnectType = iota
	DisconnectByUser
	DisconnectLost
	DisconnectNoMessageReceived
	DisconnectError
	DisconnectByServer
)

func (t DisconnectType) String() string {
	switch t {
	case DisconnectExit:
		return "exit"
	case DisconnectByUser:
		return "by_user"
	case DisconnectLost:
		return "lost"
	case DisconnectNoMessageReceived:
		return "no_message_received"
	case DisconnectError:
		return "error"
	case DisconnectByServer:
		return "by_server"
	default:
		return "unknown"
	}
}

// Graceful reports whether the disconnect was requested locally.
func (t DisconnectType) Graceful() bool {
	return t == DisconnectExit || t == DisconnectByUser
}

// DisconnectInfo is published to observers once per disconnect.
type DisconnectInfo struct {
	Conn *Conn
	Type DisconnectType
	Err  error // transport error, nil for graceful disconnects
}

// Transport is a single websocket session. A transport reports at most one
// disconnect and is not reused after it.
type Transport interface {
	Start(ctx context.Context) error
	Stop(code int, reason string) error
	SendText(data []byte) error
	IsRunning() bool
	Dispose(t DisconnectType)
}

// TransportEvents receives what a Transport reads. OnText is called from
// the transport's read goroutine and must not block.
type TransportEvents interface {
	OnText(data []byte, receivedAt time.Time)
	OnBinary(data []byte)
	OnClose(code int, reason string)
	OnDisconnect(t DisconnectType, err error)
}

// TransportFactory creates the transport for one connection attempt.
type TransportFactory func(url string, events TransportEvents, logger *slog.Logger) Transport

// Codec converts between messages and text frames.
type Codec interface {
	Encode(msg fix.Message) ([]byte, error)
	Decode(data []byte) (fix.Message, error)
}

// MessageHandler receives every decoded inbound message except heartbeats,
// in arrival order.
type MessageHandler func(ctx context.Context, msg fix.Message)

// Config configures a Conn.
type Config struct {
	Name                 string        // Client name used in logs and metric labels
	URL                  string        // Websocket URL
	PingInterval         time.Duration // Heartbeat period when nothing else is sent
	CheckInterval        time.Duration // Liveness check period
	InactivityMultiplier float64       // Silence longer than PingInterval*InactivityMultiplier disposes the transport
	BufferWarnThreshold  int           // Inbound queue length that triggers a warning
	HandleWarnThreshold  time.Duration // Handler duration that triggers a warning
	SendLimiter          *rate.Limiter // Optional limiter for commands, pings bypass it

	Codec        Codec            // Defaults to fix.Codec
	Handler      MessageHandler   // Required
	NewTransport TransportFactory // Defaults to NewWebsocketTransport

	// OnDisconnect runs before observers are notified, e.g. to clear
	// per-session state. A concurrent Connect waits for it to return, so
	// it must not call Connect itself.
	OnDisconnect func(DisconnectInfo)
}

// Defaults
const (
	DefaultPingInterval         = 5 * time.Second
	DefaultCheckInterval        = 500 * time.Millisecond
	DefaultInactivityMultiplier = 1.5
	DefaultBufferWarnThreshold  = 10000
	DefaultHandleWarnThreshold  = time.Second
)

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "xena"
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.InactivityMultiplier <= 0 {
		c.InactivityMultiplier = DefaultInactivityMultiplier
	}
	if c.BufferWarnThreshold <= 0 {
		c.BufferWarnThreshold = DefaultBufferWarnThreshold
	}
	if c.HandleWarnThreshold <= 0 {
		c.HandleWarnThreshold = DefaultHandleWarnThreshold
	}
	if c.Codec == nil {
		c.Codec = fix.Codec{}
	}
	if c.NewTransport == nil {
		c.NewTransport = NewWebsocketTransport
	}
}

// inboundFrame is a text frame waiting to be decoded.
type inboundFrame struct {
	gen        *generation
	data       []byte
	receivedAt time.Time
}
