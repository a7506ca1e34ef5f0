package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/metrics"
)

const (
	connectPollAttempts = 100
	connectPollInterval = 10 * time.Millisecond
	initialQueueSize    = 1024
)

// Conn is one long-lived client connection to the venue.
type Conn struct {
	cfg    Config
	logger *slog.Logger

	ctx    context.Context // lifetime of the Conn, cancelled by Shutdown
	cancel context.CancelFunc

	// connectMu guards current and the connected/closing flags of every
	// generation.
	connectMu sync.Mutex
	current   *generation
	nextGen   uint64

	// sendMu serialises every outbound frame.
	sendMu sync.Mutex

	lastSent     atomic.Int64 // unix nanos
	lastReceived atomic.Int64 // unix nanos

	livenessMu   sync.Mutex
	livenessDone chan struct{} // of the most recent liveness loop
	queueWarned  atomic.Bool

	inbound        *queue[inboundFrame]
	processingDone chan struct{}

	observersMu sync.Mutex
	observers   map[uint64]func(DisconnectInfo)
	nextObs     uint64

	errors       chan error
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// generation is one transport and everything tied to its lifetime. Each
// generation publishes its disconnect at most once.
type generation struct {
	id        uint64
	transport Transport
	started   atomic.Bool

	connected bool // guarded by Conn.connectMu
	closing   bool // guarded by Conn.connectMu

	claimed atomic.Bool
	done    chan struct{} // closed once the disconnect is published

	stopLiveness context.CancelFunc // guarded by Conn.livenessMu
}

// New creates a Conn and starts its processing goroutine. The transport is
// not created until Connect.
func New(cfg Config, logger *slog.Logger) (*Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	cfg.applyDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		cfg:            cfg,
		logger:         logger.With("client", cfg.Name, "conn_id", uuid.NewString()),
		ctx:            ctx,
		cancel:         cancel,
		inbound:        newQueue[inboundFrame](initialQueueSize),
		processingDone: make(chan struct{}),
		observers:      make(map[uint64]func(DisconnectInfo)),
		errors:         make(chan error, 16),
	}

	go c.processLoop()

	return c, nil
}

// Name returns the client name.
func (c *Conn) Name() string { return c.cfg.Name }

// URL returns the websocket URL.
func (c *Conn) URL() string { return c.cfg.URL }

// Errors returns a channel of fatal inbound errors. Errors are dropped if
// nobody reads them.
func (c *Conn) Errors() <-chan error { return c.errors }

// Connect starts a transport and waits for it to run. It is a no-op on a
// running connection. A transport that has stopped is replaced, after its
// disconnect has been published.
func (c *Conn) Connect(ctx context.Context) error {
	if c.isShutdown.Load() {
		return ErrShutdown
	}

	var g *generation
	for {
		var stale bool
		g, stale = c.acquire()
		if !stale {
			break
		}
		c.publish(g, DisconnectLost, nil, nil, true)
	}

	if c.isLive(g) {
		return nil
	}

	if err := g.transport.Start(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", c.cfg.URL, err)
	}
	g.started.Store(true)

	for i := 0; i < connectPollAttempts && !g.transport.IsRunning(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectPollInterval):
		}
	}

	if !g.transport.IsRunning() {
		return ErrNotConnected
	}
	ok, first := c.markConnected(g)
	if !ok {
		return ErrNotConnected
	}
	if !first {
		return nil
	}

	now := time.Now().UnixNano()
	c.lastReceived.Store(now)
	c.lastSent.Store(now)
	c.startLiveness(g)

	c.logger.Info("connected", "url", c.cfg.URL, "generation", g.id)
	return nil
}

// acquire returns the current generation, creating one if there is none.
// stale is true when the current transport was started but has stopped.
func (c *Conn) acquire() (g *generation, stale bool) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if g := c.current; g != nil {
		if g.closing || (g.started.Load() && !g.transport.IsRunning()) {
			return g, true
		}
		return g, false
	}

	c.nextGen++
	g = &generation{id: c.nextGen, done: make(chan struct{})}
	g.transport = c.cfg.NewTransport(c.cfg.URL, &transportEvents{c: c, g: g}, c.logger)
	c.current = g
	return g, false
}

func (c *Conn) markConnected(g *generation) (ok, first bool) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.current != g || g.closing {
		return false, false
	}
	first = !g.connected
	g.connected = true
	return true, first
}

func (c *Conn) isLive(g *generation) bool {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	return c.current == g && g.connected && !g.closing && g.transport.IsRunning()
}

// IsConnected reports whether the current transport is running.
func (c *Conn) IsConnected() bool {
	g := c.currentGen()
	return g != nil && g.transport.IsRunning()
}

// Send writes a text frame. It fails fast with ErrNotConnected and waits
// on the send limiter, if any.
func (c *Conn) Send(ctx context.Context, data []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if c.cfg.SendLimiter != nil {
		if err := c.cfg.SendLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
	return c.write(data, metrics.ClassCommand)
}

// SendMessage encodes msg and sends it.
func (c *Conn) SendMessage(ctx context.Context, msg fix.Message) error {
	data, err := c.cfg.Codec.Encode(msg)
	if err != nil {
		return err
	}
	return c.Send(ctx, data)
}

func (c *Conn) write(data []byte, class string) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	g := c.currentGen()
	if g == nil || !g.transport.IsRunning() {
		return ErrNotConnected
	}
	if err := g.transport.SendText(data); err != nil {
		return err
	}

	c.lastSent.Store(time.Now().UnixNano())
	metrics.FramesSent.WithLabelValues(c.cfg.Name, class).Inc()
	return nil
}

// Close stops the transport with a normal closure and returns once the
// disconnect has been published. It never fails when the connection is not
// running. A later Connect starts a new transport.
func (c *Conn) Close() error {
	g := c.currentGen()
	if g == nil || !g.transport.IsRunning() {
		return nil
	}

	var err error
	c.publish(g, DisconnectByUser, nil, func() {
		c.sendMu.Lock()
		defer c.sendMu.Unlock()
		err = g.transport.Stop(websocket.CloseNormalClosure, "")
	}, true)
	return err
}

// Shutdown closes the connection and stops inbound processing. Disconnect
// observers have returned by the time it does. The Conn cannot be reused.
// Must not be called from a MessageHandler.
func (c *Conn) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.isShutdown.Store(true)
		if err := c.Close(); err != nil {
			c.logger.Debug("close on shutdown", "error", err)
		}
		if g := c.currentGen(); g != nil {
			c.dispose(g, DisconnectExit)
		}
		c.cancel()
		c.waitLiveness()
		c.inbound.Close()
		<-c.processingDone
		metrics.InboundQueueDepth.DeleteLabelValues(c.cfg.Name)
	})
}

// OnDisconnect registers an observer and returns a func that removes it.
// Observers run on the goroutine that detected the disconnect.
func (c *Conn) OnDisconnect(fn func(DisconnectInfo)) (unsubscribe func()) {
	c.observersMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.observersMu.Unlock()

	return func() {
		c.observersMu.Lock()
		delete(c.observers, id)
		c.observersMu.Unlock()
	}
}

func (c *Conn) currentGen() *generation {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	return c.current
}

// dispose closes g's transport without a close handshake and publishes typ.
func (c *Conn) dispose(g *generation, typ DisconnectType) {
	c.publish(g, typ, nil, func() { g.transport.Dispose(typ) }, true)
}

// publish runs g's disconnect once. stop, if set, runs first. The
// OnDisconnect hook runs while g is still current, so a concurrent Connect
// waits for it; observers run after g is detached and may reconnect.
// Callers that lose the race wait for the winner when wait is set.
func (c *Conn) publish(g *generation, typ DisconnectType, err error, stop func(), wait bool) {
	if !g.claimed.CompareAndSwap(false, true) {
		if wait {
			<-g.done
		}
		return
	}
	defer close(g.done)

	c.connectMu.Lock()
	g.closing = true
	connected := g.connected
	c.connectMu.Unlock()

	c.stopGenLiveness(g)
	if stop != nil {
		stop()
	}

	var info DisconnectInfo
	if connected {
		if typ.Graceful() {
			c.logger.Info("disconnected", "type", typ, "generation", g.id)
		} else {
			c.logger.Error("disconnected", "type", typ, "generation", g.id, "error", err)
		}
		metrics.Disconnects.WithLabelValues(c.cfg.Name, typ.String()).Inc()

		info = DisconnectInfo{Conn: c, Type: typ, Err: err}
		if c.cfg.OnDisconnect != nil {
			c.cfg.OnDisconnect(info)
		}
	}

	c.connectMu.Lock()
	if c.current == g {
		c.current = nil
	}
	c.connectMu.Unlock()

	if !connected {
		c.logger.Debug("transport stopped before connecting", "type", typ, "generation", g.id, "error", err)
		return
	}

	c.observersMu.Lock()
	observers := make([]func(DisconnectInfo), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.observersMu.Unlock()

	for _, fn := range observers {
		fn(info)
	}
}

func (c *Conn) startLiveness(g *generation) {
	c.livenessMu.Lock()
	defer c.livenessMu.Unlock()

	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})
	g.stopLiveness = cancel
	c.livenessDone = done

	go c.livenessLoop(ctx, g, done)
}

func (c *Conn) stopGenLiveness(g *generation) {
	c.livenessMu.Lock()
	defer c.livenessMu.Unlock()

	if g.stopLiveness != nil {
		g.stopLiveness()
		g.stopLiveness = nil
	}
}

func (c *Conn) waitLiveness() {
	c.livenessMu.Lock()
	done := c.livenessDone
	c.livenessMu.Unlock()

	if done != nil {
		<-done
	}
}

// livenessLoop pings the venue when the connection is idle and disposes
// the transport after too long without inbound traffic.
func (c *Conn) livenessLoop(ctx context.Context, g *generation, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cfg.CheckInterval)
	defer ticker.Stop()

	limit := time.Duration(float64(c.cfg.PingInterval) * c.cfg.InactivityMultiplier)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if c.currentGen() != g {
			return
		}

		now := time.Now()
		silence := now.Sub(time.Unix(0, c.lastReceived.Load()))
		if silence > limit {
			c.logger.Error("no message received, disposing transport",
				"silence", silence,
				"limit", limit,
			)
			c.dispose(g, DisconnectNoMessageReceived)
			return
		}

		if now.Sub(time.Unix(0, c.lastSent.Load())) >= c.cfg.PingInterval {
			if err := c.write([]byte(fix.HeartbeatFrame), metrics.ClassPing); err != nil {
				c.logger.Warn("failed to send ping", "error", err)
			}
		}
	}
}

// processLoop decodes and dispatches inbound frames one at a time.
func (c *Conn) processLoop() {
	defer close(c.processingDone)

	for {
		frame, ok := c.inbound.Pop()
		if !ok {
			return
		}
		metrics.InboundQueueDepth.WithLabelValues(c.cfg.Name).Set(float64(c.inbound.Len()))
		c.process(frame)
	}
}

func (c *Conn) process(frame inboundFrame) {
	msg, err := c.cfg.Codec.Decode(frame.data)
	if err != nil {
		c.handleDecodeError(frame, err)
		return
	}
	if msg.Kind() == fix.KindHeartbeat {
		return
	}

	start := time.Now()
	c.cfg.Handler(c.ctx, msg)
	elapsed := time.Since(start)

	metrics.HandlerDuration.WithLabelValues(c.cfg.Name).Observe(elapsed.Seconds())
	if elapsed > c.cfg.HandleWarnThreshold {
		c.logger.Warn("slow message handler",
			"kind", msg.Kind(),
			"elapsed", elapsed,
			"queued_for", start.Sub(frame.receivedAt),
		)
	}
}

func (c *Conn) handleDecodeError(frame inboundFrame, err error) {
	switch {
	case errors.Is(err, fix.ErrUnknownMsgType):
		metrics.DecodeErrors.WithLabelValues(c.cfg.Name, "unknown_type").Inc()
		c.logger.Warn("dropping message of unknown type", "error", err)
	default:
		metrics.DecodeErrors.WithLabelValues(c.cfg.Name, "malformed").Inc()
		c.logger.Error("failed to decode message",
			"error", err,
			"frame", string(frame.data),
		)
		select {
		case c.errors <- err:
		default:
		}
		// Only the transport that delivered the frame is torn down.
		c.dispose(frame.gen, DisconnectError)
	}
}

func (c *Conn) onText(g *generation, data []byte, receivedAt time.Time) {
	c.lastReceived.Store(receivedAt.UnixNano())
	metrics.FramesReceived.WithLabelValues(c.cfg.Name).Inc()

	n, ok := c.inbound.Push(inboundFrame{gen: g, data: data, receivedAt: receivedAt})
	if !ok {
		return
	}
	metrics.InboundQueueDepth.WithLabelValues(c.cfg.Name).Set(float64(n))

	if n > c.cfg.BufferWarnThreshold {
		if !c.queueWarned.Swap(true) {
			c.logger.Warn("inbound queue is backing up",
				"length", n,
				"threshold", c.cfg.BufferWarnThreshold,
			)
		}
	} else if n < c.cfg.BufferWarnThreshold/2 {
		c.queueWarned.Store(false)
	}
}

// transportEvents binds a transport's callbacks to its generation.
type transportEvents struct {
	c *Conn
	g *generation
}

func (e *transportEvents) OnText(data []byte, receivedAt time.Time) {
	e.c.onText(e.g, data, receivedAt)
}

func (e *transportEvents) OnBinary(data []byte) {
	e.c.logger.Debug("discarding binary frame", "size", len(data))
}

func (e *transportEvents) OnClose(code int, reason string) {
	e.c.logger.Info("close frame received", "code", code, "reason", reason)
}

// OnDisconnect does not wait: the transport may report from inside a stop
// that is itself part of a publication.
func (e *transportEvents) OnDisconnect(typ DisconnectType, err error) {
	e.c.publish(e.g, typ, err, nil, false)
}
