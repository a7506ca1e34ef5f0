package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	noStopType       = -1
)

// wsTransport is the gorilla/websocket implementation of Transport.
type wsTransport struct {
	url    string
	events TransportEvents
	logger *slog.Logger

	mu      sync.Mutex // guards conn and start
	conn    *websocket.Conn
	writeMu sync.Mutex

	running  atomic.Bool
	disposed atomic.Bool
	stopType atomic.Int32 // first locally requested cause, noStopType if none
	reported sync.Once
}

// NewWebsocketTransport is the default TransportFactory.
func NewWebsocketTransport(url string, events TransportEvents, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}
	t := &wsTransport{
		url:    url,
		events: events,
		logger: logger,
	}
	t.stopType.Store(noStopType)
	return t
}

// Start dials the venue. A transport that has already run cannot be
// started again.
func (t *wsTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed.Load() {
		return ErrTransportDisposed
	}
	if t.running.Load() {
		return nil
	}
	if t.conn != nil {
		return ErrTransportDisposed
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return err
	}

	t.conn = conn
	t.running.Store(true)

	go t.readLoop(conn)

	t.logger.Debug("websocket connected", "url", t.url)
	return nil
}

// Stop sends a close frame and tears the session down.
func (t *wsTransport) Stop(code int, reason string) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil || !t.running.Swap(false) {
		return nil
	}
	t.stopType.CompareAndSwap(noStopType, int32(DisconnectByUser))

	t.writeMu.Lock()
	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second),
	)
	t.writeMu.Unlock()

	if cerr := conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Dispose closes the socket without a close handshake and marks the
// transport unusable.
func (t *wsTransport) Dispose(typ DisconnectType) {
	if t.disposed.Swap(true) {
		return
	}
	t.stopType.CompareAndSwap(noStopType, int32(typ))
	t.running.Store(false)

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (t *wsTransport) SendText(data []byte) error {
	if !t.running.Load() {
		return ErrNotConnected
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) IsRunning() bool {
	return t.running.Load()
}

// readLoop forwards frames until the socket fails, then reports the
// disconnect.
func (t *wsTransport) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		receivedAt := time.Now() // Capture timestamp immediately

		if err != nil {
			t.finish(conn, err)
			return
		}

		switch msgType {
		case websocket.TextMessage:
			t.events.OnText(data, receivedAt)
		case websocket.BinaryMessage:
			t.events.OnBinary(data)
		}
	}
}

func (t *wsTransport) finish(conn *websocket.Conn, err error) {
	t.running.Store(false)
	conn.Close()

	typ := DisconnectLost
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		t.events.OnClose(closeErr.Code, closeErr.Text)
		typ = DisconnectByServer
	}
	if st := t.stopType.Load(); st != noStopType {
		typ = DisconnectType(st)
	}
	if typ.Graceful() {
		err = nil
	}

	t.reported.Do(func() {
		t.events.OnDisconnect(typ, err)
	})
}
