// Package conntest provides an in-memory connection.Transport for tests.
package conntest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/xena-client/internal/connection"
)

// Transport records outbound frames and lets tests inject inbound ones.
type Transport struct {
	URL string

	// Knobs, set through Factory.Configure before Start.
	FailStart error
	NeverRun  bool
	FailSend  error
	// AsyncReport delivers disconnects from a new goroutine, as a read
	// loop would.
	AsyncReport bool

	events connection.TransportEvents

	mu        sync.Mutex
	running   bool
	started   int
	stops     int
	sent      []string
	disposals []connection.DisconnectType
	reported  bool

	sentCh chan string
}

func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.FailStart != nil {
		return t.FailStart
	}
	t.started++
	t.running = !t.NeverRun
	return nil
}

func (t *Transport) Stop(code int, reason string) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	t.stops++
	t.mu.Unlock()

	t.report(connection.DisconnectByUser, nil)
	return nil
}

func (t *Transport) SendText(data []byte) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return connection.ErrNotConnected
	}
	if t.FailSend != nil {
		t.mu.Unlock()
		return t.FailSend
	}
	t.sent = append(t.sent, string(data))
	t.mu.Unlock()

	select {
	case t.sentCh <- string(data):
	default:
	}
	return nil
}

func (t *Transport) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Transport) Dispose(typ connection.DisconnectType) {
	t.mu.Lock()
	t.disposals = append(t.disposals, typ)
	wasRunning := t.running
	t.running = false
	t.mu.Unlock()

	if wasRunning {
		t.report(typ, nil)
	}
}

// Receive delivers an inbound text frame as the read goroutine would.
func (t *Transport) Receive(frame string) {
	t.events.OnText([]byte(frame), time.Now())
}

// Drop simulates a disconnect the client did not ask for.
func (t *Transport) Drop(typ connection.DisconnectType, err error) {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	t.report(typ, err)
}

func (t *Transport) report(typ connection.DisconnectType, err error) {
	t.mu.Lock()
	if t.reported {
		t.mu.Unlock()
		return
	}
	t.reported = true
	async := t.AsyncReport
	t.mu.Unlock()

	if async {
		go t.events.OnDisconnect(typ, err)
		return
	}
	t.events.OnDisconnect(typ, err)
}

// Sent returns every frame written so far.
func (t *Transport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

// NextSent waits for the next written frame.
func (t *Transport) NextSent(timeout time.Duration) (string, bool) {
	select {
	case s := <-t.sentCh:
		return s, true
	case <-time.After(timeout):
		return "", false
	}
}

// Disposals returns the types passed to Dispose.
func (t *Transport) Disposals() []connection.DisconnectType {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]connection.DisconnectType(nil), t.disposals...)
}

// Stops returns how many times a running transport was stopped.
func (t *Transport) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

// Factory creates Transports and remembers them.
type Factory struct {
	// Configure, if set, is applied to each new transport.
	Configure func(*Transport)

	mu         sync.Mutex
	transports []*Transport
}

// New satisfies connection.TransportFactory.
func (f *Factory) New(url string, events connection.TransportEvents, _ *slog.Logger) connection.Transport {
	t := &Transport{
		URL:    url,
		events: events,
		sentCh: make(chan string, 1024),
	}
	if f.Configure != nil {
		f.Configure(t)
	}

	f.mu.Lock()
	f.transports = append(f.transports, t)
	f.mu.Unlock()
	return t
}

// Last returns the most recently created transport, or nil.
func (f *Factory) Last() *Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transports) == 0 {
		return nil
	}
	return f.transports[len(f.transports)-1]
}

// Count returns how many transports were created.
func (f *Factory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transports)
}
