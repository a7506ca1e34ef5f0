package marketdata_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rickgao/xena-client/internal/connection"
	"github.com/rickgao/xena-client/internal/connection/conntest"
	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/marketdata"
)

func newClient(t *testing.T, f *conntest.Factory) *marketdata.Client {
	t.Helper()
	c, err := marketdata.New(marketdata.Config{
		Conn: connection.Config{
			URL:          "wss://example.test/md",
			PingInterval: time.Hour,
			NewTransport: f.New,
		},
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(c.Shutdown)
	return c
}

func connected(t *testing.T, f *conntest.Factory) *marketdata.Client {
	t.Helper()
	c := newClient(t, f)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return c
}

func nopHandler(context.Context, *marketdata.Client, fix.Message) error { return nil }

func decodeRequest(t *testing.T, frame string) fix.MarketDataRequest {
	t.Helper()
	var req fix.MarketDataRequest
	if err := json.Unmarshal([]byte(frame), &req); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	return req
}

func TestStreamKey(t *testing.T) {
	tests := []struct {
		stream, symbol, postfix string
		want                    string
	}{
		{"market-watch", "", "", "market-watch"},
		{"trades", "BTC/USDT", "", "trades:BTC/USDT"},
		{"DOM", "BTC/USDT", "aggregated", "DOM:BTC/USDT:aggregated"},
		{"candles", "XBTUSD", "1m", "candles:XBTUSD:1m"},
	}

	for _, tt := range tests {
		if got := marketdata.StreamKey(tt.stream, tt.symbol, tt.postfix); got != tt.want {
			t.Errorf("StreamKey(%q, %q, %q) = %q, want %q", tt.stream, tt.symbol, tt.postfix, got, tt.want)
		}
	}
}

func TestSubscribeDOMAggregated(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)

	key, err := c.SubscribeDOMAggregated(context.Background(), "BTC/USDT", nopHandler, fix.ThrottleDOM500, 5)
	if err != nil {
		t.Fatalf("SubscribeDOMAggregated failed: %v", err)
	}
	if key != "DOM:BTC/USDT:aggregated" {
		t.Errorf("key = %q, want %q", key, "DOM:BTC/USDT:aggregated")
	}

	sent := f.Last().Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d frames, want 1", len(sent))
	}
	req := decodeRequest(t, sent[0])

	if req.MsgType != fix.MsgTypeMarketDataRequest {
		t.Errorf("MsgType = %q", req.MsgType)
	}
	if req.MDStreamID != key {
		t.Errorf("MDStreamID = %q, want %q", req.MDStreamID, key)
	}
	if req.SubscriptionRequestType != "1" {
		t.Errorf("SubscriptionRequestType = %q, want 1", req.SubscriptionRequestType)
	}
	if req.ThrottleType != "1" || req.ThrottleTimeUnit != "3" {
		t.Errorf("throttle type/unit = %q/%q, want 1/3", req.ThrottleType, req.ThrottleTimeUnit)
	}
	if req.ThrottleTimeInterval != 500 {
		t.Errorf("ThrottleTimeInterval = %d, want 500", req.ThrottleTimeInterval)
	}
	if req.AggregatedBook != 5 {
		t.Errorf("AggregatedBook = %d, want 5", req.AggregatedBook)
	}
}

func TestSubscribe_Duplicate(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)
	ctx := context.Background()

	if _, err := c.SubscribeTrades(ctx, "XBTUSD", nopHandler, 0); err != nil {
		t.Fatalf("first SubscribeTrades failed: %v", err)
	}
	if _, err := c.SubscribeTrades(ctx, "XBTUSD", nopHandler, 0); !errors.Is(err, marketdata.ErrDuplicateSubscription) {
		t.Errorf("second SubscribeTrades = %v, want %v", err, marketdata.ErrDuplicateSubscription)
	}

	// Arguments are checked before the duplicate.
	if _, err := c.SubscribeTrades(ctx, "XBTUSD", nil, 0); !errors.Is(err, fix.ErrInvalidArgument) {
		t.Errorf("nil handler = %v, want %v", err, fix.ErrInvalidArgument)
	}
	if _, err := c.SubscribeTrades(ctx, "XBTUSD", nopHandler, -time.Millisecond); !errors.Is(err, fix.ErrInvalidArgument) {
		t.Errorf("negative throttle = %v, want %v", err, fix.ErrInvalidArgument)
	}

	if sent := f.Last().Sent(); len(sent) != 1 {
		t.Errorf("sent %d frames, want 1", len(sent))
	}
}

func TestSubscribe_Validation(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"empty stream", func() error {
			_, err := c.Subscribe(ctx, "", "", "", nopHandler, 0, 0)
			return err
		}},
		{"negative aggregation", func() error {
			_, err := c.SubscribeDOMAggregated(ctx, "XBTUSD", nopHandler, 0, -1)
			return err
		}},
		{"dom without symbol", func() error {
			_, err := c.SubscribeDOMAggregated(ctx, "", nopHandler, 0, 0)
			return err
		}},
		{"bad timeframe", func() error {
			_, err := c.SubscribeCandles(ctx, "XBTUSD", "2m", nopHandler, 0)
			return err
		}},
		{"trades without symbol", func() error {
			_, err := c.SubscribeTrades(ctx, " ", nopHandler, 0)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, fix.ErrInvalidArgument) {
				t.Errorf("error = %v, want %v", err, fix.ErrInvalidArgument)
			}
		})
	}

	if keys := c.Subscriptions(); len(keys) != 0 {
		t.Errorf("Subscriptions() = %v, want none", keys)
	}
}

func TestSubscribe_SendFailureRollsBack(t *testing.T) {
	f := &conntest.Factory{}
	c := newClient(t, f)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.SubscribeMarketWatch(ctx, nopHandler)
		if !errors.Is(err, marketdata.ErrNotConnected) {
			t.Errorf("attempt %d: error = %v, want %v", i, err, marketdata.ErrNotConnected)
		}
	}
	if keys := c.Subscriptions(); len(keys) != 0 {
		t.Errorf("Subscriptions() = %v, want none", keys)
	}
}

func TestUnsubscribe(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)
	ctx := context.Background()

	if err := c.Unsubscribe(ctx, "DOM:NOPE:aggregated"); !errors.Is(err, marketdata.ErrSubscriptionNotFound) {
		t.Errorf("Unsubscribe unknown = %v, want %v", err, marketdata.ErrSubscriptionNotFound)
	}

	key, err := c.SubscribeDOMAggregated(ctx, "XBTUSD", nopHandler, fix.ThrottleDOM0, 0)
	if err != nil {
		t.Fatalf("SubscribeDOMAggregated failed: %v", err)
	}
	if err := c.Unsubscribe(ctx, key); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	sent := f.Last().Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d frames, want 2", len(sent))
	}
	sub, unsub := decodeRequest(t, sent[0]), decodeRequest(t, sent[1])
	if unsub.SubscriptionRequestType != "2" {
		t.Errorf("SubscriptionRequestType = %q, want 2", unsub.SubscriptionRequestType)
	}
	if unsub.MDStreamID != sub.MDStreamID {
		t.Errorf("MDStreamID = %q, want %q", unsub.MDStreamID, sub.MDStreamID)
	}

	if err := c.Unsubscribe(ctx, key); !errors.Is(err, marketdata.ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe = %v, want %v", err, marketdata.ErrSubscriptionNotFound)
	}
	if _, err := c.SubscribeDOMAggregated(ctx, "XBTUSD", nopHandler, 0, 0); err != nil {
		t.Errorf("resubscribe failed: %v", err)
	}
}

func TestRefreshRouting(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)

	got := make(chan *fix.MarketDataRefresh, 10)
	key, err := c.SubscribeTrades(context.Background(), "XBTUSD", func(_ context.Context, _ *marketdata.Client, msg fix.Message) error {
		got <- msg.(*fix.MarketDataRefresh)
		return nil
	}, 0)
	if err != nil {
		t.Fatalf("SubscribeTrades failed: %v", err)
	}

	tr := f.Last()
	tr.Receive(`{"35":"W","1500":"trades:OTHER"}`)
	tr.Receive(`{"35":"W","1500":"` + key + `","268":[{"269":"2","270":"100","271":"1"}]}`)
	tr.Receive(`{"35":"X","1500":"` + key + `"}`)

	first := <-got
	if !first.IsSnapshot() || len(first.MDEntries) != 1 {
		t.Errorf("first refresh = %+v, want snapshot with one entry", first)
	}

	select {
	case second := <-got:
		if second.IsSnapshot() {
			t.Error("second refresh should be incremental")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for incremental refresh")
	}
}

func TestRejectRemovesSubscription(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)
	ctx := context.Background()

	rejected := make(chan string, 1)
	h := func(_ context.Context, _ *marketdata.Client, msg fix.Message) error {
		if r, ok := msg.(*fix.MarketDataRequestReject); ok {
			rejected <- r.Text
		}
		return nil
	}

	key, err := c.SubscribeDOMAggregated(ctx, "NOPE", h, 0, 0)
	if err != nil {
		t.Fatalf("SubscribeDOMAggregated failed: %v", err)
	}

	f.Last().Receive(`{"35":"Y","1500":"` + key + `","58":"unknown symbol"}`)

	select {
	case text := <-rejected:
		if text != "unknown symbol" {
			t.Errorf("reject text = %q, want %q", text, "unknown symbol")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reject")
	}

	if keys := c.Subscriptions(); len(keys) != 0 {
		t.Errorf("Subscriptions() = %v, want none", keys)
	}
	if _, err := c.SubscribeDOMAggregated(ctx, "NOPE", h, 0, 0); err != nil {
		t.Errorf("resubscribe after reject failed: %v", err)
	}
}

func TestDisconnectClearsSubscriptions(t *testing.T) {
	f := &conntest.Factory{}
	c := connected(t, f)
	ctx := context.Background()

	if _, err := c.SubscribeCandles(ctx, "XBTUSD", fix.Candle1m, nopHandler, fix.ThrottleCandles250); err != nil {
		t.Fatalf("SubscribeCandles failed: %v", err)
	}
	if _, err := c.SubscribeMarketWatch(ctx, nopHandler); err != nil {
		t.Fatalf("SubscribeMarketWatch failed: %v", err)
	}

	seen := make(chan int, 1)
	c.OnDisconnect(func(connection.DisconnectInfo) { seen <- len(c.Subscriptions()) })

	f.Last().Drop(connection.DisconnectLost, errors.New("reset"))

	select {
	case n := <-seen:
		if n != 0 {
			t.Errorf("subscriptions seen by observer = %d, want 0", n)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for disconnect")
	}

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if _, err := c.SubscribeCandles(ctx, "XBTUSD", fix.Candle1m, nopHandler, 0); err != nil {
		t.Errorf("resubscribe after reconnect failed: %v", err)
	}
}
