package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rickgao/xena-client/internal/config"
	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/marketdata"
)

type call struct {
	method      string
	symbol      string
	timeframe   string
	throttle    time.Duration
	aggregation int64
}

type fakeSubscriber struct {
	calls []call
	err   error
}

func (f *fakeSubscriber) SubscribeDOMAggregated(_ context.Context, symbol string, _ marketdata.Handler, throttle time.Duration, aggregation int64) (string, error) {
	f.calls = append(f.calls, call{method: "dom", symbol: symbol, throttle: throttle, aggregation: aggregation})
	return marketdata.StreamKey(marketdata.StreamDOM, symbol, "aggregated"), f.err
}

func (f *fakeSubscriber) SubscribeTrades(_ context.Context, symbol string, _ marketdata.Handler, throttle time.Duration) (string, error) {
	f.calls = append(f.calls, call{method: "trades", symbol: symbol, throttle: throttle})
	return marketdata.StreamKey(marketdata.StreamTrades, symbol, ""), f.err
}

func (f *fakeSubscriber) SubscribeCandles(_ context.Context, symbol, timeframe string, _ marketdata.Handler, throttle time.Duration) (string, error) {
	f.calls = append(f.calls, call{method: "candles", symbol: symbol, timeframe: timeframe, throttle: throttle})
	return marketdata.StreamKey(marketdata.StreamCandles, symbol, timeframe), f.err
}

func (f *fakeSubscriber) SubscribeMarketWatch(_ context.Context, _ marketdata.Handler) (string, error) {
	f.calls = append(f.calls, call{method: "market-watch"})
	return marketdata.StreamMarketWatch, f.err
}

func noop(context.Context, *marketdata.Client, fix.Message) error { return nil }

func TestSubscribeAll(t *testing.T) {
	zero := time.Duration(0)
	agg := int64(25)
	md := config.MarketDataConfig{
		DefaultThrottle:    500 * time.Millisecond,
		DefaultAggregation: 5,
		Streams: []config.StreamConfig{
			{Type: config.StreamDOM, Symbol: "XBTUSD"},
			{Type: config.StreamDOM, Symbol: "ETHUSD", Aggregation: &agg, Throttle: &zero},
			{Type: config.StreamTrades, Symbol: "XBTUSD"},
			{Type: config.StreamCandles, Symbol: "XBTUSD", Timeframe: fix.Candle1m},
			{Type: config.StreamMarketWatch},
		},
	}
	f := &fakeSubscriber{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := subscribeAll(context.Background(), f, md, noop, logger); err != nil {
		t.Fatalf("subscribeAll failed: %v", err)
	}

	want := []call{
		{method: "dom", symbol: "XBTUSD", throttle: 500 * time.Millisecond, aggregation: 5},
		{method: "dom", symbol: "ETHUSD", throttle: 0, aggregation: 25},
		{method: "trades", symbol: "XBTUSD", throttle: 500 * time.Millisecond},
		{method: "candles", symbol: "XBTUSD", timeframe: "1m", throttle: 500 * time.Millisecond},
		{method: "market-watch"},
	}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %d, want %d", len(f.calls), len(want))
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Errorf("calls[%d] = %+v, want %+v", i, f.calls[i], want[i])
		}
	}
}

func TestSubscribeAll_StopsOnError(t *testing.T) {
	md := config.MarketDataConfig{
		Streams: []config.StreamConfig{
			{Type: config.StreamTrades, Symbol: "XBTUSD"},
			{Type: config.StreamTrades, Symbol: "ETHUSD"},
		},
	}
	f := &fakeSubscriber{err: marketdata.ErrNotConnected}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := subscribeAll(context.Background(), f, md, noop, logger)
	if !errors.Is(err, marketdata.ErrNotConnected) {
		t.Fatalf("subscribeAll() = %v, want ErrNotConnected", err)
	}
	if len(f.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(f.calls))
	}
}

func TestSubscribe_UnknownType(t *testing.T) {
	_, err := subscribe(context.Background(), &fakeSubscriber{}, config.MarketDataConfig{}, config.StreamConfig{Type: "book"}, noop)
	if err == nil {
		t.Fatal("subscribe() expected error for unknown type")
	}
}
