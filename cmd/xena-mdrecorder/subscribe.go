package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/xena-client/internal/config"
	"github.com/rickgao/xena-client/internal/marketdata"
)

// subscriber is the part of marketdata.Client the recorder subscribes with.
type subscriber interface {
	SubscribeDOMAggregated(ctx context.Context, symbol string, h marketdata.Handler, throttle time.Duration, aggregation int64) (string, error)
	SubscribeTrades(ctx context.Context, symbol string, h marketdata.Handler, throttle time.Duration) (string, error)
	SubscribeCandles(ctx context.Context, symbol, timeframe string, h marketdata.Handler, throttle time.Duration) (string, error)
	SubscribeMarketWatch(ctx context.Context, h marketdata.Handler) (string, error)
}

// subscribeAll subscribes every configured stream. The client forgets its
// subscriptions on disconnect, so this runs again for every session.
func subscribeAll(ctx context.Context, client subscriber, md config.MarketDataConfig, h marketdata.Handler, logger *slog.Logger) error {
	for _, s := range md.Streams {
		key, err := subscribe(ctx, client, md, s, h)
		if err != nil {
			return fmt.Errorf("subscribe %s %s: %w", s.Type, s.Symbol, err)
		}
		logger.Info("subscribed", "stream", key)
	}
	return nil
}

func subscribe(ctx context.Context, client subscriber, md config.MarketDataConfig, s config.StreamConfig, h marketdata.Handler) (string, error) {
	throttle := md.ThrottleFor(s)

	switch s.Type {
	case config.StreamDOM:
		return client.SubscribeDOMAggregated(ctx, s.Symbol, h, throttle, md.AggregationFor(s))
	case config.StreamTrades:
		return client.SubscribeTrades(ctx, s.Symbol, h, throttle)
	case config.StreamCandles:
		return client.SubscribeCandles(ctx, s.Symbol, s.Timeframe, h, throttle)
	case config.StreamMarketWatch:
		return client.SubscribeMarketWatch(ctx, h)
	default:
		return "", fmt.Errorf("unknown stream type %q", s.Type)
	}
}
