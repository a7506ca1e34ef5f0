package fix

import "time"

// Side (54).
const (
	SideBuy  = "1"
	SideSell = "2"
)

// OrdType (40).
const (
	OrdTypeMarket          = "1"
	OrdTypeLimit           = "2"
	OrdTypeStop            = "3"
	OrdTypeMarketIfTouched = "J"
	OrdTypePegged          = "P"
)

// TimeInForce (59).
const (
	TimeInForceGoodTillCancel    = "1"
	TimeInForceImmediateOrCancel = "3"
	TimeInForceFillOrKill        = "4"
)

// PositionEffect (77).
const (
	PositionEffectClose   = "C"
	PositionEffectDefault = "D"
	PositionEffectOpen    = "O"
)

// ExecInst (18).
const (
	ExecInstIgnoreNotionalValueChecks = "x"
	ExecInstOpen                      = "O"
)

// PosTransType (709) and PosMaintAction (712).
const (
	PosTransTypeCollapse  = "20"
	PosMaintActionReplace = "2"
)

// PegOffsetType (836) and PegPriceType (1094).
const (
	PegOffsetTypeBasisPoints    = "2"
	PegPriceTypeTrailingStopPeg = "8"
)

// MassCancelRequestType (530).
const (
	MassCancelRequestTypeSecurity = "1"
	MassCancelRequestTypeAll      = "7"
)

// SubscriptionRequestType (263).
const (
	SubscriptionRequestTypeSnapshotAndUpdates = "1"
	SubscriptionRequestTypeDisable            = "2"
)

// ThrottleType (1612) and ThrottleTimeUnit (1615).
const (
	ThrottleTypeOutstandingRequests = "1"
	ThrottleTimeUnitMilliseconds    = "3"
)

// MarginAmtType (1644).
const (
	MarginAmtTypeCoreMargin    = "7"
	MarginAmtTypeInitialMargin = "11"
)

// BusinessRejectReason (380).
const (
	BusinessRejectReasonUnknownAccount = "4"
	BusinessRejectReasonNotAuthorized  = "8"
)

// MDUpdateAction (279).
const (
	MDUpdateActionNew    = "0"
	MDUpdateActionChange = "1"
	MDUpdateActionDelete = "2"
)

// MDEntryType (269).
const (
	MDEntryTypeBid    = "0"
	MDEntryTypeOffer  = "1"
	MDEntryTypeTrade  = "2"
	MDEntryTypeCandle = "z"
)

// Candle timeframes accepted by candle subscriptions.
const (
	Candle1m   = "1m"
	Candle5m   = "5m"
	Candle15m  = "15m"
	Candle30m  = "30m"
	Candle1h   = "1h"
	Candle4h   = "4h"
	Candle12h  = "12h"
	Candle24h  = "24h"
	Candle168h = "168h"
)

// CandleTimeframes lists every valid candle timeframe.
var CandleTimeframes = []string{
	Candle1m, Candle5m, Candle15m, Candle30m, Candle1h,
	Candle4h, Candle12h, Candle24h, Candle168h,
}

// Throttle presets for the common streams.
const (
	ThrottleDOM0    time.Duration = 0
	ThrottleDOM500                = 500 * time.Millisecond
	ThrottleDOM5000               = 5000 * time.Millisecond

	ThrottleCandles0    time.Duration = 0
	ThrottleCandles250                = 250 * time.Millisecond
	ThrottleCandles1000               = 1000 * time.Millisecond

	ThrottleTrades0    time.Duration = 0
	ThrottleTrades500                = 500 * time.Millisecond
	ThrottleTrades5000               = 5000 * time.Millisecond
)
