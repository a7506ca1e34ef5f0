package fix

import "github.com/shopspring/decimal"

// Heartbeat is exchanged in both directions to keep the connection alive.
type Heartbeat struct {
	Header
	TestReqID string `json:"112,omitempty"`
}

func (*Heartbeat) Kind() Kind { return KindHeartbeat }

// Logon is both the authentication command and the venue's response.
// RejectText is only set on a failed response.
type Logon struct {
	Header
	Username    string   `json:"553,omitempty"`
	Password    string   `json:"554,omitempty"`
	RawData     string   `json:"96,omitempty"`
	SendingTime int64    `json:"52,omitempty"`
	Account     []uint64 `json:"1,omitempty"`
	RejectText  string   `json:"1328,omitempty"`
}

func (*Logon) Kind() Kind { return KindLogon }

// Reject is a session-level reject of a malformed or unsupported command.
type Reject struct {
	Header
	RefSeqNum           int64  `json:"45,omitempty"`
	RefTagID            int64  `json:"371,omitempty"`
	RefMsgType          string `json:"372,omitempty"`
	SessionRejectReason string `json:"373,omitempty"`
	RejectReason        string `json:"380,omitempty"`
	Text                string `json:"58,omitempty"`
}

func (*Reject) Kind() Kind { return KindReject }

// SLTP is a stop-loss or take-profit leg attached to an order.
type SLTP struct {
	OrdType        string          `json:"40,omitempty"`
	Price          decimal.Decimal `json:"44,omitzero"`
	StopPx         decimal.Decimal `json:"99,omitzero"`
	CapPrice       decimal.Decimal `json:"1199,omitzero"`
	PegPriceType   string          `json:"1094,omitempty"`
	PegOffsetType  string          `json:"836,omitempty"`
	PegOffsetValue decimal.Decimal `json:"211,omitzero"`
}

// NewOrderSingle places an order.
type NewOrderSingle struct {
	Header
	ClOrdID        string          `json:"11,omitempty"`
	Symbol         string          `json:"55,omitempty"`
	Side           string          `json:"54,omitempty"`
	OrdType        string          `json:"40,omitempty"`
	TimeInForce    string          `json:"59,omitempty"`
	Price          decimal.Decimal `json:"44,omitzero"`
	StopPx         decimal.Decimal `json:"99,omitzero"`
	OrderQty       decimal.Decimal `json:"38,omitzero"`
	Account        uint64          `json:"1,omitempty"`
	ExecInst       []string        `json:"18,omitempty"`
	PositionID     uint64          `json:"2618,omitempty"`
	PositionEffect string          `json:"77,omitempty"`
	TransactTime   int64           `json:"60,omitempty"`
	Text           string          `json:"58,omitempty"`
	SLTP           []SLTP          `json:"5000,omitempty"`
}

func (*NewOrderSingle) Kind() Kind { return KindNewOrderSingle }

// OrderCancelRequest cancels a single order by ClOrdID or OrderID.
type OrderCancelRequest struct {
	Header
	ClOrdID      string `json:"11,omitempty"`
	OrigClOrdID  string `json:"41,omitempty"`
	OrderID      string `json:"37,omitempty"`
	Symbol       string `json:"55,omitempty"`
	Side         string `json:"54,omitempty"`
	Account      uint64 `json:"1,omitempty"`
	TransactTime int64  `json:"60,omitempty"`
}

func (*OrderCancelRequest) Kind() Kind { return KindOrderCancelRequest }

// OrderCancelReplaceRequest amends a working order.
type OrderCancelReplaceRequest struct {
	Header
	ClOrdID      string          `json:"11,omitempty"`
	OrigClOrdID  string          `json:"41,omitempty"`
	OrderID      string          `json:"37,omitempty"`
	Symbol       string          `json:"55,omitempty"`
	Side         string          `json:"54,omitempty"`
	Account      uint64          `json:"1,omitempty"`
	Price        decimal.Decimal `json:"44,omitzero"`
	StopPx       decimal.Decimal `json:"99,omitzero"`
	OrderQty     decimal.Decimal `json:"38,omitzero"`
	ExecInst     []string        `json:"18,omitempty"`
	TransactTime int64           `json:"60,omitempty"`
	SLTP         []SLTP          `json:"5000,omitempty"`
}

func (*OrderCancelReplaceRequest) Kind() Kind { return KindOrderCancelReplaceRequest }

// ExecutionReport reports an order state change or a fill.
type ExecutionReport struct {
	Header
	Account        uint64          `json:"1,omitempty"`
	ClOrdID        string          `json:"11,omitempty"`
	OrigClOrdID    string          `json:"41,omitempty"`
	OrderID        string          `json:"37,omitempty"`
	ExecID         string          `json:"17,omitempty"`
	ExecType       string          `json:"150,omitempty"`
	OrdStatus      string          `json:"39,omitempty"`
	OrdRejReason   string          `json:"103,omitempty"`
	Symbol         string          `json:"55,omitempty"`
	Side           string          `json:"54,omitempty"`
	OrdType        string          `json:"40,omitempty"`
	TimeInForce    string          `json:"59,omitempty"`
	Price          decimal.Decimal `json:"44,omitzero"`
	StopPx         decimal.Decimal `json:"99,omitzero"`
	OrderQty       decimal.Decimal `json:"38,omitzero"`
	LastQty        decimal.Decimal `json:"32,omitzero"`
	LastPx         decimal.Decimal `json:"31,omitzero"`
	LeavesQty      decimal.Decimal `json:"151,omitzero"`
	CumQty         decimal.Decimal `json:"14,omitzero"`
	AvgPx          decimal.Decimal `json:"6,omitzero"`
	PositionID     uint64          `json:"2618,omitempty"`
	PositionEffect string          `json:"77,omitempty"`
	TransactTime   int64           `json:"60,omitempty"`
	Text           string          `json:"58,omitempty"`
	SLTP           []SLTP          `json:"5000,omitempty"`
}

func (*ExecutionReport) Kind() Kind { return KindExecutionReport }

// OrderCancelReject rejects a cancel or cancel/replace request.
type OrderCancelReject struct {
	Header
	Account          uint64 `json:"1,omitempty"`
	ClOrdID          string `json:"11,omitempty"`
	OrigClOrdID      string `json:"41,omitempty"`
	OrderID          string `json:"37,omitempty"`
	OrdStatus        string `json:"39,omitempty"`
	CxlRejReason     string `json:"102,omitempty"`
	CxlRejResponseTo string `json:"434,omitempty"`
	Symbol           string `json:"55,omitempty"`
	TransactTime     int64  `json:"60,omitempty"`
	Text             string `json:"58,omitempty"`
}

func (*OrderCancelReject) Kind() Kind { return KindOrderCancelReject }

// MarketDataRequest subscribes to or disables a market-data stream.
type MarketDataRequest struct {
	Header
	MDStreamID              string `json:"1500,omitempty"`
	MDReqID                 string `json:"262,omitempty"`
	SubscriptionRequestType string `json:"263,omitempty"`
	MarketDepth             int64  `json:"264,omitempty"`
	AggregatedBook          int64  `json:"266,omitempty"`
	ThrottleType            string `json:"1612,omitempty"`
	ThrottleTimeInterval    int64  `json:"1614,omitempty"`
	ThrottleTimeUnit        string `json:"1615,omitempty"`
}

func (*MarketDataRequest) Kind() Kind { return KindMarketDataRequest }

// Clone returns a copy of the request.
func (r *MarketDataRequest) Clone() *MarketDataRequest {
	c := *r
	return &c
}

// MDEntry is a single book level, trade, or candle in a refresh.
type MDEntry struct {
	MDUpdateAction string          `json:"279,omitempty"`
	MDEntryType    string          `json:"269,omitempty"`
	MDEntryPx      decimal.Decimal `json:"270,omitzero"`
	MDEntrySize    decimal.Decimal `json:"271,omitzero"`
	NumberOfOrders int64           `json:"346,omitempty"`
	TransactTime   int64           `json:"60,omitempty"`
	TradeID        string          `json:"1003,omitempty"`
	AggressorSide  string          `json:"2446,omitempty"`
	FirstPx        decimal.Decimal `json:"1025,omitzero"`
	LastPx         decimal.Decimal `json:"31,omitzero"`
	HighPx         decimal.Decimal `json:"332,omitzero"`
	LowPx          decimal.Decimal `json:"333,omitzero"`
	BuyVolume      decimal.Decimal `json:"330,omitzero"`
	SellVolume     decimal.Decimal `json:"331,omitzero"`
}

// MarketDataRefresh is either a full snapshot (W) or an incremental
// update (X) for one stream.
type MarketDataRefresh struct {
	Header
	MDStreamID     string    `json:"1500,omitempty"`
	Symbol         string    `json:"55,omitempty"`
	MDBookType     string    `json:"1021,omitempty"`
	LastUpdateTime int64     `json:"779,omitempty"`
	TransactTime   int64     `json:"60,omitempty"`
	MDEntries      []MDEntry `json:"268,omitempty"`
}

func (*MarketDataRefresh) Kind() Kind { return KindMarketDataRefresh }

// IsSnapshot reports whether the refresh replaces the stream state.
func (r *MarketDataRefresh) IsSnapshot() bool {
	return r.MsgType == MsgTypeMarketDataSnapshotFullRefresh
}

// MarketDataRequestReject is the terminal reply to a refused subscription.
type MarketDataRequestReject struct {
	Header
	MDStreamID     string `json:"1500,omitempty"`
	MDReqRejReason string `json:"281,omitempty"`
	Text           string `json:"58,omitempty"`
}

func (*MarketDataRequestReject) Kind() Kind { return KindMarketDataRequestReject }

// AccountStatusReportRequest asks for balances and margin of an account.
type AccountStatusReportRequest struct {
	Header
	Account                uint64 `json:"1,omitempty"`
	AccountStatusRequestID string `json:"42513,omitempty"`
}

func (*AccountStatusReportRequest) Kind() Kind { return KindAccountStatusReportRequest }

// OrderMassStatusRequest asks for all active orders and recent fills.
type OrderMassStatusRequest struct {
	Header
	Account         uint64 `json:"1,omitempty"`
	MassStatusReqID string `json:"584,omitempty"`
}

func (*OrderMassStatusRequest) Kind() Kind { return KindOrderMassStatusRequest }

// PositionsRequest asks for open positions.
type PositionsRequest struct {
	Header
	Account  uint64 `json:"1,omitempty"`
	PosReqID string `json:"710,omitempty"`
}

func (*PositionsRequest) Kind() Kind { return KindPositionsRequest }

// PositionMaintenanceRequest collapses positions on a margin account.
type PositionMaintenanceRequest struct {
	Header
	Account        uint64 `json:"1,omitempty"`
	Symbol         string `json:"55,omitempty"`
	PosReqID       string `json:"710,omitempty"`
	PosTransType   string `json:"709,omitempty"`
	PosMaintAction string `json:"712,omitempty"`
	TransactTime   int64  `json:"60,omitempty"`
}

func (*PositionMaintenanceRequest) Kind() Kind { return KindPositionMaintenanceRequest }

// PositionMaintenanceReport answers a PositionMaintenanceRequest.
type PositionMaintenanceReport struct {
	Header
	Account        uint64 `json:"1,omitempty"`
	Symbol         string `json:"55,omitempty"`
	PosReqID       string `json:"710,omitempty"`
	PosTransType   string `json:"709,omitempty"`
	PosMaintAction string `json:"712,omitempty"`
	PosMaintStatus string `json:"722,omitempty"`
	PosMaintResult string `json:"723,omitempty"`
	Text           string `json:"58,omitempty"`
}

func (*PositionMaintenanceReport) Kind() Kind { return KindPositionMaintenanceReport }

// MarginAmount is one margin requirement line.
type MarginAmount struct {
	MarginAmtType string          `json:"1644,omitempty"`
	MarginAmt     decimal.Decimal `json:"1645,omitzero"`
	MarginAmtCcy  string          `json:"1646,omitempty"`
}

// MarginRequirementReport carries margin requirements for an account.
type MarginRequirementReport struct {
	Header
	Account                uint64         `json:"1,omitempty"`
	AccountStatusRequestID string         `json:"42513,omitempty"`
	MarginReqmtRptType     string         `json:"1638,omitempty"`
	MarginAmounts          []MarginAmount `json:"1643,omitempty"`
	RejectReason           string         `json:"380,omitempty"`
	Text                   string         `json:"58,omitempty"`
	LastUpdateTime         int64          `json:"779,omitempty"`
}

func (*MarginRequirementReport) Kind() Kind { return KindMarginRequirementReport }

// OrderMassCancelRequest cancels every order, or every order on a symbol.
type OrderMassCancelRequest struct {
	Header
	ClOrdID               string `json:"11,omitempty"`
	Account               uint64 `json:"1,omitempty"`
	MassCancelRequestType string `json:"530,omitempty"`
	Symbol                string `json:"55,omitempty"`
	Side                  string `json:"54,omitempty"`
	PositionEffect        string `json:"77,omitempty"`
	TransactTime          int64  `json:"60,omitempty"`
}

func (*OrderMassCancelRequest) Kind() Kind { return KindOrderMassCancelRequest }

// OrderMassCancelReport answers an OrderMassCancelRequest.
type OrderMassCancelReport struct {
	Header
	ClOrdID                string `json:"11,omitempty"`
	Account                uint64 `json:"1,omitempty"`
	MassCancelRequestType  string `json:"530,omitempty"`
	MassCancelResponse     string `json:"531,omitempty"`
	MassCancelRejectReason string `json:"532,omitempty"`
	TotalAffectedOrders    int64  `json:"533,omitempty"`
	Symbol                 string `json:"55,omitempty"`
	Text                   string `json:"58,omitempty"`
}

func (*OrderMassCancelReport) Kind() Kind { return KindOrderMassCancelReport }
