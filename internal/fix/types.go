package fix

// Message types (tag 35).
const (
	MsgTypeHeartbeat                     = "0"
	MsgTypeLogon                         = "A"
	MsgTypeReject                        = "3"
	MsgTypeExecutionReport               = "8"
	MsgTypeOrderCancelReject             = "9"
	MsgTypeNewOrderSingle                = "D"
	MsgTypeOrderCancelRequest            = "F"
	MsgTypeOrderCancelReplaceRequest     = "G"
	MsgTypeMarketDataRequest             = "V"
	MsgTypeMarketDataSnapshotFullRefresh = "W"
	MsgTypeMarketDataIncrementalRefresh  = "X"
	MsgTypeMarketDataRequestReject       = "Y"
	MsgTypeOrderMassStatusRequest        = "AF"
	MsgTypePositionMaintenanceRequest    = "AL"
	MsgTypePositionMaintenanceReport     = "AM"
	MsgTypeRequestForPositions           = "AN"
	MsgTypeMarginRequirementReport       = "CJ"
	MsgTypeOrderMassCancelRequest        = "q"
	MsgTypeOrderMassCancelReport         = "r"
	MsgTypeAccountStatusReportRequest    = "XAA"
)

// Kind identifies the Go type a frame decodes into. Several message types
// may share a kind (snapshot and incremental refreshes are both
// KindMarketDataRefresh).
type Kind string

const (
	KindHeartbeat                  Kind = "Heartbeat"
	KindLogon                      Kind = "Logon"
	KindReject                     Kind = "Reject"
	KindExecutionReport            Kind = "ExecutionReport"
	KindOrderCancelReject          Kind = "OrderCancelReject"
	KindNewOrderSingle             Kind = "NewOrderSingle"
	KindOrderCancelRequest         Kind = "OrderCancelRequest"
	KindOrderCancelReplaceRequest  Kind = "OrderCancelReplaceRequest"
	KindMarketDataRequest          Kind = "MarketDataRequest"
	KindMarketDataRefresh          Kind = "MarketDataRefresh"
	KindMarketDataRequestReject    Kind = "MarketDataRequestReject"
	KindOrderMassStatusRequest     Kind = "OrderMassStatusRequest"
	KindPositionMaintenanceRequest Kind = "PositionMaintenanceRequest"
	KindPositionMaintenanceReport  Kind = "PositionMaintenanceReport"
	KindPositionsRequest           Kind = "PositionsRequest"
	KindMarginRequirementReport    Kind = "MarginRequirementReport"
	KindOrderMassCancelRequest     Kind = "OrderMassCancelRequest"
	KindOrderMassCancelReport      Kind = "OrderMassCancelReport"
	KindAccountStatusReportRequest Kind = "AccountStatusReportRequest"
)

// Message is implemented by every frame the codec understands.
//
// Kind must not dereference its receiver: the trading client calls it on a
// nil pointer to learn the kind of a type parameter.
type Message interface {
	Kind() Kind
	MsgHeader() *Header
}

// Header carries the fields shared by all messages.
type Header struct {
	MsgType string `json:"35"`
}

// MsgHeader returns the message header.
func (h *Header) MsgHeader() *Header { return h }

// defaultMsgTypes is used by Encode when a command leaves tag 35 empty.
var defaultMsgTypes = map[Kind]string{
	KindHeartbeat:                  MsgTypeHeartbeat,
	KindLogon:                      MsgTypeLogon,
	KindNewOrderSingle:             MsgTypeNewOrderSingle,
	KindOrderCancelRequest:         MsgTypeOrderCancelRequest,
	KindOrderCancelReplaceRequest:  MsgTypeOrderCancelReplaceRequest,
	KindMarketDataRequest:          MsgTypeMarketDataRequest,
	KindOrderMassStatusRequest:     MsgTypeOrderMassStatusRequest,
	KindPositionMaintenanceRequest: MsgTypePositionMaintenanceRequest,
	KindPositionsRequest:           MsgTypeRequestForPositions,
	KindOrderMassCancelRequest:     MsgTypeOrderMassCancelRequest,
	KindAccountStatusReportRequest: MsgTypeAccountStatusReportRequest,
}

// decoders lists the inbound message types. Anything else is reported as
// ErrUnknownMsgType.
var decoders = map[string]func() Message{
	MsgTypeHeartbeat:                     func() Message { return &Heartbeat{} },
	MsgTypeLogon:                         func() Message { return &Logon{} },
	MsgTypeReject:                        func() Message { return &Reject{} },
	MsgTypeExecutionReport:               func() Message { return &ExecutionReport{} },
	MsgTypeOrderCancelReject:             func() Message { return &OrderCancelReject{} },
	MsgTypeMarketDataSnapshotFullRefresh: func() Message { return &MarketDataRefresh{} },
	MsgTypeMarketDataIncrementalRefresh:  func() Message { return &MarketDataRefresh{} },
	MsgTypeMarketDataRequestReject:       func() Message { return &MarketDataRequestReject{} },
	MsgTypePositionMaintenanceReport:     func() Message { return &PositionMaintenanceReport{} },
	MsgTypeMarginRequirementReport:       func() Message { return &MarginRequirementReport{} },
	MsgTypeOrderMassCancelReport:         func() Message { return &OrderMassCancelReport{} },
}
