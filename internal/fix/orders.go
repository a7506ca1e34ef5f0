package fix

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderParams describes a new order. Zero prices are left off the wire.
type OrderParams struct {
	ClOrdID     string
	Symbol      string
	Side        string
	OrderQty    decimal.Decimal
	Account     uint64
	Price       decimal.Decimal
	StopPx      decimal.Decimal
	TimeInForce string
	ExecInst    []string
	PositionID  uint64

	StopLossPrice   decimal.Decimal
	TakeProfitPrice decimal.Decimal
	TrailingOffset  decimal.Decimal
	CapPrice        decimal.Decimal
}

// Validate checks the fields every order type needs.
func (p OrderParams) Validate() error {
	if err := NotEmpty("clOrdID", p.ClOrdID); err != nil {
		return err
	}
	if err := NotEmpty("symbol", p.Symbol); err != nil {
		return err
	}
	if err := OneOf("side", p.Side, Sides); err != nil {
		return err
	}
	if !p.OrderQty.IsPositive() {
		return fmt.Errorf("%w: orderQty must be > 0", ErrInvalidArgument)
	}
	if p.TimeInForce != "" {
		if err := OneOf("timeInForce", p.TimeInForce, TimeInForces); err != nil {
			return err
		}
	}
	return nil
}

// NewOrder builds a NewOrderSingle of the given type. A non-zero
// PositionID closes that position.
func NewOrder(ordType string, p OrderParams) *NewOrderSingle {
	o := &NewOrderSingle{
		Header:      Header{MsgType: MsgTypeNewOrderSingle},
		ClOrdID:     p.ClOrdID,
		Symbol:      p.Symbol,
		Side:        p.Side,
		OrdType:     ordType,
		TimeInForce: p.TimeInForce,
		Price:       p.Price,
		StopPx:      p.StopPx,
		OrderQty:    p.OrderQty,
		Account:     p.Account,
		PositionID:  p.PositionID,
	}
	if len(p.ExecInst) > 0 {
		o.ExecInst = slices.Clone(p.ExecInst)
	}
	if p.PositionID != 0 {
		o.PositionEffect = PositionEffectClose
	}
	if !p.StopLossPrice.IsZero() {
		o.AddStopLoss(p.StopLossPrice)
	}
	if !p.TakeProfitPrice.IsZero() {
		o.AddTakeProfit(p.TakeProfitPrice)
	}
	if !p.TrailingOffset.IsZero() {
		o.AddTrailingStopLoss(p.TrailingOffset, p.CapPrice)
	}
	o.TransactTime = time.Now().UnixNano()
	return o
}

// AddStopLoss attaches a stop-loss leg.
func (o *NewOrderSingle) AddStopLoss(stopPx decimal.Decimal) {
	o.SLTP = append(o.SLTP, SLTP{OrdType: OrdTypeStop, StopPx: stopPx})
}

// AddTakeProfit attaches a take-profit leg.
func (o *NewOrderSingle) AddTakeProfit(price decimal.Decimal) {
	o.SLTP = append(o.SLTP, SLTP{OrdType: OrdTypeLimit, Price: price})
}

// AddTrailingStopLoss attaches a trailing stop leg with the offset in basis
// points. capPrice is optional.
func (o *NewOrderSingle) AddTrailingStopLoss(offset, capPrice decimal.Decimal) {
	o.SLTP = append(o.SLTP, SLTP{
		OrdType:        OrdTypeStop,
		PegPriceType:   PegPriceTypeTrailingStopPeg,
		PegOffsetType:  PegOffsetTypeBasisPoints,
		PegOffsetValue: offset,
		CapPrice:       capPrice,
	})
}

// ForPosition makes the order close the given position.
func (o *NewOrderSingle) ForPosition(positionID uint64) {
	o.PositionID = positionID
	o.PositionEffect = PositionEffectClose
}

// CancelRequest builds a cancel for the order an execution report describes.
func (er *ExecutionReport) CancelRequest(clOrdID string) *OrderCancelRequest {
	return &OrderCancelRequest{
		Header:       Header{MsgType: MsgTypeOrderCancelRequest},
		ClOrdID:      clOrdID,
		OrigClOrdID:  er.ClOrdID,
		Symbol:       er.Symbol,
		Side:         er.Side,
		Account:      er.Account,
		TransactTime: time.Now().UnixNano(),
	}
}

// CancelReplaceRequest builds an amend for the order an execution report
// describes, carrying over its current price, quantity and legs.
func (er *ExecutionReport) CancelReplaceRequest(clOrdID string) *OrderCancelReplaceRequest {
	return &OrderCancelReplaceRequest{
		Header:       Header{MsgType: MsgTypeOrderCancelReplaceRequest},
		ClOrdID:      clOrdID,
		OrigClOrdID:  er.ClOrdID,
		Symbol:       er.Symbol,
		Side:         er.Side,
		Account:      er.Account,
		Price:        er.Price,
		StopPx:       er.StopPx,
		OrderQty:     er.OrderQty,
		TransactTime: time.Now().UnixNano(),
		SLTP:         slices.Clone(er.SLTP),
	}
}

// NewOrderMassCancel builds a mass cancel. An empty symbol cancels every
// order on the account.
func NewOrderMassCancel(account uint64, clOrdID, symbol, side, positionEffect string) *OrderMassCancelRequest {
	r := &OrderMassCancelRequest{
		Header:                Header{MsgType: MsgTypeOrderMassCancelRequest},
		ClOrdID:               clOrdID,
		Account:               account,
		Symbol:                symbol,
		Side:                  side,
		PositionEffect:        positionEffect,
		MassCancelRequestType: MassCancelRequestTypeSecurity,
		TransactTime:          time.Now().UnixNano(),
	}
	if strings.TrimSpace(symbol) == "" {
		r.MassCancelRequestType = MassCancelRequestTypeAll
	}
	return r
}

// Validate checks the mass cancel arguments.
func (r *OrderMassCancelRequest) Validate() error {
	if err := NotEmpty("clOrdID", r.ClOrdID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Side) != "" {
		if err := OneOf("side", r.Side, Sides); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.PositionEffect) != "" {
		if err := OneOf("positionEffect", r.PositionEffect, PositionEffects); err != nil {
			return err
		}
	}
	return nil
}

// NewCollapsePositions builds a request that collapses all positions on
// symbol into one.
func NewCollapsePositions(account uint64, symbol, reqID string) *PositionMaintenanceRequest {
	return &PositionMaintenanceRequest{
		Header:         Header{MsgType: MsgTypePositionMaintenanceRequest},
		Account:        account,
		Symbol:         symbol,
		PosReqID:       reqID,
		PosTransType:   PosTransTypeCollapse,
		PosMaintAction: PosMaintActionReplace,
		TransactTime:   time.Now().UnixNano(),
	}
}
