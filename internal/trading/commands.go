package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/xena-client/internal/fix"
)

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// AccountStatusReport requests balances and margin for account. The
// request id is generated when empty and returned.
func (c *Client) AccountStatusReport(ctx context.Context, account uint64, reqID string) (string, error) {
	reqID = orNewID(reqID)
	return reqID, c.SendCommand(ctx, &fix.AccountStatusReportRequest{
		Header:                 fix.Header{MsgType: fix.MsgTypeAccountStatusReportRequest},
		Account:                account,
		AccountStatusRequestID: reqID,
	})
}

// OrdersAndFills requests active orders and last fills for account.
func (c *Client) OrdersAndFills(ctx context.Context, account uint64, reqID string) (string, error) {
	reqID = orNewID(reqID)
	return reqID, c.SendCommand(ctx, &fix.OrderMassStatusRequest{
		Header:          fix.Header{MsgType: fix.MsgTypeOrderMassStatusRequest},
		Account:         account,
		MassStatusReqID: reqID,
	})
}

// Positions requests open positions for account.
func (c *Client) Positions(ctx context.Context, account uint64, reqID string) (string, error) {
	reqID = orNewID(reqID)
	return reqID, c.SendCommand(ctx, &fix.PositionsRequest{
		Header:   fix.Header{MsgType: fix.MsgTypeRequestForPositions},
		Account:  account,
		PosReqID: reqID,
	})
}

// CollapsePositions merges all positions on symbol into one. Margin
// accounts only.
func (c *Client) CollapsePositions(ctx context.Context, account uint64, symbol, reqID string) (string, error) {
	if err := fix.NotEmpty("symbol", symbol); err != nil {
		return "", err
	}
	reqID = orNewID(reqID)
	return reqID, c.SendCommand(ctx, fix.NewCollapsePositions(account, symbol, reqID))
}

// OrderMassCancel cancels every order on account, or only those on symbol
// when it is set. side and positionEffect further narrow it when set.
func (c *Client) OrderMassCancel(ctx context.Context, account uint64, clOrdID, symbol, side, positionEffect string) (string, error) {
	req := fix.NewOrderMassCancel(account, orNewID(clOrdID), symbol, side, positionEffect)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return req.ClOrdID, c.SendCommand(ctx, req)
}

// NewMarketOrder places a market order.
func (c *Client) NewMarketOrder(ctx context.Context, p fix.OrderParams) (*fix.NewOrderSingle, error) {
	return c.placeOrder(ctx, fix.OrdTypeMarket, p)
}

// NewLimitOrder places a limit order at p.Price.
func (c *Client) NewLimitOrder(ctx context.Context, p fix.OrderParams) (*fix.NewOrderSingle, error) {
	if !p.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be > 0", fix.ErrInvalidArgument)
	}
	return c.placeOrder(ctx, fix.OrdTypeLimit, p)
}

// NewStopOrder places a stop order triggered at p.StopPx.
func (c *Client) NewStopOrder(ctx context.Context, p fix.OrderParams) (*fix.NewOrderSingle, error) {
	if !p.StopPx.IsPositive() {
		return nil, fmt.Errorf("%w: stopPx must be > 0", fix.ErrInvalidArgument)
	}
	return c.placeOrder(ctx, fix.OrdTypeStop, p)
}

// NewMarketIfTouchedOrder places a market-if-touched order triggered at
// p.StopPx.
func (c *Client) NewMarketIfTouchedOrder(ctx context.Context, p fix.OrderParams) (*fix.NewOrderSingle, error) {
	if !p.StopPx.IsPositive() {
		return nil, fmt.Errorf("%w: stopPx must be > 0", fix.ErrInvalidArgument)
	}
	return c.placeOrder(ctx, fix.OrdTypeMarketIfTouched, p)
}

func (c *Client) placeOrder(ctx context.Context, ordType string, p fix.OrderParams) (*fix.NewOrderSingle, error) {
	p.ClOrdID = orNewID(p.ClOrdID)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order := fix.NewOrder(ordType, p)
	if err := c.SendCommand(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrderByClOrdID cancels the order placed with origClOrdID.
func (c *Client) CancelOrderByClOrdID(ctx context.Context, clOrdID, origClOrdID, symbol, side string, account uint64) error {
	if err := fix.NotEmpty("origClOrdID", origClOrdID); err != nil {
		return err
	}
	return c.cancelOrder(ctx, &fix.OrderCancelRequest{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		Symbol:      symbol,
		Side:        side,
		Account:     account,
	})
}

// CancelOrderByOrderID cancels the order with the venue-assigned orderID.
func (c *Client) CancelOrderByOrderID(ctx context.Context, clOrdID, orderID, symbol, side string, account uint64) error {
	if err := fix.NotEmpty("orderID", orderID); err != nil {
		return err
	}
	return c.cancelOrder(ctx, &fix.OrderCancelRequest{
		ClOrdID: clOrdID,
		OrderID: orderID,
		Symbol:  symbol,
		Side:    side,
		Account: account,
	})
}

func (c *Client) cancelOrder(ctx context.Context, req *fix.OrderCancelRequest) error {
	req.ClOrdID = orNewID(req.ClOrdID)
	if err := fix.NotEmpty("symbol", req.Symbol); err != nil {
		return err
	}
	if err := fix.OneOf("side", req.Side, fix.Sides); err != nil {
		return err
	}
	req.MsgType = fix.MsgTypeOrderCancelRequest
	req.TransactTime = time.Now().UnixNano()
	return c.SendCommand(ctx, req)
}

// CancelReplaceOrder sends an amend built by the caller, for example with
// ExecutionReport.CancelReplaceRequest.
func (c *Client) CancelReplaceOrder(ctx context.Context, req *fix.OrderCancelReplaceRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", fix.ErrInvalidArgument)
	}
	return c.SendCommand(ctx, req)
}
