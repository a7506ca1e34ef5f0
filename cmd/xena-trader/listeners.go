package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/trading"
)

// registerListeners logs the account traffic the trader cares about.
func registerListeners(client *trading.Client, logger *slog.Logger) error {
	if err := trading.Listen(client, func(_ context.Context, _ *trading.Client, m *fix.ExecutionReport) error {
		logger.Info("execution report",
			"account", m.Account,
			"symbol", m.Symbol,
			"cl_ord_id", m.ClOrdID,
			"order_id", m.OrderID,
			"exec_type", m.ExecType,
			"ord_status", m.OrdStatus,
			"side", m.Side,
			"last_qty", m.LastQty,
			"last_px", m.LastPx,
			"leaves_qty", m.LeavesQty,
			"text", m.Text,
		)
		return nil
	}); err != nil {
		return fmt.Errorf("listen execution reports: %w", err)
	}

	if err := trading.Listen(client, func(_ context.Context, _ *trading.Client, m *fix.OrderCancelReject) error {
		logger.Warn("order cancel rejected",
			"account", m.Account,
			"cl_ord_id", m.ClOrdID,
			"orig_cl_ord_id", m.OrigClOrdID,
			"reason", m.CxlRejReason,
			"text", m.Text,
		)
		return nil
	}); err != nil {
		return fmt.Errorf("listen order cancel rejects: %w", err)
	}

	if err := trading.Listen(client, func(_ context.Context, _ *trading.Client, m *fix.Reject) error {
		logger.Warn("command rejected",
			"ref_msg_type", m.RefMsgType,
			"reason", m.SessionRejectReason,
			"text", m.Text,
		)
		return nil
	}); err != nil {
		return fmt.Errorf("listen rejects: %w", err)
	}

	if err := trading.Listen(client, func(_ context.Context, _ *trading.Client, m *fix.MarginRequirementReport) error {
		attrs := []any{"account", m.Account, "type", m.MarginReqmtRptType}
		for _, amt := range m.MarginAmounts {
			attrs = append(attrs, "amt_"+amt.MarginAmtType, amt.MarginAmt)
		}
		logger.Info("margin requirement report", attrs...)
		return nil
	}); err != nil {
		return fmt.Errorf("listen margin reports: %w", err)
	}

	return nil
}
