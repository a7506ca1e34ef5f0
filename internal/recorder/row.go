package recorder

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/xena-client/internal/fix"
)

// Row is one md_entries row.
type Row struct {
	ReceivedAt     time.Time
	Stream         string
	Symbol         string
	Snapshot       bool
	TransactTime   int64
	UpdateAction   string
	EntryType      string
	Price          decimal.Decimal
	Size           decimal.Decimal
	NumberOfOrders int64
	TradeID        string
	AggressorSide  string
	FirstPx        decimal.Decimal
	LastPx         decimal.Decimal
	HighPx         decimal.Decimal
	LowPx          decimal.Decimal
	BuyVolume      decimal.Decimal
	SellVolume     decimal.Decimal
}

// Rows flattens a refresh into rows. Entries without their own transact
// time inherit the refresh's.
func Rows(msg *fix.MarketDataRefresh, receivedAt time.Time) []Row {
	rows := make([]Row, 0, len(msg.MDEntries))
	for _, e := range msg.MDEntries {
		transact := e.TransactTime
		if transact == 0 {
			transact = msg.TransactTime
		}
		rows = append(rows, Row{
			ReceivedAt:     receivedAt,
			Stream:         msg.MDStreamID,
			Symbol:         msg.Symbol,
			Snapshot:       msg.IsSnapshot(),
			TransactTime:   transact,
			UpdateAction:   e.MDUpdateAction,
			EntryType:      e.MDEntryType,
			Price:          e.MDEntryPx,
			Size:           e.MDEntrySize,
			NumberOfOrders: e.NumberOfOrders,
			TradeID:        e.TradeID,
			AggressorSide:  e.AggressorSide,
			FirstPx:        e.FirstPx,
			LastPx:         e.LastPx,
			HighPx:         e.HighPx,
			LowPx:          e.LowPx,
			BuyVolume:      e.BuyVolume,
			SellVolume:     e.SellVolume,
		})
	}
	return rows
}

const insertRow = `
	INSERT INTO md_entries (
		received_at, stream, symbol, snapshot, transact_time, update_action, entry_type,
		price, size, number_of_orders, trade_id, aggressor_side,
		first_px, last_px, high_px, low_px, buy_volume, sell_volume
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// args returns the insert arguments. Absent fields are written as NULL.
func (r Row) args() []any {
	return []any{
		r.ReceivedAt,
		r.Stream,
		r.Symbol,
		r.Snapshot,
		nullInt(r.TransactTime),
		nullString(r.UpdateAction),
		nullString(r.EntryType),
		nullDecimal(r.Price),
		nullDecimal(r.Size),
		nullInt(r.NumberOfOrders),
		nullString(r.TradeID),
		nullString(r.AggressorSide),
		nullDecimal(r.FirstPx),
		nullDecimal(r.LastPx),
		nullDecimal(r.HighPx),
		nullDecimal(r.LowPx),
		nullDecimal(r.BuyVolume),
		nullDecimal(r.SellVolume),
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// nullDecimal passes numerics as text so pgx needs no decimal codec.
func nullDecimal(d decimal.Decimal) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
