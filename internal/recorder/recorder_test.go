package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/marketdata"
)

type fakeResults struct {
	err error
}

func (f *fakeResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}
func (f *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (f *fakeResults) QueryRow() pgx.Row        { return nil }
func (f *fakeResults) Close() error             { return nil }

type fakeDB struct {
	mu      sync.Mutex
	batches []int
	err     error
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b.Len())
	return &fakeResults{err: f.err}
}

func (f *fakeDB) rows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += b
	}
	return n
}

func refresh() *fix.MarketDataRefresh {
	return &fix.MarketDataRefresh{
		Header:       fix.Header{MsgType: fix.MsgTypeMarketDataSnapshotFullRefresh},
		MDStreamID:   "DOM:XBTUSD:aggregated",
		Symbol:       "XBTUSD",
		TransactTime: 1705320000000000000,
		MDEntries: []fix.MDEntry{
			{MDEntryType: fix.MDEntryTypeBid, MDEntryPx: decimal.RequireFromString("42000.5"), MDEntrySize: decimal.NewFromInt(3)},
			{MDEntryType: fix.MDEntryTypeOffer, MDEntryPx: decimal.RequireFromString("42001"), MDEntrySize: decimal.NewFromInt(1), TransactTime: 17},
		},
	}
}

func TestRows(t *testing.T) {
	receivedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	rows := Rows(refresh(), receivedAt)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	r := rows[0]
	if r.Stream != "DOM:XBTUSD:aggregated" {
		t.Errorf("Stream = %s, want DOM:XBTUSD:aggregated", r.Stream)
	}
	if !r.Snapshot {
		t.Error("Snapshot = false, want true for W refresh")
	}
	if !r.ReceivedAt.Equal(receivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", r.ReceivedAt, receivedAt)
	}
	if r.TransactTime != 1705320000000000000 {
		t.Errorf("TransactTime = %d, want refresh transact time", r.TransactTime)
	}
	if !r.Price.Equal(decimal.RequireFromString("42000.5")) {
		t.Errorf("Price = %s, want 42000.5", r.Price)
	}
	if rows[1].TransactTime != 17 {
		t.Errorf("rows[1].TransactTime = %d, want entry transact time 17", rows[1].TransactTime)
	}
}

func TestRows_Incremental(t *testing.T) {
	msg := refresh()
	msg.MsgType = fix.MsgTypeMarketDataIncrementalRefresh

	rows := Rows(msg, time.Now())
	if rows[0].Snapshot {
		t.Error("Snapshot = true, want false for X refresh")
	}
}

func TestRowArgs_Nulls(t *testing.T) {
	args := Row{Stream: "trades:XBTUSD", Price: decimal.RequireFromString("1.50")}.args()

	if len(args) != 18 {
		t.Fatalf("len(args) = %d, want 18", len(args))
	}
	if args[4] != nil {
		t.Errorf("transact_time = %v, want nil", args[4])
	}
	if args[6] != nil {
		t.Errorf("entry_type = %v, want nil", args[6])
	}
	if args[7] != "1.5" {
		t.Errorf("price = %v, want 1.5", args[7])
	}
	if args[8] != nil {
		t.Errorf("size = %v, want nil", args[8])
	}
}

func TestRecorder_AddDropsWhenFull(t *testing.T) {
	rec := New(Config{BatchSize: 10, FlushInterval: time.Second, BufferSize: 2}, &fakeDB{}, nil)

	rec.Add(Row{}, Row{}, Row{})

	if got := rec.Stats().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
}

func TestRecorder_FlushOnBatchSize(t *testing.T) {
	db := &fakeDB{}
	rec := New(Config{BatchSize: 2, FlushInterval: time.Hour, BufferSize: 10}, db, nil)
	rec.Start(context.Background())
	defer rec.Stop(context.Background())

	if err := rec.Handle(context.Background(), nil, refresh()); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for db.rows() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("rows written = %d, want 2", db.rows())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRecorder_FlushOnInterval(t *testing.T) {
	db := &fakeDB{}
	rec := New(Config{BatchSize: 100, FlushInterval: 20 * time.Millisecond, BufferSize: 10}, db, nil)
	rec.Start(context.Background())
	defer rec.Stop(context.Background())

	rec.Add(Row{Stream: "trades:XBTUSD"})

	deadline := time.Now().Add(time.Second)
	for db.rows() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("row not flushed by interval")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRecorder_StopFlushesBuffered(t *testing.T) {
	db := &fakeDB{}
	rec := New(Config{BatchSize: 100, FlushInterval: time.Hour, BufferSize: 10}, db, nil)
	rec.Start(context.Background())

	rec.Add(Row{}, Row{}, Row{})
	rec.Stop(context.Background())

	if got := db.rows(); got != 3 {
		t.Errorf("rows written = %d, want 3", got)
	}
	if got := rec.Stats().Inserts; got != 3 {
		t.Errorf("Inserts = %d, want 3", got)
	}
}

func TestRecorder_InsertError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	rec := New(Config{BatchSize: 100, FlushInterval: time.Hour, BufferSize: 10}, db, nil)
	rec.Start(context.Background())

	rec.Add(Row{})
	rec.Stop(context.Background())

	stats := rec.Stats()
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.Inserts != 0 {
		t.Errorf("Inserts = %d, want 0", stats.Inserts)
	}
}

func TestRecorder_HandleIgnoresRejects(t *testing.T) {
	rec := New(Config{BufferSize: 1}, &fakeDB{}, nil)

	var h marketdata.Handler = rec.Handle
	if err := h(context.Background(), nil, &fix.MarketDataRequestReject{MDStreamID: "trades:XBTUSD"}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(rec.input) != 0 {
		t.Errorf("queued %d rows for a reject, want 0", len(rec.input))
	}
}
