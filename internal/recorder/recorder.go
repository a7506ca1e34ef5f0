package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/xena-client/internal/fix"
	"github.com/rickgao/xena-client/internal/marketdata"
	"github.com/rickgao/xena-client/internal/metrics"
)

// Config tunes batching.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     1000,
		FlushInterval: time.Second,
		BufferSize:    10000,
	}
}

// Batcher sends a pgx batch. *pgxpool.Pool satisfies it.
type Batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Stats counts recorder activity.
type Stats struct {
	Inserts int64
	Dropped int64
	Errors  int64
	Flushes int64
}

// Recorder buffers rows and writes them in batches.
type Recorder struct {
	cfg    Config
	logger *slog.Logger
	db     Batcher

	input chan Row
	batch []Row

	statsMu sync.Mutex
	stats   Stats

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Recorder. Nothing is written until Start.
func New(cfg Config, db Batcher, logger *slog.Logger) *Recorder {
	def := DefaultConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = def.BufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:    cfg,
		logger: logger.With("component", "recorder"),
		db:     db,
		input:  make(chan Row, cfg.BufferSize),
		batch:  make([]Row, 0, cfg.BatchSize),
	}
}

// Start begins consuming rows.
func (r *Recorder) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
}

// Stop stops consuming and flushes what is buffered using ctx.
func (r *Recorder) Stop(ctx context.Context) {
	r.logger.Info("stopping recorder")

	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()

drain:
	for {
		select {
		case row := <-r.input:
			r.batch = append(r.batch, row)
			if len(r.batch) >= r.cfg.BatchSize {
				r.flush(ctx)
			}
		default:
			break drain
		}
	}
	r.flush(ctx)

	r.logger.Info("recorder stopped", "inserts", r.Stats().Inserts)
}

// Add queues rows without blocking. Rows that do not fit are dropped.
func (r *Recorder) Add(rows ...Row) {
	for _, row := range rows {
		select {
		case r.input <- row:
		default:
			r.statsMu.Lock()
			r.stats.Dropped++
			r.statsMu.Unlock()
			metrics.RecorderRows.WithLabelValues("dropped").Inc()
		}
	}
}

// Handle is a marketdata.Handler that records refreshes.
func (r *Recorder) Handle(_ context.Context, _ *marketdata.Client, msg fix.Message) error {
	if refresh, ok := msg.(*fix.MarketDataRefresh); ok {
		r.Add(Rows(refresh, time.Now())...)
	}
	return nil
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.stats
}

func (r *Recorder) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case row := <-r.input:
			r.batch = append(r.batch, row)
			if len(r.batch) >= r.cfg.BatchSize {
				r.flush(ctx)
			}
		case <-ticker.C:
			r.flush(ctx)
		}
	}
}

// flush writes the pending batch. Only the loop goroutine, or Stop after
// it has exited, touches r.batch.
func (r *Recorder) flush(ctx context.Context) {
	if len(r.batch) == 0 {
		return
	}
	rows := r.batch
	r.batch = make([]Row, 0, r.cfg.BatchSize)

	start := time.Now()
	err := r.insert(ctx, rows)

	r.statsMu.Lock()
	if err != nil {
		r.stats.Errors++
	} else {
		r.stats.Inserts += int64(len(rows))
		r.stats.Flushes++
	}
	r.statsMu.Unlock()

	if err != nil {
		metrics.RecorderRows.WithLabelValues("error").Add(float64(len(rows)))
		r.logger.Error("batch insert failed", "error", err, "count", len(rows))
		return
	}
	metrics.RecorderRows.WithLabelValues("inserted").Add(float64(len(rows)))

	r.logger.Debug("flushed rows",
		"count", len(rows),
		"duration", time.Since(start),
	)
}

func (r *Recorder) insert(ctx context.Context, rows []Row) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertRow, row.args()...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
