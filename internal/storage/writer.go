package storage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/udite/city-telemetry/internal/event"
	"github.com/udite/city-telemetry/internal/metrics"
)

const (
	// DefaultBatchSize is the pending-row count that forces a commit.
	DefaultBatchSize = 100
	// DefaultFlushInterval bounds the durability lag of a quiet batch.
	DefaultFlushInterval = time.Second
)

// Writer batches commits against the Sink so bursty ingestion amortizes the
// commit cost. Save runs on the ingestion path; a ticker goroutine flushes on
// its own schedule. Both go through the same lock, so the pending counter and
// the open batch are never raced.
type Writer struct {
	sink          Sink
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics

	mu         sync.Mutex
	pending    int
	lastCommit time.Time
	inserted   uint64
	failed     uint64
	commits    uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// WriterStats is a snapshot of the writer's per-row outcomes. Failed counts
// rows that did not become durable, whether the insert was rejected or the
// whole batch was lost in a failed commit.
type WriterStats struct {
	Inserted   uint64
	Failed     uint64
	Commits    uint64
	Pending    int
	LastCommit time.Time
}

// NewWriter creates a writer over the sink. Metrics may be nil.
func NewWriter(sink Sink, batchSize int, flushInterval time.Duration, logger *zap.Logger, m *metrics.Metrics) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Writer{
		sink:          sink,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       m,
		lastCommit:    time.Now(),
		stopCh:        make(chan struct{}),
	}
}

// Start launches the periodic flush task.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop halts the periodic flush and forces one final commit so no accepted
// insert is lost at normal termination.
func (w *Writer) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	return w.Flush()
}

func (w *Writer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				w.logger.Error("periodic flush failed", zap.Error(err))
			}
		}
	}
}

// Save stages one validated event and commits when the batch is full. A row
// failure is returned to the caller and never stalls later saves.
func (w *Writer) Save(evt event.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.sink.Insert(evt); err != nil {
		w.failed++
		return err
	}
	w.inserted++
	w.pending++

	if w.pending >= w.batchSize {
		return w.commitLocked()
	}
	return nil
}

// Flush commits the open batch unconditionally.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked()
}

func (w *Writer) commitLocked() error {
	if err := w.sink.Commit(); err != nil {
		// The sink discards a batch whose commit fails, so its rows are gone
		// and must not count toward the next batch.
		w.failed += uint64(w.pending)
		w.pending = 0
		return err
	}
	if w.pending > 0 {
		w.commits++
		w.metrics.IncCommits()
	}
	w.pending = 0
	w.lastCommit = time.Now()
	return nil
}

// Stats returns a snapshot of per-row outcomes since startup.
func (w *Writer) Stats() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WriterStats{
		Inserted:   w.inserted,
		Failed:     w.failed,
		Commits:    w.commits,
		Pending:    w.pending,
		LastCommit: w.lastCommit,
	}
}
