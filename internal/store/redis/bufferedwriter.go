package redis

import (
	"context"
	"log"
	"sync"

	"trend-systemv1/internal/model"
)

// BufferedWriter wraps a Redis Writer with a circuit breaker.
// During circuit-open state, reports are buffered locally and flushed
// when the circuit closes again, so a Redis outage never drops a scan.
type BufferedWriter struct {
	writer *Writer
	cb     *CircuitBreaker
	ctx    context.Context

	mu     sync.Mutex
	buffer []model.Report
	maxBuf int // max buffered reports before dropping oldest (default: 10000)

	// Callbacks
	OnBuffer func()          // called when a report is buffered (for metrics)
	OnFlush  func(count int) // called after flushing buffered reports
}

// NewBufferedWriter creates a BufferedWriter wrapping the given Writer.
func NewBufferedWriter(ctx context.Context, w *Writer, cb *CircuitBreaker, maxBufferSize int) *BufferedWriter {
	if maxBufferSize <= 0 {
		maxBufferSize = 10000
	}
	bw := &BufferedWriter{
		writer: w,
		cb:     cb,
		ctx:    ctx,
		buffer: make([]model.Report, 0, 256),
		maxBuf: maxBufferSize,
	}

	// Register flush on circuit close
	prevCallback := cb.OnStateChange
	cb.OnStateChange = func(from, to State) {
		if prevCallback != nil {
			prevCallback(from, to)
		}
		if to == StateClosed {
			go bw.flush()
		}
	}

	return bw
}

// WriteReports publishes a report batch through the circuit breaker.
// If the circuit is open, the reports are buffered locally. It satisfies
// the ReportWriter port.
func (bw *BufferedWriter) WriteReports(ctx context.Context, reports []model.Report) error {
	err := bw.cb.Execute(func() error {
		return bw.writer.WriteReports(ctx, reports)
	})
	if err == ErrCircuitOpen {
		bw.bufferReports(reports)
		return nil // buffered, not lost
	}
	return err
}

func (bw *BufferedWriter) bufferReports(reports []model.Report) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	for _, rep := range reports {
		if len(bw.buffer) >= bw.maxBuf {
			// Buffer full — drop oldest
			bw.buffer = bw.buffer[1:]
		}
		bw.buffer = append(bw.buffer, rep)
		if bw.OnBuffer != nil {
			bw.OnBuffer()
		}
	}
}

// flush replays all buffered reports through the underlying writer.
func (bw *BufferedWriter) flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}
	// Take ownership of the buffer
	toFlush := bw.buffer
	bw.buffer = make([]model.Report, 0, 256)
	bw.mu.Unlock()

	if err := bw.writer.WriteReports(bw.ctx, toFlush); err != nil {
		log.Printf("[buffered-writer] flush error: %v", err)
		return
	}

	log.Printf("[buffered-writer] flushed %d buffered reports", len(toFlush))
	if bw.OnFlush != nil {
		bw.OnFlush(len(toFlush))
	}
}

// PendingCount returns the number of buffered reports waiting to be flushed.
func (bw *BufferedWriter) PendingCount() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

// Underlying returns the wrapped Redis writer for direct access.
func (bw *BufferedWriter) Underlying() *Writer {
	return bw.writer
}

// Close closes the underlying writer.
func (bw *BufferedWriter) Close() error {
	return bw.writer.Close()
}
