package classifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rcliao/core-memory/internal/metrics"
)

// Processor handles one line of conversation.
type Processor interface {
	Process(ctx context.Context, line string) (Outcome, error)
}

// Worker feeds submitted lines to a Processor on a background goroutine.
type Worker struct {
	proc   Processor
	queue  chan string
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewWorker creates a worker with a queue of the given size.
func NewWorker(proc Processor, queueSize int, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		proc:   proc,
		queue:  make(chan string, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Submit enqueues line without blocking. It returns false, dropping the line,
// when the queue is full or the worker is closed.
func (w *Worker) Submit(line string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		metrics.Classifications.WithLabelValues(string(OutcomeDropped)).Inc()
		return false
	}
	select {
	case w.queue <- line:
		return true
	default:
		w.logger.Warn("classifier queue full, dropping line", "line", line)
		metrics.Classifications.WithLabelValues(string(OutcomeDropped)).Inc()
		return false
	}
}

// Run processes lines until the queue is closed and drained. Start it once.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for line := range w.queue {
		if _, err := w.proc.Process(ctx, line); err != nil {
			w.logger.Error("classification failed, proposal dropped", "line", line, "err", err)
		}
	}
}

// Close stops accepting lines and waits for Run to drain the queue.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}
