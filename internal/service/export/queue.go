package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Alijeyrad/fieldcare/internal/domain"
)

// Sender delivers one record.
type Sender interface {
	Send(ctx context.Context, record domain.FormData) error
}

// Queue dispatches records in the background. Delivery failures are
// logged, never returned to the caller.
type Queue struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	jobs    chan domain.FormData
	stopped bool
	done    chan struct{}
}

func NewQueue(sender Sender, size int, timeout time.Duration, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		jobs:    make(chan domain.FormData, size),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	go q.run()
}

func (q *Queue) run() {
	defer close(q.done)
	for record := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.sender.Send(ctx, record)
		cancel()
		if err != nil {
			q.logger.Warn("export failed", "error", err, "cpf_present", record.String("cpf") != "")
			continue
		}
		q.logger.Debug("record exported")
	}
}

// Enqueue schedules record for delivery without blocking.
func (q *Queue) Enqueue(record domain.FormData) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- record:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new records and waits for the pending ones to drain, or for
// ctx to end.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.jobs)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
