// Package worker drains the notification queue and hands each intent to
// every configured delivery sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hackmatch/internal/adapters/mq/queue"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/pkg/logger"
	"github.com/okian/hackmatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultDeliveryTimeout = 5 * time.Second
	poolShutdownTimeout    = 30 * time.Second
)

// Deliverer is one destination for notifications (inbox, relay, ...).
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, intent model.NotificationIntent) error
}

// Queue defines how workers receive items.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Item
}

// Worker delivers queued notifications.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue           Queue
	sinks           []Deliverer
	name            string
	deliveryTimeout time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sinks []Deliverer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:           q,
		sinks:           sinks,
		name:            "worker",
		deliveryTimeout: defaultDeliveryTimeout,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case item, ok := <-items:
			if !ok {
				return
			}
			if err := w.deliver(ctx, item); err != nil {
				w.logger.Error(ctx, "notification delivery failed",
					logger.String("recipient_id", item.Intent.RecipientID),
					logger.String("title", item.Intent.Title),
					logger.Error(err))
			}
		}
	}
}

func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// deliver fans one intent out to every sink concurrently. A failing sink
// does not stop the others; the first error is returned.
func (w *InMemoryWorker) deliver(ctx context.Context, item queue.Item) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ctx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	defer cancel()

	var g errgroup.Group
	for _, s := range w.sinks {
		g.Go(func() error {
			if err := s.Deliver(ctx, item.Intent); err != nil {
				metrics.RecordNotificationFailed(s.Name())
				metrics.RecordWorkerError()
				metrics.RecordErrorByComponent("worker", "delivery_error")
				return fmt.Errorf("sink %s: %w", s.Name(), err)
			}
			metrics.RecordNotificationDelivered(s.Name())
			return nil
		})
	}
	return g.Wait()
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers; workerCount < 1 means one per CPU.
func NewPool(workerCount int, q Queue, sinks []Deliverer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, sinks, wopts...)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it. Workers
// still busy when ctx (capped at 30s) expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
