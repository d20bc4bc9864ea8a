package notify

import (
	"context"
	"errors"

	"github.com/okian/hackmatch/internal/adapters/mq/queue"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/pkg/logger"
	"github.com/okian/hackmatch/pkg/metrics"
)

// Enqueuer accepts intents for asynchronous delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, intent model.NotificationIntent) error
}

// Dispatcher hands intents to the delivery queue. Delivery is best effort:
// intents that do not fit are dropped and counted.
type Dispatcher struct {
	q   Enqueuer
	log logger.Logger
}

// NewDispatcher feeds q.
func NewDispatcher(q Enqueuer, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Get().Named("dispatcher")
	}
	return &Dispatcher{q: q, log: log}
}

// Emit enqueues intent. It returns queue.ErrFull or queue.ErrClosed when the
// intent was dropped.
func (d *Dispatcher) Emit(ctx context.Context, intent model.NotificationIntent) error {
	err := d.q.Enqueue(ctx, intent)
	switch {
	case err == nil:
		metrics.RecordNotificationEnqueued()
		return nil
	case errors.Is(err, queue.ErrFull), errors.Is(err, queue.ErrClosed):
		metrics.RecordNotificationDropped()
		d.log.Warn(ctx, "notification dropped",
			logger.String("recipient_id", intent.RecipientID),
			logger.String("title", intent.Title),
			logger.Error(err))
		return err
	default:
		return err
	}
}

// EmitAll emits every intent and returns how many were accepted.
func (d *Dispatcher) EmitAll(ctx context.Context, intents []model.NotificationIntent) int {
	accepted := 0
	for _, in := range intents {
		if d.Emit(ctx, in) == nil {
			accepted++
		}
	}
	return accepted
}
