package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/hackmatch/internal/adapters/mq/queue"
	worker "github.com/okian/hackmatch/internal/adapters/mq/worker"
	model "github.com/okian/hackmatch/internal/domain/model"
	logging "github.com/okian/hackmatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// recordingSink collects delivered intents and can be told to fail.
type recordingSink struct {
	name  string
	fail  map[string]error
	delay time.Duration

	mu  sync.Mutex
	got []model.NotificationIntent
}

func newSink(name string) *recordingSink {
	return &recordingSink{name: name, fail: map[string]error{}}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, intent model.NotificationIntent) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := s.fail[intent.RecipientID]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, intent)
	return nil
}

func (s *recordingSink) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.got))
	for i, in := range s.got {
		out[i] = in.RecipientID
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func intent(recipient string) model.NotificationIntent {
	return model.NotificationIntent{RecipientID: recipient, Kind: model.KindTeam, Title: "Team Invitation"}
}

func TestMain(m *testing.M) {
	if err := logging.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with two sinks", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		inbox := newSink("inbox")
		relay := newSink("relay")
		w := worker.NewInMemoryWorker(q, []worker.Deliverer{inbox, relay}, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When intents are enqueued", func() {
			convey.So(q.Enqueue(ctx, intent("u1")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, intent("u2")), convey.ShouldBeNil)

			convey.Convey("Then each sink receives every intent in order", func() {
				convey.So(waitFor(func() bool { return inbox.count() == 2 && relay.count() == 2 }), convey.ShouldBeTrue)
				convey.So(inbox.recipients(), convey.ShouldResemble, []string{"u1", "u2"})
				convey.So(relay.recipients(), convey.ShouldResemble, []string{"u1", "u2"})
			})
		})

		convey.Convey("When one sink fails for a recipient", func() {
			relay.fail["u1"] = errors.New("relay down")
			convey.So(q.Enqueue(ctx, intent("u1")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, intent("u2")), convey.ShouldBeNil)

			convey.Convey("Then the other sink still gets it and the worker keeps going", func() {
				convey.So(waitFor(func() bool { return inbox.count() == 2 && relay.count() == 1 }), convey.ShouldBeTrue)
				convey.So(relay.recipients(), convey.ShouldResemble, []string{"u2"})
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerDeliveryTimeout(t *testing.T) {
	convey.Convey("Given a sink slower than the delivery timeout", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		slow := newSink("slow")
		slow.delay = time.Second
		fast := newSink("fast")
		w := worker.NewInMemoryWorker(q, []worker.Deliverer{slow, fast},
			worker.WithDeliveryTimeout(20*time.Millisecond),
			worker.WithLogger(logging.Get().Named("timeout-test")))
		go w.Run(ctx)

		convey.So(q.Enqueue(ctx, intent("u1")), convey.ShouldBeNil)
		convey.So(q.Enqueue(ctx, intent("u2")), convey.ShouldBeNil)

		convey.Convey("Then the slow sink is abandoned and the queue keeps moving", func() {
			convey.So(waitFor(func() bool { return fast.count() == 2 }), convey.ShouldBeTrue)
			convey.So(slow.count(), convey.ShouldEqual, 0)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		sink := newSink("inbox")
		pool := worker.NewPool(3, q, []worker.Deliverer{sink})
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When items are enqueued and the pool shuts down", func() {
			for i := 0; i < 200; i++ {
				convey.So(q.Enqueue(ctx, intent(fmt.Sprintf("u%d", i))), convey.ShouldBeNil)
			}
			pool.Start(ctx)
			err := pool.Shutdown(ctx)

			convey.Convey("Then every queued intent is delivered before shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.count(), convey.ShouldEqual, 200)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a zero worker count is given", func() {
			p := worker.NewPool(0, queue.NewInMemoryQueue(), nil)
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
