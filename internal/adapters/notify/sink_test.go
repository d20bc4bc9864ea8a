package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/adapters/mq/queue"
	"github.com/okian/hackmatch/internal/adapters/notify"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestInboxSink(t *testing.T) {
	Convey("Given an inbox sink on a fake clock", t, func() {
		ctx := context.Background()
		clock := clockwork.NewFakeClockAt(base)
		inbox := notify.NewMemoryInbox()
		sink := notify.NewInboxSink(inbox, clock)
		So(sink.Name(), ShouldEqual, "inbox")

		Convey("When an intent is delivered", func() {
			err := sink.Deliver(ctx, model.NotificationIntent{
				RecipientID:       "lead",
				Kind:              model.KindTeam,
				Title:             "New Team Member",
				Message:           "Ada has joined your team Rockets",
				RelatedEntityID:   "t1",
				RelatedEntityKind: model.EntityTeam,
			})

			Convey("Then an unread notification with a fresh id lands in the inbox", func() {
				So(err, ShouldBeNil)
				got, _ := inbox.List(ctx, "lead", 0)
				So(got, ShouldHaveLength, 1)
				So(got[0].ID, ShouldNotBeBlank)
				So(got[0].Read, ShouldBeFalse)
				So(got[0].CreatedAt.Equal(base), ShouldBeTrue)
				So(got[0].RelatedEntityKind, ShouldEqual, model.EntityTeam)
				So(got[0].Message, ShouldEqual, "Ada has joined your team Rockets")
			})
		})
	})
}

func TestRelaySink(t *testing.T) {
	Convey("Given a relay sink", t, func() {
		pub := &fakePublisher{}
		sink := notify.NewRelaySink(pub)
		So(sink.Name(), ShouldEqual, "relay")
		in := model.NotificationIntent{RecipientID: "p1", Kind: model.KindHackathon, Title: "Registration Successful"}

		Convey("When an intent is delivered", func() {
			So(sink.Deliver(context.Background(), in), ShouldBeNil)

			Convey("Then it is published as JSON on the recipient subject", func() {
				So(pub.msgs, ShouldHaveLength, 1)
				So(pub.msgs[0].subject, ShouldEqual, "notify.p1")
				var got model.NotificationIntent
				So(json.Unmarshal(pub.msgs[0].data, &got), ShouldBeNil)
				So(got, ShouldResemble, in)
			})
		})

		Convey("When the publisher fails", func() {
			pub.err = errors.New("nats down")
			So(sink.Deliver(context.Background(), in), ShouldNotBeNil)
		})
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher over a queue of two", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		d := notify.NewDispatcher(q, nil)
		in := model.NotificationIntent{RecipientID: "p1", Title: "Team Invitation"}

		Convey("When three intents are emitted", func() {
			accepted := d.EmitAll(ctx, []model.NotificationIntent{in, in, in})

			Convey("Then the overflow is dropped", func() {
				So(accepted, ShouldEqual, 2)
				So(q.Len(ctx), ShouldEqual, 2)
				So(errors.Is(d.Emit(ctx, in), queue.ErrFull), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed", func() {
			_ = q.Close()
			So(errors.Is(d.Emit(ctx, in), queue.ErrClosed), ShouldBeTrue)
		})
	})
}
