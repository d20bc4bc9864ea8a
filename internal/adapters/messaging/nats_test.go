package messaging_test

import (
	"testing"
	"time"

	"github.com/okian/hackmatch/internal/adapters/messaging"
	"github.com/okian/hackmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// newTestClient connects to a NATS server on the default URL and skips the
// test when none is running.
func newTestClient(t *testing.T) *messaging.NATSClient {
	t.Helper()
	cfg := messaging.DefaultConfig()
	cfg.MaxReconnects = 0
	c, err := messaging.NewNATSClient(cfg)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestDefaultConfig(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := messaging.DefaultConfig()

		Convey("Then it targets the local server and reconnects forever", func() {
			So(cfg.URL, ShouldEqual, "nats://127.0.0.1:4222")
			So(cfg.Name, ShouldEqual, "hackmatch")
			So(cfg.MaxReconnects, ShouldEqual, -1)
			So(cfg.ReconnectWait, ShouldEqual, 2*time.Second)
		})
	})
}

func TestPublishSubscribe(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	c := newTestClient(t)

	Convey("Given a subscription on a team chat subject", t, func() {
		got := make(chan []byte, 1)
		So(c.Subscribe("team.chat.test-t1", func(data []byte) { got <- data }), ShouldBeNil)
		Reset(func() { _ = c.Unsubscribe("team.chat.test-t1") })

		Convey("When a message is published", func() {
			So(c.Publish("team.chat.test-t1", []byte("hello")), ShouldBeNil)
			So(c.Flush(), ShouldBeNil)

			Convey("Then the handler receives it", func() {
				select {
				case data := <-got:
					So(string(data), ShouldEqual, "hello")
				case <-time.After(2 * time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})

		Convey("When unsubscribing twice", func() {
			So(c.Unsubscribe("team.chat.test-t1"), ShouldBeNil)
			So(c.Unsubscribe("team.chat.test-t1"), ShouldNotBeNil)
		})
	})
}
