package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/adapters/chat"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

type capture struct {
	subject string
	data    []byte
	err     error
}

func (c *capture) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subject, c.data = subject, data
	return nil
}

func TestValidateMessage(t *testing.T) {
	Convey("Given chat texts", t, func() {
		cases := []struct {
			name string
			text string
			ok   bool
		}{
			{"plain", "hello team", true},
			{"empty", "", false},
			{"max chars", strings.Repeat("a", chat.MaxTextChars), true},
			{"too many chars", strings.Repeat("a", chat.MaxTextChars+1), false},
			{"multibyte within limits", strings.Repeat("é", chat.MaxTextChars), true},
			{"too many bytes", strings.Repeat("日", 1400), false},
			{"invalid utf8", "bad \xff byte", false},
		}
		for _, tc := range cases {
			Convey(tc.name, func() {
				err := chat.ValidateMessage(tc.text)
				if tc.ok {
					So(err, ShouldBeNil)
				} else {
					So(errors.Is(err, chat.ErrInvalidMessage), ShouldBeTrue)
				}
			})
		}
	})
}

func TestRelaySend(t *testing.T) {
	Convey("Given a team and a relay", t, func() {
		ctx := context.Background()
		at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
		pub := &capture{}
		relay := chat.NewRelay(pub, clockwork.NewFakeClockAt(at))
		team := model.Team{
			ID:     "t1",
			Leader: "lead",
			Members: []model.Member{
				{ParticipantID: "lead", Role: model.RoleOther},
				{ParticipantID: "m1", Role: model.RoleBackend},
			},
			MaxSize: 4,
		}

		Convey("When a member sends a message", func() {
			msg, err := relay.Send(ctx, team, "m1", "ship it")

			Convey("Then it is published on the team subject", func() {
				So(err, ShouldBeNil)
				So(msg.ID, ShouldNotBeBlank)
				So(pub.subject, ShouldEqual, "team.chat.t1")
				var got chat.Message
				So(json.Unmarshal(pub.data, &got), ShouldBeNil)
				So(got.SenderID, ShouldEqual, "m1")
				So(got.Text, ShouldEqual, "ship it")
				So(got.SentAt.Equal(at), ShouldBeTrue)
			})
		})

		Convey("When an outsider sends a message", func() {
			_, err := relay.Send(ctx, team, "stranger", "hi")
			So(errors.Is(err, roster.ErrNotAuthorized), ShouldBeTrue)
			So(pub.subject, ShouldBeBlank)
		})

		Convey("When the text is invalid", func() {
			_, err := relay.Send(ctx, team, "lead", "")
			So(errors.Is(err, chat.ErrInvalidMessage), ShouldBeTrue)
		})

		Convey("When publishing fails", func() {
			pub.err = errors.New("offline")
			_, err := relay.Send(ctx, team, "lead", "hi")
			So(err, ShouldNotBeNil)
		})

		Convey("When no publisher is configured", func() {
			msg, err := chat.NewRelay(nil, nil).Send(ctx, team, "lead", "hi")
			So(err, ShouldBeNil)
			So(msg.TeamID, ShouldEqual, "t1")
		})
	})
}
