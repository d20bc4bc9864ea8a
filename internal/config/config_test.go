package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/hackmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SuggestionLimit, convey.ShouldEqual, 10)
			convey.So(cfg.InboxLimit, convey.ShouldEqual, 50)
			convey.So(cfg.DefaultMaxTeamSize, convey.ShouldEqual, 4)
			convey.So(cfg.DefaultMinTeamSize, convey.ShouldEqual, 1)
			convey.So(cfg.ReminderWindow(), convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
			convey.So(cfg.NatsURL, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When team size bounds are inverted", func() {
			cfg.DefaultMinTeamSize = 5
			cfg.DefaultMaxTeamSize = 2
			err := cfg.Validate()

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_max_team_size")
			})
		})

		convey.Convey("When the worker count is zero", func() {
			cfg.NotifyWorkerCount = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the reminder window is negative", func() {
			cfg.ReminderWindowHours = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_AllowedOrigins(t *testing.T) {
	convey.Convey("Given a comma separated origin list", t, func() {
		cfg := config.New()
		cfg.CORSAllowedOrigins = " https://a.example , ,https://b.example"

		convey.So(cfg.AllowedOrigins(), convey.ShouldResemble, []string{"https://a.example", "https://b.example"})

		cfg.CORSAllowedOrigins = ""
		convey.So(cfg.AllowedOrigins(), convey.ShouldBeEmpty)
	})
}
