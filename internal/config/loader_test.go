package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/hackmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.SuggestionLimit, convey.ShouldEqual, 10)
				convey.So(cfg.DefaultMaxTeamSize, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HACKMATCH_ADDR", ":8080")
			_ = os.Setenv("HACKMATCH_NOTIFY_QUEUE_SIZE", "500")
			_ = os.Setenv("HACKMATCH_NOTIFY_WORKER_COUNT", "16")
			_ = os.Setenv("HACKMATCH_SUGGESTION_LIMIT", "5")
			_ = os.Setenv("HACKMATCH_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("HACKMATCH_LOG_JSON", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.SuggestionLimit, convey.ShouldEqual, 5)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
# hackmatch settings
addr: ":9090"
notify_queue_size: 300
inbox_limit: 20
default_max_team_size: 6
nats_url: "nats://127.0.0.1:4222"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HACKMATCH_CONFIG", tmpFile)
			_ = os.Setenv("HACKMATCH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.InboxLimit, convey.ShouldEqual, 20)
				convey.So(cfg.DefaultMaxTeamSize, convey.ShouldEqual, 6)
				convey.So(cfg.NatsURL, convey.ShouldEqual, "nats://127.0.0.1:4222")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HACKMATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("HACKMATCH_CONFIG", "/non/existent/hackmatch.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("HACKMATCH_NOTIFY_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			tmpFile := createTempConfigFile(`addr: ""`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HACKMATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero worker count", func() {
			_ = os.Setenv("HACKMATCH_NOTIFY_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"HACKMATCH_CONFIG",
		"HACKMATCH_ADDR",
		"HACKMATCH_NOTIFY_QUEUE_SIZE",
		"HACKMATCH_NOTIFY_WORKER_COUNT",
		"HACKMATCH_SUGGESTION_LIMIT",
		"HACKMATCH_REDIS_ADDR",
		"HACKMATCH_LOG_JSON",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "hackmatch-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
