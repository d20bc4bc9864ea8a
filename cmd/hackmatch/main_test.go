package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackmatch/internal/config"
	"github.com/okian/hackmatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.NotifyWorkerCount = 1
		cfg.CORSAllowedOrigins = "https://hackmatch.example"

		svc, closeDeps, err := buildService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		convey.Reset(func() {
			svc.Stop()
			closeDeps()
		})

		h := newHandler(ctx, svc, cfg.AllowedOrigins())

		convey.Convey("Then the health, docs and API routes are mounted", func() {
			for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/stats", "/metrics"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}

			w := httptest.NewRecorder()
			body := strings.NewReader(`{"name":"Ada","skills":[{"name":"Go"}]}`)
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/participants/ada", body))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then preflight requests from an allowed origin are answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/teams", http.NoBody)
			req.Header.Set("Origin", "https://hackmatch.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://hackmatch.example")
		})
	})

	convey.Convey("Given an unreachable Redis address", t, func() {
		cfg := config.New()
		cfg.RedisAddr = "127.0.0.1:1"

		_, _, err := buildService(context.Background(), cfg, logger.Get())

		convey.Convey("Then building fails instead of silently falling back", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "redis 127.0.0.1:1")
		})
	})
}

func TestRunStopsWithContext(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.NotifyWorkerCount = 1
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then run shuts down cleanly", func() {
			convey.So(run(ctx, cfg, logger.Get()), convey.ShouldBeNil)
		})
	})
}
