package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/okian/hackmatch/internal/adapters/http/api"
	"github.com/okian/hackmatch/internal/adapters/http/swagger"
	"github.com/okian/hackmatch/internal/adapters/messaging"
	"github.com/okian/hackmatch/internal/adapters/notify"
	app "github.com/okian/hackmatch/internal/app"
	"github.com/okian/hackmatch/internal/config"
	"github.com/okian/hackmatch/pkg/logger"
	"github.com/okian/hackmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	dialTimeout       = 5 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON), logger.WithFile(cfg.LogFile)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "hackmatch stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and HTTP server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, closeDeps, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go refreshStats(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg.AllowedOrigins()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires the optional Redis inbox and NATS relay into a Service.
// The returned func releases those connections.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.NotifyWorkerCount),
		app.WithQueueSize(cfg.NotifyQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSuggestionLimit(cfg.SuggestionLimit),
		app.WithInboxLimit(cfg.InboxLimit),
		app.WithReminderWindow(cfg.ReminderWindow()),
		app.WithTeamSizeDefaults(cfg.DefaultMinTeamSize, cfg.DefaultMaxTeamSize),
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		closers = append(closers, func() { _ = client.Close() })
		opts = append(opts, app.WithInbox(notify.NewRedisInbox(client)))
		log.Info(ctx, "notifications stored in redis", logger.String("addr", cfg.RedisAddr))
	}

	if cfg.NatsURL != "" {
		nc := messaging.DefaultConfig()
		nc.URL = cfg.NatsURL
		client, err := messaging.NewNATSClient(nc)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("nats %s: %w", cfg.NatsURL, err)
		}
		closers = append(closers, client.Close)
		opts = append(opts,
			app.WithSinks(notify.NewRelaySink(client)),
			app.WithChatPublisher(client),
		)
		log.Info(ctx, "relaying notifications and chat over nats", logger.String("url", cfg.NatsURL))
	}

	return app.New(opts...), closeAll, nil
}

// newHandler mounts the API and docs routes behind CORS.
func newHandler(ctx context.Context, svc api.Dependencies, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return api.Handler(mux, allowedOrigins)
}

// refreshStats keeps the queue and system gauges current between requests.
func refreshStats(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
		}
	}
}
