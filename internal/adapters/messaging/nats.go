// Package messaging wraps a NATS connection for the pub/sub traffic of
// hackmatch: notification relay and team chat.
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/okian/hackmatch/pkg/logger"
)

// Config holds NATS connection settings.
type Config struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int // -1 for infinite
}

// DefaultConfig returns the defaults used when only a URL is configured.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "hackmatch",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSClient is a NATS connection with tracked subscriptions.
type NATSClient struct {
	conn *nats.Conn
	log  logger.Logger

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NewNATSClient connects with config. It fails if the initial connection fails.
func NewNATSClient(config Config) (*NATSClient, error) {
	log := logger.Get().Named("nats")
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn(ctx, "disconnected", logger.Error(err))
				return
			}
			log.Warn(ctx, "disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info(ctx, "reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info(ctx, "connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info(ctx, "connected", logger.String("url", nc.ConnectedUrl()))

	return &NATSClient{
		conn: nc,
		log:  log,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers handler for subject, replacing an earlier
// subscription on the same subject.
func (c *NATSClient) Subscribe(subject string, handler func(data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	old := c.subs[subject]
	c.subs[subject] = sub
	c.mu.Unlock()

	if old != nil {
		_ = old.Unsubscribe()
	}
	return nil
}

// Unsubscribe drops the subscription on subject.
func (c *NATSClient) Unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}

// Flush round-trips to the server so earlier publishes are on the wire.
func (c *NATSClient) Flush() error {
	return c.conn.Flush()
}

// Close drains subscriptions and the connection.
func (c *NATSClient) Close() {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			c.log.Warn(ctx, "drain subscription", logger.String("subject", subject), logger.Error(err))
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		c.log.Warn(ctx, "drain connection", logger.Error(err))
	}
}
