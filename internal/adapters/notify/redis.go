package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout:
//
//	<prefix>notification:<id>   JSON-encoded Notification
//	<prefix>inbox:<recipient>   sorted set of ids scored by CreatedAt (unix nanos)
const (
	defaultKeyPrefix = "hackmatch:"
	notificationKey  = "notification:"
	inboxKey         = "inbox:"
)

// RedisInbox implements Inbox on Redis.
type RedisInbox struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Inbox = (*RedisInbox)(nil)

// RedisOption configures a RedisInbox.
type RedisOption func(*RedisInbox)

// WithKeyPrefix namespaces every key the inbox writes.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisInbox) {
		r.prefix = prefix
	}
}

// WithTTL expires stored notifications after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisInbox) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

// NewRedisInbox creates an inbox using the provided Redis client.
func NewRedisInbox(client *redis.Client, opts ...RedisOption) *RedisInbox {
	r := &RedisInbox{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisInbox) Store(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.notificationKey(n.ID), data, r.ttl)
		pipe.ZAdd(ctx, r.inboxKey(n.RecipientID), redis.Z{
			Score:  float64(n.CreatedAt.UnixNano()),
			Member: n.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store notification %s: %w", n.ID, err)
	}
	return nil
}

func (r *RedisInbox) List(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	limit = limitOrDefault(limit)
	ids, err := r.client.ZRevRange(ctx, r.inboxKey(recipientID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list inbox %s: %w", recipientID, err)
	}
	return r.load(ctx, ids)
}

func (r *RedisInbox) MarkRead(ctx context.Context, recipientID, id string) (Notification, error) {
	n, err := r.owned(ctx, recipientID, id)
	if err != nil {
		return Notification{}, err
	}
	n.Read = true
	if err := r.save(ctx, r.client, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (r *RedisInbox) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	ids, err := r.client.ZRange(ctx, r.inboxKey(recipientID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("list inbox %s: %w", recipientID, err)
	}
	all, err := r.load(ctx, ids)
	if err != nil {
		return 0, err
	}

	changed := 0
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, n := range all {
			if n.Read {
				continue
			}
			n.Read = true
			if err := r.save(ctx, pipe, n); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark all read %s: %w", recipientID, err)
	}
	return changed, nil
}

func (r *RedisInbox) Delete(ctx context.Context, recipientID, id string) error {
	if _, err := r.owned(ctx, recipientID, id); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.notificationKey(id))
		pipe.ZRem(ctx, r.inboxKey(recipientID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

func (r *RedisInbox) owned(ctx context.Context, recipientID, id string) (Notification, error) {
	raw, err := r.client.Get(ctx, r.notificationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Notification{}, ErrNotFound
	}
	if err != nil {
		return Notification{}, fmt.Errorf("get notification %s: %w", id, err)
	}
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notification{}, fmt.Errorf("decode notification %s: %w", id, err)
	}
	if n.RecipientID != recipientID {
		return Notification{}, ErrNotAuthorized
	}
	return n, nil
}

// load fetches ids in order, skipping entries that expired.
func (r *RedisInbox) load(ctx context.Context, ids []string) ([]Notification, error) {
	out := make([]Notification, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.notificationKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var n Notification
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			return nil, fmt.Errorf("decode notification %s: %w", ids[i], err)
		}
		out = append(out, n)
	}
	return out, nil
}

// save rewrites n, keeping the key's remaining TTL.
func (r *RedisInbox) save(ctx context.Context, c redis.Cmdable, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if r.ttl > 0 {
		return c.SetArgs(ctx, r.notificationKey(n.ID), data, redis.SetArgs{KeepTTL: true}).Err()
	}
	return c.Set(ctx, r.notificationKey(n.ID), data, 0).Err()
}

func (r *RedisInbox) notificationKey(id string) string {
	return r.prefix + notificationKey + id
}

func (r *RedisInbox) inboxKey(recipientID string) string {
	return r.prefix + inboxKey + recipientID
}
