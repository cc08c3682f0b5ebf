package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	redisStatsKey     = "moviequiz:stats"
	redisMaxTxRetries = 5
)

// Redis keeps all keys as fields of one hash so a single WATCH covers an update.
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		// Plain host:port.
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Update retries when another writer touches the hash between WATCH and EXEC.
func (r *Redis) Update(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 1; attempt <= redisMaxTxRetries; attempt++ {
		err := r.client.Watch(ctx, func(rtx *redis.Tx) error {
			staged := &redisTx{rtx: rtx, writes: make(map[string]any)}
			if err := fn(staged); err != nil {
				return err
			}
			if len(staged.writes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, redisStatsKey, staged.writes)
				return nil
			})
			return err
		}, redisStatsKey)
		if errors.Is(err, redis.TxFailedErr) {
			slog.Debug("redis transaction conflict, retrying", "attempt", attempt)
			continue
		}
		return err
	}
	return fmt.Errorf("redis update: %w", redis.TxFailedErr)
}

// View reads the whole hash once and serves Get from that snapshot.
func (r *Redis) View(ctx context.Context, fn func(tx Tx) error) error {
	snapshot, err := r.client.HGetAll(ctx, redisStatsKey).Result()
	if err != nil {
		return err
	}
	return fn(&memTx{data: snapshot, readOnly: true})
}

type redisTx struct {
	rtx    *redis.Tx
	writes map[string]any
}

func (t *redisTx) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v.(string), true, nil
	}
	v, err := t.rtx.HGet(ctx, redisStatsKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (t *redisTx) Set(_ context.Context, key, value string) error {
	t.writes[key] = value
	return nil
}
