// Package cache keeps a read-through copy of orders in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyOrder is order:{order_id} -> hash{v: UpdatedAt in unix micros, d: OrderResponse JSON}.
const keyOrder = "order:%s"

const (
	fieldVersion = "v"
	fieldData    = "d"
)

// setIfNewer writes the entry unless the stored one carries a later version.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// OrderCache stores recently read or written orders.
type OrderCache interface {
	// Get returns the cached order, or nil on a miss.
	Get(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
	// Set stores order unless the cache already holds a copy with a later
	// UpdatedAt, so a slow reader cannot replace a fresher write.
	Set(ctx context.Context, order *model.OrderResponse) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type redisOrderCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisOrderCache creates an OrderCache backed by rdb.
func NewRedisOrderCache(rdb redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) OrderCache {
	return &redisOrderCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("cache", "order").Logger(),
	}
}

func orderKey(id uuid.UUID) string {
	return fmt.Sprintf(keyOrder, id)
}

func (c *redisOrderCache) Get(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	raw, err := c.rdb.HGet(ctx, orderKey(id), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if isWrongType(err) {
		c.logger.Warn().Str("order_id", id.String()).Msg("discarding cache entry with old layout")
		_ = c.rdb.Del(ctx, orderKey(id)).Err()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached order: %w", err)
	}

	var order model.OrderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		c.logger.Warn().Err(err).Str("order_id", id.String()).Msg("discarding undecodable cache entry")
		_ = c.rdb.Del(ctx, orderKey(id)).Err()
		return nil, nil
	}
	return &order, nil
}

func (c *redisOrderCache) Set(ctx context.Context, order *model.OrderResponse) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	version := order.UpdatedAt.UnixMicro()
	stored, err := setIfNewer.Run(ctx, c.rdb, []string{orderKey(order.ID)},
		version, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		// A key left behind by an older layout is not a hash.
		if !isWrongType(err) {
			return fmt.Errorf("failed to cache order: %w", err)
		}
		if err := c.rdb.Del(ctx, orderKey(order.ID)).Err(); err != nil {
			return fmt.Errorf("failed to cache order: %w", err)
		}
		stored, err = setIfNewer.Run(ctx, c.rdb, []string{orderKey(order.ID)},
			version, raw, c.ttl.Milliseconds()).Int()
		if err != nil {
			return fmt.Errorf("failed to cache order: %w", err)
		}
	}
	if stored == 0 {
		c.logger.Debug().Str("order_id", order.ID.String()).Msg("kept newer cached order")
	}
	return nil
}

func isWrongType(err error) bool {
	return err != nil && strings.Contains(err.Error(), "WRONGTYPE")
}

func (c *redisOrderCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, orderKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached order: %w", err)
	}
	return nil
}

type nopOrderCache struct{}

// NewNopOrderCache returns an OrderCache that never hits.
func NewNopOrderCache() OrderCache { return nopOrderCache{} }

func (nopOrderCache) Get(context.Context, uuid.UUID) (*model.OrderResponse, error) { return nil, nil }

func (nopOrderCache) Set(context.Context, *model.OrderResponse) error { return nil }

func (nopOrderCache) Invalidate(context.Context, uuid.UUID) error { return nil }
