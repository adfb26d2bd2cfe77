package cache

import (
	"context"
	"testing"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb, err := NewRedisClient(ctx, config.RedisConfig{Addr: opts.Addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func sampleOrder() *model.OrderResponse {
	id := uuid.New()
	return &model.OrderResponse{
		Order: model.Order{
			ID:          id,
			CustomerID:  "cust-1",
			Status:      model.StatusPlaced,
			ItemCount:   2,
			TotalAmount: decimal.RequireFromString("6.40"),
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
			UpdatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		},
		Items: []model.OrderItem{{
			ID:         uuid.New(),
			OrderID:    id,
			LineNo:     1,
			ItemID:     "A",
			ItemName:   "Apple",
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("3.20"),
			TotalPrice: decimal.RequireFromString("6.40"),
			Unit:       "kg",
		}},
	}
}

func TestRedisOrderCache(t *testing.T) {
	rdb := setupRedis(t)
	c := NewRedisOrderCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()
	order := sampleOrder()

	got, err := c.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "miss before set")

	require.NoError(t, c.Set(ctx, order))

	got, err = c.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.CustomerID, got.CustomerID)
	assert.True(t, order.TotalAmount.Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Apple", got.Items[0].ItemName)

	ttl, err := rdb.TTL(ctx, orderKey(order.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, order.ID))
	got, err = c.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisOrderCache_CorruptEntry(t *testing.T) {
	rdb := setupRedis(t)
	c := NewRedisOrderCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rdb.HSet(ctx, orderKey(id), fieldVersion, 1, fieldData, "{not json").Err())

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := rdb.Exists(ctx, orderKey(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisOrderCache_OldLayoutEntry(t *testing.T) {
	rdb := setupRedis(t)
	c := NewRedisOrderCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, rdb.Set(ctx, orderKey(order.ID), `{"id":"x"}`, time.Minute).Err())

	got, err := c.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, rdb.Set(ctx, orderKey(order.ID), `{"id":"x"}`, time.Minute).Err())
	require.NoError(t, c.Set(ctx, order))

	got, err = c.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)
}

func TestRedisOrderCache_StaleSetKeepsNewerCopy(t *testing.T) {
	rdb := setupRedis(t)
	c := NewRedisOrderCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	placed := sampleOrder()
	cancelled := *placed
	cancelled.Status = model.StatusCancelled
	cancelled.UpdatedAt = placed.UpdatedAt.Add(time.Second)

	// The cancel lands first, then a reader that loaded the placed row
	// before the cancel committed tries to refresh the cache.
	require.NoError(t, c.Set(ctx, &cancelled))
	require.NoError(t, c.Set(ctx, placed))

	got, err := c.Get(ctx, placed.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StatusCancelled, got.Status)

	reason := "customer called"
	later := cancelled
	later.CancelReason = &reason
	require.NoError(t, c.Set(ctx, &later))
	got, err = c.Get(ctx, placed.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.CancelReason)
	assert.Equal(t, reason, *got.CancelReason)
}

func TestRedisOrderCache_ZeroTTLKeepsEntry(t *testing.T) {
	rdb := setupRedis(t)
	c := NewRedisOrderCache(rdb, 0, zerolog.Nop())
	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, c.Set(ctx, order))
	got, err := c.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNopOrderCache(t *testing.T) {
	c := NewNopOrderCache()
	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, c.Set(ctx, order))
	got, err := c.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, order.ID))
}

func TestOrderKey(t *testing.T) {
	id := uuid.MustParse("7b0f6c2e-8f43-4c55-9c52-1c6f8a0a6b11")
	assert.Equal(t, "order:7b0f6c2e-8f43-4c55-9c52-1c6f8a0a6b11", orderKey(id))
}
