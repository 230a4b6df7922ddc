package persister

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/internal/common/money"
)

func setupRedis(t *testing.T, c context.Context) (*redis.Client, func()) {
	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	return redisClient, func() {
		redisClient.Close()
		if err := redisContainer.Terminate(c); err != nil {
			t.Logf("failed terminating redis container with error: %s", err)
		}
	}
}

func TestLocal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	c := context.Background()
	cache, teardown := setupRedis(t, c)
	defer teardown()

	local := NewLocal(cache, "device-1")

	items, found, err := local.Load(c)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, items)

	saved := []response.CartItem{
		{ID: "1", Name: "Raw Honey 500ml", Price: money.NewPrice(money.MustParse("50")), Quantity: 2},
	}
	require.NoError(t, local.Save(c, saved))

	exists, err := cache.Exists(c, LocalKey("device-1")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	items, found, err = local.Load(c)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, items, 1)
	assert.Equal(t, "Raw Honey 500ml", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Decimal.Equal(saved[0].Price.Decimal))

	other, found, err := NewLocal(cache, "device-2").Load(c)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, other)

	require.NoError(t, local.Delete(c))
	_, found, err = local.Load(c)
	require.NoError(t, err)
	assert.False(t, found)
}
