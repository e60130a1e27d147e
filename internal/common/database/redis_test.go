package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClientGetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}
	ctx := context.Background()

	mock.ExpectSet("k", "v", time.Minute).SetVal("OK")
	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))

	mock.ExpectGet("k").SetVal("v")
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	mock.ExpectDel("k").SetVal(1)
	require.NoError(t, client.Del(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClientGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}

	mock.ExpectGet("absent").RedisNil()
	_, err := client.Get(context.Background(), "absent")
	assert.Error(t, err)
}
