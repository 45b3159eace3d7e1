package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_FetchesOnceThenServesFromCache(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: 7, Name: "garden club"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, CommunityKey(7), &first, CommunityTTL, fetch(&first)))
	assert.Equal(t, "garden club", first.Name)
	assert.True(t, mr.Exists("community:7"))

	var second cachedThing
	require.NoError(t, Aside(ctx, CommunityKey(7), &second, CommunityTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	InvalidateCommunity(ctx, 7)
	assert.False(t, mr.Exists("community:7"))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	boom := errors.New("boom")

	var dest cachedThing
	err := Aside(context.Background(), UserKey(3), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:3"))
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)

	var dest cachedThing
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), dest.ID)
	assert.Nil(t, GetClient())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:12", UserKey(12))
	assert.Equal(t, "community:4", CommunityKey(4))
	assert.Equal(t, "ws_ticket:abc", WSTicketKey("abc"))
}
