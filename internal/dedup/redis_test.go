package dedup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"onlinejobs-scout/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSet is an in-memory stand-in for the Redis set commands.
type fakeSet struct {
	members map[string]bool
	fail    bool
	adds    int
	dels    int
}

func newFakeSet() *fakeSet { return &fakeSet{members: make(map[string]bool)} }

func (f *fakeSet) SIsMember(_ context.Context, _ string, member interface{}) *redis.BoolCmd {
	if f.fail {
		return redis.NewBoolResult(false, errors.New("connection refused"))
	}
	return redis.NewBoolResult(f.members[member.(string)], nil)
}

func (f *fakeSet) SAdd(_ context.Context, _ string, members ...interface{}) *redis.IntCmd {
	if f.fail {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	f.adds++
	for _, m := range members {
		f.members[m.(string)] = true
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeSet) Del(_ context.Context, _ ...string) *redis.IntCmd {
	f.dels++
	f.members = make(map[string]bool)
	return redis.NewIntResult(1, nil)
}

func TestSeenCache_ShortCircuitsKnownIDs(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	set := newFakeSet()
	set.members["cached-only"] = true
	c := NewSeenCache(fs, set, "")

	ok, err := c.Exists(ctx, "cached-only")
	require.NoError(t, err)
	assert.True(t, ok, "redis hit wins without asking the store")

	ok, err = c.Exists(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeenCache_PopulatesOnUpsertAndStoreHit(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("in-store", storeNow)))
	set := newFakeSet()
	c := NewSeenCache(fs, set, "test:seen")

	ok, err := c.Exists(ctx, "in-store")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, set.members["in-store"])

	require.NoError(t, c.Upsert(ctx, record("fresh", storeNow)))
	assert.True(t, set.members["fresh"])
}

func TestSeenCache_FallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	set := newFakeSet()
	set.fail = true
	c := NewSeenCache(fs, set, "")

	require.NoError(t, c.Upsert(ctx, record("1", storeNow)))
	ok, err := c.Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeenCache_CleanupDropsSet(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	set := newFakeSet()
	c := NewSeenCache(fs, set, "")
	require.NoError(t, c.Upsert(ctx, record("ancient", storeNow.Add(-60*24*time.Hour))))

	n, err := c.Cleanup(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, set.dels)

	ok, err := c.Exists(ctx, "ancient")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisClient_Integration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if testing.Short() || redisURL == "" {
		t.Skip("Skipping Redis integration test")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	defer client.Close()

	key := "onlinejobs:test:" + time.Now().Format("150405.000")
	defer client.Del(ctx, key)

	fs, _ := newTestStore(t)
	c := NewSeenCache(fs, client, key)
	require.NoError(t, c.Upsert(ctx, record("42", storeNow)))

	hit, err := client.SIsMember(ctx, key, "42").Result()
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestOpen_FileStoreWithUnreachableRedis(t *testing.T) {
	cfg := config.Default()
	cfg.StorePath = filepath.Join(t.TempDir(), "jobs.json")
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	store, closeAll, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeAll()

	_, isFile := store.(*FileStore)
	assert.True(t, isFile, "redis failure falls back to the bare backend")
}
