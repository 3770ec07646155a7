package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls  int
	answer bool
}

func (r *countingResolver) IsApprover(context.Context, string, string) bool {
	r.calls++
	return r.answer
}

func TestCachedResolver_CachesAndInvalidates(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &countingResolver{answer: true}
	c := NewCachedResolver(next, rdb, 30*time.Second, nil)
	ctx := context.Background()

	assert.True(t, c.IsApprover(ctx, "CMP-1", "Auditor"))
	assert.True(t, c.IsApprover(ctx, "CMP-1", "auditor"))
	assert.Equal(t, 1, next.calls)

	v, err := s.Get("rolecap:CMP-1:auditor")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.Equal(t, 30*time.Second, s.TTL("rolecap:CMP-1:auditor"))

	next.answer = false
	require.NoError(t, c.Invalidate(ctx, "CMP-1", "AUDITOR"))
	assert.False(t, c.IsApprover(ctx, "CMP-1", "auditor"))
	assert.Equal(t, 2, next.calls)

	// negative answers are cached too
	assert.False(t, c.IsApprover(ctx, "CMP-1", "auditor"))
	assert.Equal(t, 2, next.calls)
}

func TestCachedResolver_RedisDownFallsThrough(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s.Close()

	next := &countingResolver{answer: true}
	c := NewCachedResolver(next, rdb, 0, nil)

	assert.True(t, c.IsApprover(context.Background(), "CMP-1", "finance"))
	assert.True(t, c.IsApprover(context.Background(), "CMP-1", "finance"))
	assert.Equal(t, 2, next.calls)
}
