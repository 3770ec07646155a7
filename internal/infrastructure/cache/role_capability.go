package cache

import (
	"context"
	"errors"
	"time"

	"expense-approval/internal/domain/role"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedResolver remembers approver capability answers in redis for a short
// TTL. Redis failures fall through to the wrapped resolver.
type CachedResolver struct {
	next role.ApproverResolver
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

var (
	_ role.ApproverResolver = (*CachedResolver)(nil)
	_ role.Invalidator      = (*CachedResolver)(nil)
)

func NewCachedResolver(next role.ApproverResolver, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl, log: log}
}

func RoleCapabilityKey(companyID, roleName string) string {
	return "rolecap:" + companyID + ":" + role.Normalize(roleName)
}

func (c *CachedResolver) IsApprover(ctx context.Context, companyID, roleName string) bool {
	key := RoleCapabilityKey(companyID, roleName)

	v, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return v == "1"
	case !errors.Is(err, redis.Nil):
		c.log.Warn("role capability cache read failed", zap.String("key", key), zap.Error(err))
	}

	ok := c.next.IsApprover(ctx, companyID, roleName)
	val := "0"
	if ok {
		val = "1"
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.Warn("role capability cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ok
}

func (c *CachedResolver) Invalidate(ctx context.Context, companyID, roleName string) error {
	return c.rdb.Del(ctx, RoleCapabilityKey(companyID, roleName)).Err()
}
