package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pool holds the client's connection pool and socket timeouts.
type Pool struct {
	Size         int
	MinIdle      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

var DefaultPool = Pool{
	Size:         20,
	MinIdle:      2,
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
}

type Option func(*options)

type options struct {
	db   int
	pool Pool
	log  *zap.Logger
}

func WithDB(n int) Option { return func(o *options) { o.db = n } }

func WithPool(p Pool) Option { return func(o *options) { o.pool = p } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// OpenRedis builds a client for addr and pings it once, bounded by the dial timeout.
func OpenRedis(addr string, opts ...Option) (*redis.Client, error) {
	o := options{pool: DefaultPool, log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}

	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           o.db,
		PoolSize:     o.pool.Size,
		MinIdleConns: o.pool.MinIdle,
		DialTimeout:  o.pool.DialTimeout,
		ReadTimeout:  o.pool.ReadTimeout,
		WriteTimeout: o.pool.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), o.pool.DialTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	o.log.Info("redis: connected", zap.String("addr", addr), zap.Int("db", o.db), zap.Int("pool_size", o.pool.Size))
	return r, nil
}
