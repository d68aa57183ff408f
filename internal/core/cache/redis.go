package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

// NewFromClient 复用已有 client（测试里接 miniredis）
func NewFromClient(rdb *redis.Client) *Cache { return &Cache{RDB: rdb} }

// GetOrLoad 先读缓存，未命中时 singleflight 合并回源。
// redis 故障只当作未命中处理，不影响回源结果。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 删除 key，下一次读重新回源。
// 已经在跑的回源仍会写回，需要强一致时配合 Generation/Bump 用
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.sf.Forget(k)
	}
	err := c.RDB.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Generation 读代数计数器，key 不存在时为 0
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	n, err := c.RDB.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump 代数加一。读方把代数拼进缓存 key，
// 已经在回源的旧读者只会写到没人再读的旧 key 上。
func (c *Cache) Bump(ctx context.Context, key string) error {
	return c.RDB.Incr(ctx, key).Err()
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }
