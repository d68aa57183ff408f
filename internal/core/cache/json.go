package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetOrLoadJSON 是 GetOrLoad 的类型化版本，值以 JSON 存放。
// 缓存里的内容解不开时当作未命中，删掉后重新回源。
func GetOrLoadJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var out T
	raw := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, raw)
	if err != nil {
		return out, err
	}
	if err = json.Unmarshal(b, &out); err == nil {
		return out, nil
	}

	_ = c.Invalidate(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, raw); err != nil {
		return out, err
	}
	if err = json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return out, nil
}
