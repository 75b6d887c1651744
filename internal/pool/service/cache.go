package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/xerr"
)

const openPoolsKey = "pool:open:" + domain.AssetBTC

// Cache 开放池列表的只读加速层，不承担一致性职责
type Cache interface {
	GetOpenPools(ctx context.Context) ([]domain.Pool, bool, error)
	SetOpenPools(ctx context.Context, pools []domain.Pool, ttl time.Duration) error
	DelOpenPools(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(c *redis.Client) Cache {
	return &redisCache{client: c}
}

func (r *redisCache) GetOpenPools(ctx context.Context) ([]domain.Pool, bool, error) {
	b, err := r.client.Get(ctx, openPoolsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, xerr.New(xerr.CacheError, fmt.Sprintf("get open pools failed: %v", err))
	}

	var pools []domain.Pool
	if err := json.Unmarshal(b, &pools); err != nil {
		// 缓存脏了就删掉，避免持续命中错误
		_ = r.client.Del(ctx, openPoolsKey).Err()
		return nil, false, xerr.New(xerr.CacheError, fmt.Sprintf("decode open pools failed: %v", err))
	}
	return pools, true, nil
}

func (r *redisCache) SetOpenPools(ctx context.Context, pools []domain.Pool, ttl time.Duration) error {
	b, err := json.Marshal(pools)
	if err != nil {
		return xerr.New(xerr.CacheError, fmt.Sprintf("encode open pools failed: %v", err))
	}
	// 加入随机时间 防止抖动
	return r.client.Set(ctx, openPoolsKey, b, withJitter(ttl, 300*time.Millisecond)).Err()
}

func (r *redisCache) DelOpenPools(ctx context.Context) error {
	return r.client.Del(ctx, openPoolsKey).Err()
}

func withJitter(ttl time.Duration, jitter time.Duration) time.Duration {
	if ttl <= 0 || jitter <= 0 {
		return ttl
	}
	// [0, jitter) 的随机
	j := time.Duration(rand.Int63n(int64(jitter)))
	return ttl + j
}
