package xredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int // <=0 用默认值
	MinIdleConns int // <=0 用默认值
}

// options 把服务配置翻译成 redis 客户端参数，连接池大小可按配置调
func (c *Config) options() *redis.Options {
	poolSize := c.PoolSize
	if poolSize <= 0 {
		poolSize = 100
	}
	minIdle := c.MinIdleConns
	if minIdle <= 0 {
		minIdle = 10
	}

	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
	}
}

func NewRedis(c *Config) *redis.Client {
	rdb := redis.NewClient(c.options())

	// 启动时 Ping 一下，确保连接通畅
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		panic("failed to connect redis: " + err.Error())
	}

	return rdb
}
