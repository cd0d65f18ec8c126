package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "aprovado:cache"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// OpenRedis connects and pings the configured Redis instance.
func OpenRedis(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, scope, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, redisKey(scope, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logCacheError("get", scope, key, err)
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, scope, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, redisKey(scope, key), value, ttl).Err(); err != nil {
		logCacheError("set", scope, key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, scope, key string) {
	if err := c.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		logCacheError("del", scope, key, err)
	}
}

func redisKey(scope, key string) string {
	return keyPrefix + ":" + scope + ":" + key
}

func logCacheError(op, scope, key string, err error) {
	entry := map[string]any{
		"msg":   "cache error",
		"op":    op,
		"scope": scope,
		"key":   key,
		"error": err.Error(),
	}
	b, _ := json.Marshal(entry)
	log.Printf("%s", string(b))
}
