package redis

import (
	"context"
	"fmt"
	"strconv"

	"campus_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	cacheWorkerNum  = 15   // Worker 数量，与最小空闲连接数一致
	cacheBufferSize = 3000 // 任务通道缓冲
)

// Init 初始化 Redis 连接并创建缓存服务
// 返回的 client 由调用方在退出时 Close
func Init(ctx context.Context, conf *config.RedisConfig) (*redis.Client, *RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password,
		DB:       conf.Db,

		// 连接池配置
		PoolSize:     50,
		MinIdleConns: cacheWorkerNum,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, NewRedisCache(client, cacheWorkerNum, cacheBufferSize), nil
}
