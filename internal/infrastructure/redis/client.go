package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/logger"
)

// 全局Redis客户端实例
var redisClient *redis.Client

// GetClient 获取Redis客户端实例，未初始化时为nil
func GetClient() *redis.Client {
	return redisClient
}

// NewClient 按配置创建Redis客户端并测试连接
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接测试失败: %v", err)
	}
	return client, nil
}

// InitClient 初始化全局Redis连接，未配置地址时跳过
func InitClient() error {
	redisConfig := config.GetConfig().Redis
	if redisConfig.Address == "" {
		logger.Info("未配置Redis地址，发送记录仅保存在内存中")
		return nil
	}

	client, err := NewClient(context.Background(), redisConfig)
	if err != nil {
		return err
	}
	redisClient = client

	logger.WithField("address", redisConfig.Address).Info("Redis连接初始化成功")
	return nil
}

// Close 关闭Redis连接
func Close() error {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			return fmt.Errorf("关闭Redis连接失败: %v", err)
		}
		redisClient = nil
		logger.Info("Redis连接已关闭")
	}
	return nil
}
