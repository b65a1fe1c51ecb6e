// Package main TG网关短信发送服务
// @title TG网关短信发送API
// @version 1.0
// @description 通过TG系列GSM网关管理接口发送短信的HTTP接口

// @host localhost:8080
// @BasePath /

// @tag.name sms
// @tag.description 短信发送与发送记录

// @tag.name system
// @tag.description 健康检查与统计
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bujia-iot/tg-sms/internal/apis"
	"github.com/bujia-iot/tg-sms/internal/app/service"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/logger"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/redis"
	"github.com/bujia-iot/tg-sms/pkg/metrics"
	"github.com/bujia-iot/tg-sms/pkg/storage"
)

var configFile = flag.String("config", "configs/tg-sms.yaml", "配置文件路径")

func main() {
	// 解析命令行参数
	flag.Parse()

	// 加载配置文件
	if err := config.Load(*configFile); err != nil {
		fmt.Printf("加载配置文件失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("初始化日志系统失败: %v\n", err)
		os.Exit(1)
	}
	logger.Info("短信网关服务启动中...")

	// 发送记录优先保存到Redis，不可用时退回内存
	var store storage.RecordStore = storage.NewMemoryRecordStore(1000)
	if err := redis.InitClient(); err != nil {
		logger.Errorf("初始化Redis连接失败: %v", err)
	} else if client := redis.GetClient(); client != nil {
		store = storage.NewRedisRecordStore(client, cfg.Redis.RecordTTL())
	}

	svc := service.NewSmsService(
		service.SettingsFromConfig(cfg.Gateway),
		store,
		metrics.GetGlobalMetrics(),
		logger.WithField("component", "sms_service"),
	)
	server := apis.NewGinHTTPServer(cfg.HTTPAPIServer,
		apis.NewSmsAPI(svc, time.Duration(cfg.HTTPAPIServer.TimeoutSeconds)*time.Second))

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP API服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Errorf("关闭HTTP服务器失败: %v", err)
	}

	// 关闭Redis连接
	if err := redis.Close(); err != nil {
		logger.Errorf("关闭Redis连接失败: %v", err)
	}

	logger.Info("短信网关服务已安全关闭")
}
