package apis

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "github.com/bujia-iot/tg-sms/docs"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/logger"
	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// GinHTTPServer 基于Gin的HTTP服务器
type GinHTTPServer struct {
	server *http.Server
	router *gin.Engine
	smsAPI *SmsAPI
}

// NewGinHTTPServer 创建基于Gin的HTTP服务器
func NewGinHTTPServer(cfg config.HTTPAPIServerConfig, smsAPI *SmsAPI) *GinHTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	registerRoutes(router, smsAPI, newRateLimiter(cfg))

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutSeconds+10) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &GinHTTPServer{
		server: server,
		router: router,
		smsAPI: smsAPI,
	}
}

// registerRoutes 注册所有路由
func registerRoutes(router *gin.Engine, smsAPI *SmsAPI, limiter *rate.Limiter) {
	// Swagger文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group(constants.APIPrefixV1)
	{
		v1.POST(constants.SmsSendPath, rateLimitMiddleware(limiter), smsAPI.SendSmsGin) // 发送短信，限流保护网关
		v1.GET(constants.SmsRecordsPath, smsAPI.ListRecordsGin)                         // 最近的发送记录
		v1.GET(constants.SmsRecordPath, smsAPI.GetRecordGin)                            // 单条发送记录

		system := v1.Group("/system")
		{
			system.GET("/stats", smsAPI.GetStatsGin)
			system.GET("/health", smsAPI.GetHealthGin)
		}
	}

	router.GET("/health", smsAPI.GetHealthGin)
	router.GET("/ping", smsAPI.PingGin)
}

// newRateLimiter 网关同一时间只适合处理少量管理连接
func newRateLimiter(cfg config.HTTPAPIServerConfig) *rate.Limiter {
	if cfg.RateLimitPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
}

// rateLimitMiddleware 超出速率时返回429
func rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				NewErrorResponse("请求过于频繁，请稍后重试", http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

// requestLogger 使用logrus记录请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"component": "gin_http_server",
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"clientIP":  c.ClientIP(),
		}).Info("HTTP请求")
	}
}

// Start 启动HTTP服务器
func (s *GinHTTPServer) Start() error {
	logger.WithFields(logrus.Fields{
		"component": "gin_http_server",
		"address":   s.server.Addr,
	}).Info("启动Gin HTTP服务器")
	return s.server.ListenAndServe()
}

// Stop 停止HTTP服务器
func (s *GinHTTPServer) Stop(ctx context.Context) error {
	logger.WithField("component", "gin_http_server").Info("停止Gin HTTP服务器")
	return s.server.Shutdown(ctx)
}

// GetRouter 获取Gin路由器（用于测试）
func (s *GinHTTPServer) GetRouter() *gin.Engine {
	return s.router
}
