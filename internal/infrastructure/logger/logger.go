package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// 全局日志实例
var log = logrus.New()

// Init 初始化全局日志系统
func Init(cfg *config.LoggerConfig) error {
	return Configure(log, cfg)
}

// Configure 按配置设置一个logrus实例：级别、格式和输出目标
func Configure(l *logrus.Logger, cfg *config.LoggerConfig) error {
	// 设置日志级别
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %s, %w", cfg.Level, err)
	}
	l.SetLevel(level)

	// 设置日志格式
	if strings.ToLower(cfg.Format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: constants.TimeFormatDefault,
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: constants.TimeFormatDefault,
			FullTimestamp:   true,
		})
	}

	var writers []io.Writer
	if cfg.EnableConsole {
		writers = append(writers, os.Stdout)
	}

	// 文件输出按大小轮转
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))

	return nil
}

// GetLogger 获取全局日志实例
func GetLogger() *logrus.Logger {
	return log
}

// Info 输出Info级别日志
func Info(args ...interface{}) {
	log.Info(args...)
}

// Errorf 格式化输出Error级别日志
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatalf 格式化输出Fatal级别日志
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

// WithField 添加字段到日志
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields 添加多个字段到日志
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}
