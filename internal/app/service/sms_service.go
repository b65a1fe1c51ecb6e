package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
	"github.com/bujia-iot/tg-sms/pkg/metrics"
	"github.com/bujia-iot/tg-sms/pkg/smsgateway"
	"github.com/bujia-iot/tg-sms/pkg/storage"
)

// SendRequest 一条短信的发送请求
type SendRequest struct {
	To          string
	Message     string
	GatewayPort int // 为0时使用配置中的端口
}

// SmsService 短信业务服务：每次发送使用独立的网关客户端，结果写入审计记录
type SmsService struct {
	base    smsgateway.Settings
	store   storage.RecordStore
	metrics *metrics.SmsMetrics
	log     *logrus.Entry
}

// NewSmsService 创建短信服务实例
func NewSmsService(base smsgateway.Settings, store storage.RecordStore, m *metrics.SmsMetrics, log *logrus.Entry) *SmsService {
	if store == nil {
		store = storage.NewMemoryRecordStore(1000)
	}
	if m == nil {
		m = metrics.NewSmsMetrics()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SmsService{
		base:    base,
		store:   store,
		metrics: m,
		log:     log.WithField("component", "sms_service"),
	}
}

// SettingsFromConfig 由网关配置生成客户端基础配置
func SettingsFromConfig(cfg config.GatewayConfig) smsgateway.Settings {
	s := smsgateway.DefaultSettings()
	if cfg.Host != "" {
		s.Host = cfg.Host
	}
	if cfg.Port > 0 {
		s.Port = cfg.Port
	}
	if cfg.GatewayPort > 0 {
		s.GatewayPort = cfg.GatewayPort
	}
	if cfg.DialTimeoutSeconds > 0 {
		s.DialTimeout = cfg.DialTimeout()
	}
	if cfg.IOTimeoutSeconds > 0 {
		s.IOTimeout = cfg.IOTimeout()
	}
	s.Account = cfg.Account
	s.Password = cfg.Password
	s.Debug = cfg.Debug
	return s
}

// Send 发送一条短信。返回的记录在失败时同样有效，err描述失败原因。
func (s *SmsService) Send(ctx context.Context, req SendRequest) (*storage.SendRecord, error) {
	settings := s.base.WithRecipient(req.To).WithMessage(req.Message)
	if req.GatewayPort > 0 {
		settings = settings.WithGatewayPort(req.GatewayPort)
	}

	record := storage.NewSendRecord(settings.Host, settings.RecipientNumber, settings.GatewayPort)
	log := s.log.WithFields(logrus.Fields{
		"recordId":    record.ID,
		"recipient":   settings.RecipientNumber,
		"gatewayPort": settings.GatewayPort,
	})

	client := smsgateway.NewClient(settings, smsgateway.WithLogger(log))
	sendErr := client.SendSms(ctx)
	client.Close()

	record.FinishedAt = time.Now()
	record.Success = sendErr == nil
	record.CorrelationID = client.LastCorrelationID()
	record.Response = client.LastResponse()
	record.Journal = client.Journal()

	errorCode := ""
	if sendErr != nil {
		errorCode = apperrors.CodeOf(sendErr).String()
		record.ErrorCode = errorCode
		record.Error = sendErr.Error()
	}
	s.metrics.RecordAttempt(errorCode, record.Duration())

	// 审计记录写入失败不影响发送结果
	if err := s.store.Save(ctx, record); err != nil {
		log.WithError(err).Warn("保存发送记录失败")
	}

	if sendErr != nil {
		log.WithError(sendErr).WithField("errorCode", errorCode).Warn("短信发送失败")
	} else {
		log.WithField("correlationId", record.CorrelationID).Info("短信发送完成")
	}

	return record, sendErr
}

// GetRecord 查询发送记录
func (s *SmsService) GetRecord(ctx context.Context, id string) (*storage.SendRecord, error) {
	return s.store.Get(ctx, id)
}

// RecentRecords 最近的发送记录
func (s *SmsService) RecentRecords(ctx context.Context, limit int) ([]*storage.SendRecord, error) {
	return s.store.Recent(ctx, limit)
}

// MetricsSummary 发送指标摘要
func (s *SmsService) MetricsSummary() map[string]interface{} {
	return s.metrics.Summary()
}
