package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bujia-iot/tg-sms/pkg/smsgateway"
)

// SendRecord 一次短信发送尝试的审计记录
type SendRecord struct {
	ID            string                    `json:"id"`
	Host          string                    `json:"host"`
	Recipient     string                    `json:"recipient"`
	GatewayPort   int                       `json:"gateway_port"`
	CorrelationID string                    `json:"correlation_id,omitempty"`
	Success       bool                      `json:"success"`
	ErrorCode     string                    `json:"error_code,omitempty"`
	Error         string                    `json:"error,omitempty"`
	Response      string                    `json:"response,omitempty"`
	Journal       []smsgateway.JournalEntry `json:"journal"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    time.Time                 `json:"finished_at"`
}

// NewSendRecord 创建带唯一ID的记录
func NewSendRecord(host, recipient string, gatewayPort int) *SendRecord {
	return &SendRecord{
		ID:          uuid.New().String(),
		Host:        host,
		Recipient:   recipient,
		GatewayPort: gatewayPort,
		StartedAt:   time.Now(),
	}
}

// Duration 发送耗时
func (r *SendRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordStore 发送记录存储
type RecordStore interface {
	Save(ctx context.Context, record *SendRecord) error
	Get(ctx context.Context, id string) (*SendRecord, error)
	Recent(ctx context.Context, limit int) ([]*SendRecord, error)
}
