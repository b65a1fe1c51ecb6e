package metrics

import (
	"sync"
	"time"

	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// SmsMetrics 短信发送指标
type SmsMetrics struct {
	mu              sync.RWMutex
	attempts        uint64
	successes       uint64
	failureCounts   map[string]uint64 // 按错误码统计失败次数
	processingTimes []time.Duration
	lastResetTime   time.Time
}

// 保留最近的耗时样本数
const maxSamples = 1000

var globalMetrics = NewSmsMetrics()

// NewSmsMetrics 创建独立的指标实例
func NewSmsMetrics() *SmsMetrics {
	return &SmsMetrics{
		failureCounts: make(map[string]uint64),
		lastResetTime: time.Now(),
	}
}

// RecordAttempt 记录一次发送结果，errorCode为空表示成功
func (m *SmsMetrics) RecordAttempt(errorCode string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if errorCode == "" {
		m.successes++
	} else {
		m.failureCounts[errorCode]++
	}

	m.processingTimes = append(m.processingTimes, duration)
	if len(m.processingTimes) > maxSamples {
		m.processingTimes = m.processingTimes[len(m.processingTimes)-maxSamples:]
	}
}

// Summary 获取指标摘要
func (m *SmsMetrics) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if len(m.processingTimes) > 0 {
		var total time.Duration
		for _, d := range m.processingTimes {
			total += d
		}
		avg = total / time.Duration(len(m.processingTimes))
	}

	failures := make(map[string]uint64, len(m.failureCounts))
	for code, n := range m.failureCounts {
		failures[code] = n
	}

	return map[string]interface{}{
		"attempts":          m.attempts,
		"successes":         m.successes,
		"failures":          m.attempts - m.successes,
		"failureCounts":     failures,
		"avgProcessingTime": avg.String(),
		"uptime":            time.Since(m.lastResetTime).String(),
		"lastResetTime":     m.lastResetTime.Format(constants.TimeFormatDefault),
	}
}

// Reset 重置指标
func (m *SmsMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = 0
	m.successes = 0
	m.failureCounts = make(map[string]uint64)
	m.processingTimes = nil
	m.lastResetTime = time.Now()
}

// GetGlobalMetrics 获取全局指标实例
func GetGlobalMetrics() *SmsMetrics {
	return globalMetrics
}
