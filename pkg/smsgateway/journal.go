package smsgateway

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JournalEntry 诊断日志中的一条记录
type JournalEntry struct {
	Time    time.Time    `json:"time"`
	Level   logrus.Level `json:"level"`
	Message string       `json:"message"`
}

// Journal 只追加的诊断日志，跨多次调用累积，不会自动清空
type Journal struct {
	mu      sync.RWMutex
	entries []JournalEntry
}

// NewJournal 创建空的诊断日志
func NewJournal() *Journal {
	return &Journal{}
}

// Append 追加一条记录
func (j *Journal) Append(level logrus.Level, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, JournalEntry{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})
}

// Entries 返回全部记录的副本，按追加顺序排列
func (j *Journal) Entries() []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Messages 只返回消息文本
func (j *Journal) Messages() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.Message)
	}
	return out
}

// Len 记录条数
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
