package storage

import (
	"context"
	"sync"

	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

// MemoryRecordStore 进程内记录存储，未配置Redis时使用
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]*SendRecord
	order   []string
	max     int
}

// NewMemoryRecordStore 创建内存存储，最多保留max条，max<=0时不限制
func NewMemoryRecordStore(max int) *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[string]*SendRecord),
		max:     max,
	}
}

// Save 保存记录
func (s *MemoryRecordStore) Save(_ context.Context, record *SendRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	cp := *record
	s.records[record.ID] = &cp

	for s.max > 0 && len(s.order) > s.max {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Get 按ID获取记录
func (s *MemoryRecordStore) Get(_ context.Context, id string) (*SendRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrRecordNotFound, "record %s not found", id)
	}
	cp := *record
	return &cp, nil
}

// Recent 最近的记录，新的在前
func (s *MemoryRecordStore) Recent(_ context.Context, limit int) ([]*SendRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SendRecord
	for i := len(s.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *s.records[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}
