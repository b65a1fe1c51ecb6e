package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

const (
	recordKeyPrefix = "tgsms:record:"
	recentListKey   = "tgsms:records"
	recentListMax   = 1000
)

// RedisRecordStore 基于Redis的记录存储，记录为JSON字符串并带过期时间
type RedisRecordStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRecordStore 创建Redis存储，ttl<=0表示不过期
func NewRedisRecordStore(client redis.UniversalClient, ttl time.Duration) *RedisRecordStore {
	return &RedisRecordStore{client: client, ttl: ttl}
}

// Save 保存记录并加入最近列表
func (s *RedisRecordStore) Save(ctx context.Context, record *SendRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRedisOperationFailed, "marshal send record", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKeyPrefix+record.ID, data, s.ttl)
	pipe.LPush(ctx, recentListKey, record.ID)
	pipe.LTrim(ctx, recentListKey, 0, recentListMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrRedisOperationFailed, "save send record", err)
	}
	return nil
}

// Get 按ID获取记录
func (s *RedisRecordStore) Get(ctx context.Context, id string) (*SendRecord, error) {
	data, err := s.client.Get(ctx, recordKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.Newf(apperrors.ErrRecordNotFound, "record %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRedisOperationFailed, "get send record", err)
	}

	var record SendRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRedisOperationFailed, "unmarshal send record", err)
	}
	return &record, nil
}

// Recent 最近的记录，新的在前；已过期的记录被跳过
func (s *RedisRecordStore) Recent(ctx context.Context, limit int) ([]*SendRecord, error) {
	if limit <= 0 || limit > recentListMax {
		limit = recentListMax
	}

	ids, err := s.client.LRange(ctx, recentListKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRedisOperationFailed, "list recent records", err)
	}

	out := make([]*SendRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.Get(ctx, id)
		if apperrors.IsErrCode(err, apperrors.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
