package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/paiban/visitcare/pkg/validator"
)

// FindingsStore 按日期缓存检查结果
type FindingsStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewFindingsStore 创建检查结果缓存
func NewFindingsStore(client *redis.Client, prefix string, ttl time.Duration) *FindingsStore {
	return &FindingsStore{client: client, prefix: key(prefix, "findings"), ttl: ttl}
}

// Get 读取某天的检查结果
func (s *FindingsStore) Get(ctx context.Context, date string) (validator.Findings, bool, error) {
	raw, err := s.client.Get(ctx, key(s.prefix, date)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取检查结果缓存失败: %w", err)
	}
	var f validator.Findings
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false, fmt.Errorf("解析检查结果缓存失败: %w", err)
	}
	if f == nil {
		f = validator.Findings{}
	}
	return f, true, nil
}

// Set 写入某天的检查结果
func (s *FindingsStore) Set(ctx context.Context, date string, f validator.Findings) error {
	if f == nil {
		f = validator.Findings{}
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("序列化检查结果失败: %w", err)
	}
	if err := s.client.Set(ctx, key(s.prefix, date), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("写入检查结果缓存失败: %w", err)
	}
	return nil
}

// Invalidate 删除某天的检查结果
func (s *FindingsStore) Invalidate(ctx context.Context, dates ...string) error {
	if len(dates) == 0 {
		return nil
	}
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = key(s.prefix, d)
	}
	return s.client.Del(ctx, keys...).Err()
}
