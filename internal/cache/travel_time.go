package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/traveltime"
)

// TravelTimeStore 移动时间表缓存，哈希字段为 from_{A}_to_{B}
type TravelTimeStore struct {
	client *redis.Client
	key    string
}

// NewTravelTimeStore 创建移动时间缓存
func NewTravelTimeStore(client *redis.Client, prefix string) *TravelTimeStore {
	return &TravelTimeStore{client: client, key: key(prefix, "travel_times")}
}

// Load 读取缓存的移动时间表，缓存为空时第二个返回值为 false
func (s *TravelTimeStore) Load(ctx context.Context) (*traveltime.Lookup, bool, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("读取移动时间缓存失败: %w", err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	docs := make([]traveltime.Doc, 0, len(raw))
	for id, v := range raw {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		docs = append(docs, traveltime.Doc{ID: id, Minutes: minutes})
	}
	lookup, skipped := traveltime.FromDocs(docs)
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("移动时间缓存中存在无法解析的字段")
	}
	return lookup, true, nil
}

// Save 覆盖写入移动时间表
func (s *TravelTimeStore) Save(ctx context.Context, entries []model.TravelTimeEntry) error {
	fields := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		fields[traveltime.DocID(e.FromID, e.ToID)] = e.Minutes
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key)
		if len(fields) > 0 {
			p.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("写入移动时间缓存失败: %w", err)
	}
	return nil
}
