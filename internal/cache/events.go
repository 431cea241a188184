package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// EventKind 订单变更类型
type EventKind string

const (
	EventMoved      EventKind = "moved"
	EventUnassigned EventKind = "unassigned"
	EventStatus     EventKind = "status"
	EventOptimized  EventKind = "optimized"
)

// OrderEvent 订单变更事件
type OrderEvent struct {
	OrderID       string    `json:"order_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	WeekStartDate string    `json:"week_start_date,omitempty"`
	Kind          EventKind `json:"kind"`
	At            int64     `json:"at"`
}

// Delivery 读取到的一条事件
type Delivery struct {
	ID    string
	Event OrderEvent
}

// EventStream 基于 Redis Streams 的订单变更事件流
type EventStream struct {
	client *redis.Client
	stream string
	group  string
}

// NewEventStream 创建事件流
func NewEventStream(client *redis.Client, stream, group string) *EventStream {
	return &EventStream{client: client, stream: stream, group: group}
}

// Publish 发布事件，返回消息ID
func (s *EventStream) Publish(ctx context.Context, ev OrderEvent) (string, error) {
	if ev.At == 0 {
		ev.At = time.Now().Unix()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("发布订单事件失败: %w", err)
	}
	return id, nil
}

// EnsureGroup 创建消费者组，已存在时忽略
func (s *EventStream) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("创建消费者组失败: %w", err)
	}
	return nil
}

// Read 以消费者身份读取新事件，block 为 0 时不阻塞
// 无法解析的消息直接确认丢弃
func (s *EventStream) Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]Delivery, error) {
	if block <= 0 {
		block = -1
	}
	return s.read(ctx, consumer, ">", count, block)
}

// ReadPending 读取该消费者已投递但尚未确认的事件
func (s *EventStream) ReadPending(ctx context.Context, consumer string, count int64) ([]Delivery, error) {
	return s.read(ctx, consumer, "0", count, -1)
}

func (s *EventStream) read(ctx context.Context, consumer, start string, count int64, block time.Duration) ([]Delivery, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: consumer,
		Streams:  []string{s.stream, start},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("读取订单事件失败: %w", err)
	}

	var out []Delivery
	var bad []string
	for _, st := range streams {
		for _, msg := range st.Messages {
			raw, _ := msg.Values["data"].(string)
			var ev OrderEvent
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				bad = append(bad, msg.ID)
				continue
			}
			out = append(out, Delivery{ID: msg.ID, Event: ev})
		}
	}
	if len(bad) > 0 {
		_ = s.Ack(ctx, bad...)
	}
	return out, nil
}

// Ack 确认事件已处理
func (s *EventStream) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.client.XAck(ctx, s.stream, s.group, ids...).Err()
}
