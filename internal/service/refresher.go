package service

import (
	"context"
	"sort"
	"time"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
)

// EventConsumer 订单事件消费
type EventConsumer interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]cache.Delivery, error)
	ReadPending(ctx context.Context, consumer string, count int64) ([]cache.Delivery, error)
	Ack(ctx context.Context, ids ...string) error
}

// AuditRefresher 消费订单变更事件，重新检查受影响的日期并刷新缓存
type AuditRefresher struct {
	svc      *ScheduleService
	stream   EventConsumer
	consumer string
	batch    int64
	block    time.Duration
	backoff  time.Duration

	// 启动时及刷新失败后先重读未确认的事件
	retryPending bool
}

// NewAuditRefresher 创建检查刷新器
func NewAuditRefresher(svc *ScheduleService, stream EventConsumer, consumer string) *AuditRefresher {
	return &AuditRefresher{
		svc:      svc,
		stream:   stream,
		consumer: consumer,
		batch:    32,
		block:    2 * time.Second,
		backoff:  time.Second,

		retryPending: true,
	}
}

// Run 持续消费直到 ctx 取消
func (r *AuditRefresher) Run(ctx context.Context) error {
	if err := r.stream.EnsureGroup(ctx); err != nil {
		return err
	}
	log := logger.WithField("component", "audit_refresher")
	log.Info().Str("consumer", r.consumer).Msg("检查刷新器启动")

	for {
		if ctx.Err() != nil {
			log.Info().Msg("检查刷新器停止")
			return nil
		}
		n, err := r.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn().Err(err).Msg("处理订单事件失败")
			select {
			case <-ctx.Done():
			case <-time.After(r.backoff):
			}
			continue
		}
		if n > 0 {
			log.Debug().Int("events", n).Msg("订单事件已处理")
		}
	}
}

// Poll 读取并处理一批事件，返回处理的事件数
// 只有全部日期刷新成功后才确认，失败的事件在下一次 Poll 时重试
func (r *AuditRefresher) Poll(ctx context.Context) (int, error) {
	deliveries, err := r.next(ctx)
	if err != nil || len(deliveries) == 0 {
		return 0, err
	}

	ids := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		ids = append(ids, d.ID)
	}
	for _, date := range affectedDates(deliveries) {
		if err := r.refresh(ctx, date); err != nil {
			r.retryPending = true
			return 0, err
		}
	}
	if err := r.stream.Ack(ctx, ids...); err != nil {
		return 0, err
	}
	return len(deliveries), nil
}

func (r *AuditRefresher) next(ctx context.Context) ([]cache.Delivery, error) {
	if r.retryPending {
		pending, err := r.stream.ReadPending(ctx, r.consumer, r.batch)
		if err != nil {
			return nil, err
		}
		if len(pending) > 0 {
			return pending, nil
		}
		r.retryPending = false
	}
	return r.stream.Read(ctx, r.consumer, r.batch, r.block)
}

func (r *AuditRefresher) refresh(ctx context.Context, date string) error {
	if r.svc.findings != nil {
		if err := r.svc.findings.Invalidate(ctx, date); err != nil {
			return errors.CacheError("invalidate", err)
		}
	}
	_, err := r.svc.auditFresh(ctx, date)
	return err
}

// affectedDates 事件涉及的日期，去重排序；只有周信息的事件展开为整周
func affectedDates(deliveries []cache.Delivery) []string {
	set := make(map[string]bool)
	for _, d := range deliveries {
		switch {
		case d.Event.Date != "":
			if _, ok := model.DayOfWeekOf(d.Event.Date); ok {
				set[d.Event.Date] = true
			}
		case d.Event.WeekStartDate != "":
			if dates, ok := model.WeekDates(d.Event.WeekStartDate); ok {
				for _, date := range dates {
					set[date] = true
				}
			}
		}
	}
	out := make([]string, 0, len(set))
	for date := range set {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}
