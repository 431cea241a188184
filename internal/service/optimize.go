package service

import (
	"context"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/internal/metrics"
	"github.com/paiban/visitcare/internal/optimizer"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
)

// OptimizeCommand 优化请求
type OptimizeCommand struct {
	WeekStartDate    string `json:"week_start_date"`
	DryRun           bool   `json:"dry_run"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty"`
}

// OptimizeResult 优化结果
type OptimizeResult struct {
	Run           *model.OptimizationRun `json:"run"`
	OrdersUpdated int                    `json:"orders_updated"`
}

// RunOptimization 调用外部优化服务并写回结果
// 优化结果直接写入名单，不经过准入判断
func (s *ScheduleService) RunOptimization(ctx context.Context, cmd OptimizeCommand) (*OptimizeResult, error) {
	dates, ok := model.WeekDates(cmd.WeekStartDate)
	if !ok {
		return nil, errors.InvalidInput("week_start_date", "必须为周一日期 YYYY-MM-DD")
	}
	if s.optimizer == nil {
		return nil, errors.OptimizerUnavailable("优化服务未配置", nil)
	}

	resp, err := s.optimizer.Optimize(ctx, optimizer.Request{
		WeekStartDate:    cmd.WeekStartDate,
		DryRun:           cmd.DryRun,
		TimeLimitSeconds: cmd.TimeLimitSeconds,
	})
	if err != nil {
		metrics.RecordOptimizerRun("error")
		return nil, err
	}
	metrics.RecordOptimizerRun(string(resp.Status))

	weekOrders, err := s.orders.ListByWeek(ctx, cmd.WeekStartDate)
	if err != nil {
		return nil, dbError(err)
	}

	run := &model.OptimizationRun{
		WeekStartDate:    cmd.WeekStartDate,
		Status:           resp.Status,
		ObjectiveValue:   resp.ObjectiveValue,
		SolveTimeSeconds: resp.SolveTimeSeconds,
		TotalOrders:      len(weekOrders),
		DryRun:           cmd.DryRun,
		Assignments:      resp.Assignments,
	}
	for _, a := range resp.Assignments {
		if len(a.StaffIDs) > 0 {
			run.AssignedCount++
		}
	}

	solved := resp.Status == model.OptimizationOptimal || resp.Status == model.OptimizationFeasible
	updated := 0
	if !cmd.DryRun && solved {
		updated, err = s.orders.ApplyAssignments(ctx, resp.Assignments)
		if err != nil {
			return nil, dbError(err)
		}
	}

	// 名单已写入，记录保存失败只告警
	if err := s.runs.Create(ctx, run); err != nil {
		logger.WithContext(ctx).Warn().Err(err).
			Str("week_start_date", run.WeekStartDate).
			Int("orders_updated", updated).
			Msg("保存优化记录失败")
	}
	s.log.OptimizationApplied(run.ID, run.WeekStartDate, string(run.Status), updated, cmd.DryRun)

	if updated > 0 {
		s.publish(ctx, cache.OrderEvent{WeekStartDate: cmd.WeekStartDate, Kind: cache.EventOptimized}, dates...)
	}
	return &OptimizeResult{Run: run, OrdersUpdated: updated}, nil
}
