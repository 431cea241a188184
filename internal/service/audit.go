package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/paiban/visitcare/internal/metrics"
	"github.com/paiban/visitcare/internal/repository"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/roster"
	"github.com/paiban/visitcare/pkg/validator"
)

// AuditReport 某天的检查报告
type AuditReport struct {
	Date     string              `json:"date"`
	Findings validator.Findings  `json:"findings"`
	Items    []validator.Finding `json:"items"`
	Errors   int                 `json:"errors"`
	Warnings int                 `json:"warnings"`
	Cached   bool                `json:"cached"`
}

func newReport(date string, f validator.Findings, cached bool) *AuditReport {
	errs, warns := f.Count()
	items := f.Flatten()
	if items == nil {
		items = []validator.Finding{}
	}
	return &AuditReport{Date: date, Findings: f, Items: items, Errors: errs, Warnings: warns, Cached: cached}
}

// AuditDay 检查某天的全部已分配订单，优先返回缓存结果
func (s *ScheduleService) AuditDay(ctx context.Context, date string) (*AuditReport, error) {
	if _, ok := model.DayOfWeekOf(date); !ok {
		return nil, errors.InvalidInput("date", "日期格式必须为 YYYY-MM-DD")
	}

	if s.findings != nil {
		f, found, err := s.findings.Get(ctx, date)
		if err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("date", date).Msg("读取检查结果缓存失败")
		} else if found {
			return newReport(date, f, true), nil
		}
	}

	f, err := s.auditFresh(ctx, date)
	if err != nil {
		return nil, err
	}
	return newReport(date, f, false), nil
}

// auditFresh 重新检查并回填缓存
func (s *ScheduleService) auditFresh(ctx context.Context, date string) (validator.Findings, error) {
	data, err := s.loadDay(ctx, date, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f := s.auditor.Audit(&validator.AuditInput{
		Orders:         data.orders,
		Staff:          data.staff,
		Customers:      data.customers,
		Unavailability: data.unavailability,
		ServiceTypes:   data.serviceTypes,
	})
	elapsed := time.Since(start)

	errs, warns := f.Count()
	metrics.RecordAudit(errs, warns, elapsed)
	for _, x := range f.Flatten() {
		metrics.RecordRuleHit(string(x.Type), string(x.Severity))
	}
	s.log.AuditComplete(date, len(data.orders), errs, warns, elapsed)

	if s.findings != nil {
		if err := s.findings.Set(ctx, date, f); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("date", date).Msg("写入检查结果缓存失败")
		}
	}
	return f, nil
}

// AssignmentDiffs 对比当前名单与该周最近一次优化结果，没有优化记录时返回空
func (s *ScheduleService) AssignmentDiffs(ctx context.Context, week string) ([]roster.Diff, error) {
	if _, ok := model.WeekDates(week); !ok {
		return nil, errors.InvalidInput("week", "必须为周一日期 YYYY-MM-DD")
	}
	run, err := s.runs.LatestForWeek(ctx, week)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return []roster.Diff{}, nil
		}
		return nil, dbError(err)
	}
	orders, err := s.orders.ListByWeek(ctx, week)
	if err != nil {
		return nil, dbError(err)
	}
	diffs := roster.DiffAgainstRun(orders, run)
	if diffs == nil {
		diffs = []roster.Diff{}
	}
	return diffs, nil
}
