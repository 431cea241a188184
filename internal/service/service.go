// Package service 编排派单引擎与持久化、缓存、优化服务
package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/internal/optimizer"
	"github.com/paiban/visitcare/internal/repository"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/traveltime"
	"github.com/paiban/visitcare/pkg/validator"
)

// OrderStore 订单持久化
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByDate(ctx context.Context, date string) ([]*model.Order, error)
	ListByWeek(ctx context.Context, weekStart string) ([]*model.Order, error)
	SetRoster(ctx context.Context, id string, staffIDs []string) error
	SetRosterAndTime(ctx context.Context, id string, staffIDs []string, startTime, endTime string) error
	Unassign(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status model.OrderStatus) error
	BulkSetStatus(ctx context.Context, ids []string, status model.OrderStatus) (int64, error)
	ApplyAssignments(ctx context.Context, records []model.AssignmentRecord) (int, error)
}

// ReferenceStore 主数据读取
type ReferenceStore interface {
	ListStaff(ctx context.Context) ([]*model.Staff, error)
	ListCustomers(ctx context.Context) ([]*model.Customer, error)
	ListUnavailability(ctx context.Context, weekStart string) ([]*model.StaffUnavailability, error)
	ListServiceTypes(ctx context.Context) ([]model.ServiceTypeDoc, error)
	ListTravelTimes(ctx context.Context) ([]model.TravelTimeEntry, error)
}

// RunStore 优化记录持久化
type RunStore interface {
	Create(ctx context.Context, run *model.OptimizationRun) error
	LatestForWeek(ctx context.Context, weekStart string) (*model.OptimizationRun, error)
}

// Optimizer 外部优化服务
type Optimizer interface {
	Optimize(ctx context.Context, req optimizer.Request) (*optimizer.Response, error)
}

// FindingsCache 检查结果缓存
type FindingsCache interface {
	Get(ctx context.Context, date string) (validator.Findings, bool, error)
	Set(ctx context.Context, date string, f validator.Findings) error
	Invalidate(ctx context.Context, dates ...string) error
}

// TravelTimeCache 移动时间表缓存
type TravelTimeCache interface {
	Load(ctx context.Context) (*traveltime.Lookup, bool, error)
	Save(ctx context.Context, entries []model.TravelTimeEntry) error
}

// EventPublisher 订单变更事件发布
type EventPublisher interface {
	Publish(ctx context.Context, ev cache.OrderEvent) (string, error)
}

// Deps 服务依赖，缓存与事件发布可为空
type Deps struct {
	Orders      OrderStore
	Reference   ReferenceStore
	Runs        RunStore
	Optimizer   Optimizer
	Findings    FindingsCache
	TravelTimes TravelTimeCache
	Events      EventPublisher
}

// ScheduleService 排班变更服务
type ScheduleService struct {
	orders      OrderStore
	refs        ReferenceStore
	runs        RunStore
	optimizer   Optimizer
	findings    FindingsCache
	travelTimes TravelTimeCache
	events      EventPublisher

	admission *validator.AdmissionValidator
	auditor   *validator.Auditor
	log       *logger.EngineLogger
	now       func() time.Time
}

// New 创建排班变更服务
func New(d Deps) *ScheduleService {
	return &ScheduleService{
		orders:      d.Orders,
		refs:        d.Reference,
		runs:        d.Runs,
		optimizer:   d.Optimizer,
		findings:    d.Findings,
		travelTimes: d.TravelTimes,
		events:      d.Events,
		admission:   validator.NewAdmissionValidator(nil),
		auditor:     validator.NewAuditor(nil),
		log:         logger.NewEngineLogger(),
		now:         time.Now,
	}
}

// dayData 某一天判断所需的数据
type dayData struct {
	date           string
	orders         []*model.Order
	staff          map[string]*model.Staff
	customers      map[string]*model.Customer
	unavailability []*model.StaffUnavailability
	serviceTypes   model.ServiceTypeRegistry
	travelTimes    *traveltime.Lookup
}

// ordersOfStaff 某人员当天已分配的订单
func (d *dayData) ordersOfStaff(staffID string) []*model.Order {
	snap := model.Snapshot{Orders: d.orders}
	return snap.OrdersOfStaff(staffID, d.date)
}

func (s *ScheduleService) loadDay(ctx context.Context, date string, withTravel bool) (*dayData, error) {
	week, ok := model.WeekStartOf(date)
	if !ok {
		return nil, errors.InvalidInput("date", "日期格式必须为 YYYY-MM-DD")
	}

	orders, err := s.orders.ListByDate(ctx, date)
	if err != nil {
		return nil, dbError(err)
	}
	staff, err := s.refs.ListStaff(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	customers, err := s.refs.ListCustomers(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	unavailability, err := s.refs.ListUnavailability(ctx, week)
	if err != nil {
		return nil, dbError(err)
	}
	types, err := s.refs.ListServiceTypes(ctx)
	if err != nil {
		return nil, dbError(err)
	}

	d := &dayData{
		date:           date,
		orders:         orders,
		staff:          make(map[string]*model.Staff, len(staff)),
		customers:      make(map[string]*model.Customer, len(customers)),
		unavailability: unavailability,
		serviceTypes:   model.NewServiceTypeRegistry(types),
	}
	for _, st := range staff {
		d.staff[st.ID] = st
	}
	for _, c := range customers {
		d.customers[c.ID] = c
	}

	if withTravel {
		d.travelTimes, err = s.loadTravelTimes(ctx)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// loadTravelTimes 优先读缓存，未命中时读库并回填
func (s *ScheduleService) loadTravelTimes(ctx context.Context) (*traveltime.Lookup, error) {
	if s.travelTimes != nil {
		lookup, found, err := s.travelTimes.Load(ctx)
		if err != nil {
			logger.WithContext(ctx).Warn().Err(err).Msg("读取移动时间缓存失败，回退数据库")
		} else if found {
			return lookup, nil
		}
	}

	entries, err := s.refs.ListTravelTimes(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	if s.travelTimes != nil && len(entries) > 0 {
		if err := s.travelTimes.Save(ctx, entries); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Msg("回填移动时间缓存失败")
		}
	}
	return traveltime.FromEntries(entries), nil
}

// getOrder 读取订单并转换错误
func (s *ScheduleService) getOrder(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, errors.InvalidInput("order_id", "不能为空")
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("订单", id)
		}
		return nil, dbError(err)
	}
	return o, nil
}

// publish 发布变更事件并使相关日期的检查缓存失效，失败只记录日志
func (s *ScheduleService) publish(ctx context.Context, ev cache.OrderEvent, dates ...string) {
	if s.findings != nil && len(dates) > 0 {
		if err := s.findings.Invalidate(ctx, dates...); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Strs("dates", dates).Msg("检查结果缓存失效失败")
		}
	}
	if s.events == nil {
		return
	}
	if ev.At == 0 {
		ev.At = s.now().Unix()
	}
	if _, err := s.events.Publish(ctx, ev); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("kind", string(ev.Kind)).Msg("发布订单事件失败")
	}
}

func dbError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.Wrap(err, errors.CodeDatabaseError, "数据库操作失败")
}
