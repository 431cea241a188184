package service

import (
	"context"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/internal/metrics"
	"github.com/paiban/visitcare/pkg/constraint"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/orderstatus"
	"github.com/paiban/visitcare/pkg/roster"
	"github.com/paiban/visitcare/pkg/timeslot"
	"github.com/paiban/visitcare/pkg/validator"
)

// MoveCommand 一次拖放变更
type MoveCommand struct {
	OrderID       string `json:"order_id"`
	TargetStaffID string `json:"target_staff_id"`
	SourceStaffID string `json:"source_staff_id,omitempty"` // 空表示来自未分配区
	NewStartTime  string `json:"new_start_time,omitempty"`
	NewEndTime    string `json:"new_end_time,omitempty"`
}

// MoveResult 变更结果
type MoveResult struct {
	Decision  validator.Decision `json:"decision"`
	Roster    []string           `json:"assigned_staff_ids"`
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Changed   bool               `json:"changed"`
}

// MoveOrder 判断并执行一次变更，被阻断时返回 MOVE_REJECTED
func (s *ScheduleService) MoveOrder(ctx context.Context, cmd MoveCommand) (*MoveResult, error) {
	if cmd.TargetStaffID == "" {
		return nil, errors.InvalidInput("target_staff_id", "不能为空")
	}
	timeChange := cmd.NewStartTime != "" || cmd.NewEndTime != ""
	if timeChange {
		if err := timeslot.ValidRange(cmd.NewStartTime, cmd.NewEndTime); err != nil {
			return nil, errors.New(errors.CodeInvalidTimeRange, err.Error())
		}
	}

	order, err := s.getOrder(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, errors.OrderNotEditable(order.ID, string(order.Status))
	}

	data, err := s.loadDay(ctx, order.Date, true)
	if err != nil {
		return nil, err
	}

	reschedule := cmd.SourceStaffID == cmd.TargetStaffID && order.HasStaff(cmd.TargetStaffID)
	req := &validator.MoveRequest{
		Order:             order,
		TargetStaffID:     cmd.TargetStaffID,
		Reschedule:        reschedule,
		Staff:             data.staff,
		Customers:         data.customers,
		TargetStaffOrders: data.ordersOfStaff(cmd.TargetStaffID),
		Unavailability:    data.unavailability,
		NewStartTime:      cmd.NewStartTime,
		NewEndTime:        cmd.NewEndTime,
		ServiceTypes:      data.serviceTypes,
		TravelTimes:       data.travelTimes,
	}
	decision := s.admission.Validate(req)
	recordDecision(decision)

	if !decision.Allowed {
		s.log.MoveRejected(order.ID, cmd.TargetStaffID, string(decision.Rule), decision.Reason)
		return nil, errors.MoveRejected(string(decision.Rule), decision.Reason)
	}

	customer := data.customers[order.CustomerID]
	day, _ := model.DayOfWeekOf(order.Date)
	required := roster.RequiredStaffCount(order, customer, day)
	next := roster.Next(order.AssignedStaffIDs, cmd.TargetStaffID, cmd.SourceStaffID, required)
	if len(next) > required {
		logger.WithContext(ctx).Warn().
			Str("order_id", order.ID).
			Int("required", required).
			Int("assigned", len(next)).
			Msg("服务名单超出所需人数")
	}

	res := &MoveResult{
		Decision:  decision,
		Roster:    next,
		StartTime: order.StartTime,
		EndTime:   order.EndTime,
	}
	rosterChanged := !sameRoster(order.AssignedStaffIDs, next)
	if timeChange && (cmd.NewStartTime != order.StartTime || cmd.NewEndTime != order.EndTime) {
		if err := s.orders.SetRosterAndTime(ctx, order.ID, next, cmd.NewStartTime, cmd.NewEndTime); err != nil {
			return nil, dbError(err)
		}
		res.StartTime, res.EndTime, res.Changed = cmd.NewStartTime, cmd.NewEndTime, true
	} else if rosterChanged {
		if err := s.orders.SetRoster(ctx, order.ID, next); err != nil {
			return nil, dbError(err)
		}
		res.Changed = true
	}

	s.log.MoveValidated(order.ID, cmd.TargetStaffID, len(decision.Warnings))
	if res.Changed {
		s.publish(ctx, cache.OrderEvent{
			OrderID:       order.ID,
			Date:          order.Date,
			WeekStartDate: order.WeekStartDate,
			Kind:          cache.EventMoved,
		}, order.Date)
	}
	return res, nil
}

// UnassignStaff 从订单中移除一名人员，名单清空时订单回到待分配
func (s *ScheduleService) UnassignStaff(ctx context.Context, orderID, staffID string) ([]string, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, errors.OrderNotEditable(order.ID, string(order.Status))
	}
	if !order.HasStaff(staffID) {
		return nil, errors.InvalidInput("staff_id", "不在该订单的服务名单中")
	}

	next := roster.Remove(order.AssignedStaffIDs, staffID)
	if len(next) == 0 {
		err = s.orders.Unassign(ctx, order.ID)
	} else {
		err = s.orders.SetRoster(ctx, order.ID, next)
	}
	if err != nil {
		return nil, dbError(err)
	}

	s.publish(ctx, cache.OrderEvent{
		OrderID:       order.ID,
		Date:          order.Date,
		WeekStartDate: order.WeekStartDate,
		Kind:          cache.EventUnassigned,
	}, order.Date)
	return next, nil
}

// TransitionStatus 迁移单个订单状态
func (s *ScheduleService) TransitionStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	if !validStatus(to) {
		return nil, errors.InvalidInput("status", "未知的订单状态")
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := orderstatus.Transition(order.Status, to); err != nil {
		metrics.RecordStatusTransition("rejected", 1)
		return nil, err
	}
	if err := s.orders.SetStatus(ctx, order.ID, to); err != nil {
		return nil, dbError(err)
	}
	metrics.RecordStatusTransition("applied", 1)
	s.log.StatusTransition(order.ID, string(order.Status), string(to))

	order.Status = to
	s.publish(ctx, cache.OrderEvent{
		OrderID:       order.ID,
		Date:          order.Date,
		WeekStartDate: order.WeekStartDate,
		Kind:          cache.EventStatus,
	}, order.Date)
	return order, nil
}

// BulkTransition 批量迁移订单状态，非法迁移与不存在的订单跳过
func (s *ScheduleService) BulkTransition(ctx context.Context, orderIDs []string, to model.OrderStatus) (orderstatus.BulkResult, error) {
	if !validStatus(to) {
		return orderstatus.BulkResult{}, errors.InvalidInput("status", "未知的订单状态")
	}

	var (
		orders  []*model.Order
		missing []string
		seen    = make(map[string]bool, len(orderIDs))
	)
	for _, id := range orderIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		o, err := s.getOrder(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				missing = append(missing, id)
				continue
			}
			return orderstatus.BulkResult{}, err
		}
		orders = append(orders, o)
	}

	plan := orderstatus.PlanBulk(orders, to)
	plan.Skipped = append(plan.Skipped, missing...)

	if len(plan.Applied) > 0 {
		if _, err := s.orders.BulkSetStatus(ctx, plan.Applied, to); err != nil {
			return orderstatus.BulkResult{}, dbError(err)
		}
	}
	metrics.RecordStatusTransition("applied", len(plan.Applied))
	metrics.RecordStatusTransition("skipped", len(plan.Skipped))

	applied := make(map[string]bool, len(plan.Applied))
	for _, id := range plan.Applied {
		applied[id] = true
	}
	dates := make(map[string]bool)
	for _, o := range orders {
		if applied[o.ID] {
			s.log.StatusTransition(o.ID, string(o.Status), string(to))
			dates[o.Date] = true
		}
	}
	for date := range dates {
		s.publish(ctx, cache.OrderEvent{Date: date, Kind: cache.EventStatus}, date)
	}
	return plan, nil
}

func recordDecision(d validator.Decision) {
	metrics.RecordMoveValidation(d.Allowed)
	if !d.Allowed {
		metrics.RecordRuleHit(string(d.Rule), string(constraint.SeverityError))
		return
	}
	for _, w := range d.Findings {
		metrics.RecordRuleHit(string(w.Rule), string(w.Severity))
	}
}

func validStatus(s model.OrderStatus) bool {
	for _, v := range model.AllOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func sameRoster(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
