package validator

import (
	"fmt"

	"github.com/paiban/visitcare/pkg/constraint"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/roster"
	"github.com/paiban/visitcare/pkg/traveltime"
)

// MoveRequest 单次变更的判断输入
type MoveRequest struct {
	Order         *model.Order
	TargetStaffID string
	// Reschedule 为 true 表示目标人员已在名单中，仅修改时间
	Reschedule bool

	Staff             map[string]*model.Staff
	Customers         map[string]*model.Customer
	TargetStaffOrders []*model.Order // 目标人员当天的订单
	Unavailability    []*model.StaffUnavailability
	Day               model.DayOfWeek // 为空时按订单日期推算

	NewStartTime string // 可选
	NewEndTime   string

	ServiceTypes model.ServiceTypeRegistry
	TravelTimes  *traveltime.Lookup
}

// Decision 判断结果
type Decision struct {
	Allowed  bool                   `json:"allowed"`
	Reason   string                 `json:"reason,omitempty"`
	Rule     constraint.RuleType    `json:"rule,omitempty"`
	Warnings []string               `json:"warnings"`
	Findings []constraint.Violation `json:"findings,omitempty"`
}

// AdmissionValidator 变更准入判断器
type AdmissionValidator struct {
	rules *constraint.RuleSet
}

// NewAdmissionValidator 创建准入判断器，rules 为 nil 时使用默认规则
func NewAdmissionValidator(rules *constraint.RuleSet) *AdmissionValidator {
	if rules == nil {
		rules = constraint.DefaultRuleSet()
	}
	return &AdmissionValidator{rules: rules}
}

var defaultAdmission = NewAdmissionValidator(nil)

// ValidateMove 使用默认规则判断变更是否可行
func ValidateMove(req *MoveRequest) Decision {
	return defaultAdmission.Validate(req)
}

// Validate 判断变更是否可行，无副作用
func (v *AdmissionValidator) Validate(req *MoveRequest) Decision {
	staff := req.Staff[req.TargetStaffID]
	if staff == nil {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("服务人员 %s 不存在", req.TargetStaffID),
			Rule:    constraint.RuleStaffNotFound,
		}
	}

	order := req.Order
	customer := req.Customers[order.CustomerID]
	day := dayOf(req.Day, order.Date)

	start, end := order.StartTime, order.EndTime
	if req.NewStartTime != "" && req.NewEndTime != "" {
		start, end = req.NewStartTime, req.NewEndTime
	}

	ctx := &constraint.Context{
		Order:          order,
		Staff:          staff,
		Customer:       customer,
		StaffOrders:    req.TargetStaffOrders,
		Unavailability: req.Unavailability,
		Day:            day,
		StartTime:      start,
		EndTime:        end,
		Reschedule:     req.Reschedule,
		RequiredCount:  roster.RequiredStaffCount(order, customer, day),
		ServiceTypes:   req.ServiceTypes,
		TravelTimes:    req.TravelTimes,
	}

	res := v.rules.Evaluate(ctx)
	if !res.Allowed() {
		return Decision{
			Allowed: false,
			Reason:  res.Blocked.Message,
			Rule:    res.Blocked.Rule,
		}
	}

	d := Decision{Allowed: true, Warnings: []string{}, Findings: res.Warnings}
	for _, w := range res.Warnings {
		d.Warnings = append(d.Warnings, w.Message)
	}
	return d
}
