// Package constraint 定义派单约束规则
package constraint

import (
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/traveltime"
)

// Severity 严重程度
type Severity string

const (
	SeverityError   Severity = "error"   // 阻断：拒绝变更
	SeverityWarning Severity = "warning" // 提示：允许变更但需告知
)

// RuleType 规则类型
type RuleType string

const (
	RuleStaffNotFound     RuleType = "staff_not_found"
	RuleAlreadyAssigned   RuleType = "already_assigned"
	RuleNGStaff           RuleType = "ng_staff"
	RuleGender            RuleType = "gender"
	RuleQualification     RuleType = "qualification"
	RuleUnvisitedSolo     RuleType = "unvisited_solo"
	RuleOverlap           RuleType = "overlap"
	RuleUnavailableAllDay RuleType = "unavailability_all_day"
	RuleUnavailable       RuleType = "unavailability"

	RuleUnvisitedTeam  RuleType = "unvisited_team"
	RuleQuotaSaturated RuleType = "quota_saturated"
	RuleOutsideHours   RuleType = "outside_hours"
	RuleTraining       RuleType = "training"
	RuleNotPreferred   RuleType = "not_preferred"
	RuleTravelTime     RuleType = "travel_time"
)

// Rule 约束规则接口
type Rule interface {
	Name() string
	Type() RuleType
	Severity() Severity
	// Evaluate 返回是否通过及未通过时的说明
	Evaluate(ctx *Context) (bool, string)
}

// Context 规则评估上下文
type Context struct {
	Order    *model.Order
	Staff    *model.Staff
	Customer *model.Customer // 可能为 nil

	// 候选人员当天已有的其他订单
	StaffOrders    []*model.Order
	Unavailability []*model.StaffUnavailability

	Day       model.DayOfWeek
	StartTime string // 生效开始时间（含拟修改的新时间）
	EndTime   string

	// Reschedule 为 true 表示同一人员仅修改时间
	Reschedule bool

	RequiredCount int
	ServiceTypes  model.ServiceTypeRegistry
	TravelTimes   *traveltime.Lookup // 可能为 nil
}

// Violation 规则违反记录
type Violation struct {
	Rule     RuleType `json:"type"`
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// BaseRule 基础规则
type BaseRule struct {
	name     string
	rtype    RuleType
	severity Severity
}

func (b *BaseRule) Name() string       { return b.name }
func (b *BaseRule) Type() RuleType     { return b.rtype }
func (b *BaseRule) Severity() Severity { return b.severity }

func newBlocking(name string, t RuleType) BaseRule {
	return BaseRule{name: name, rtype: t, severity: SeverityError}
}

func newAdvisory(name string, t RuleType) BaseRule {
	return BaseRule{name: name, rtype: t, severity: SeverityWarning}
}

// Check 评估单条规则，未通过时返回违反记录
func Check(r Rule, ctx *Context) (Violation, bool) {
	ok, msg := r.Evaluate(ctx)
	if ok {
		return Violation{}, false
	}
	return Violation{Rule: r.Type(), Name: r.Name(), Severity: r.Severity(), Message: msg}, true
}

// staffName 用于说明文字
func staffName(ctx *Context) string {
	if ctx.Staff == nil {
		return ""
	}
	return ctx.Staff.DisplayName()
}
