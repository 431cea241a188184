package constraint

import (
	"fmt"
	"strings"

	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/timeslot"
)

// UnvisitedTeamRule 未访问人员参与多人服务
type UnvisitedTeamRule struct {
	BaseRule
}

func NewUnvisitedTeamRule() *UnvisitedTeamRule {
	return &UnvisitedTeamRule{BaseRule: newAdvisory("UnvisitedTeam", RuleUnvisitedTeam)}
}

func (r *UnvisitedTeamRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Staff.TrainingStatusFor(ctx.Order.CustomerID) == model.TrainingNotVisited && ctx.RequiredCount > 1 {
		return false, fmt.Sprintf("%s 未曾访问该客户，需与熟悉人员同行", staffName(ctx))
	}
	return true, ""
}

// QuotaSaturatedRule 多人订单名单已满
type QuotaSaturatedRule struct {
	BaseRule
}

func NewQuotaSaturatedRule() *QuotaSaturatedRule {
	return &QuotaSaturatedRule{BaseRule: newAdvisory("QuotaSaturated", RuleQuotaSaturated)}
}

func (r *QuotaSaturatedRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Reschedule {
		return true, ""
	}
	if ctx.RequiredCount > 1 && len(ctx.Order.AssignedStaffIDs) >= ctx.RequiredCount {
		return false, fmt.Sprintf("服务名单已满（%d人），将替换而非追加", ctx.RequiredCount)
	}
	return true, ""
}

// OutsideHoursRule 可工作时间外
type OutsideHoursRule struct {
	BaseRule
}

func NewOutsideHoursRule() *OutsideHoursRule {
	return &OutsideHoursRule{BaseRule: newAdvisory("OutsideHours", RuleOutsideHours)}
}

func (r *OutsideHoursRule) Evaluate(ctx *Context) (bool, string) {
	slots, defined := ctx.Staff.AvailabilityOn(ctx.Day)
	if !defined {
		return true, ""
	}
	for _, s := range slots {
		if timeslot.Contains(s.StartTime, s.EndTime, ctx.StartTime, ctx.EndTime) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("%s 的可工作时间外 (%s)",
		staffName(ctx), timeslot.Range(ctx.StartTime, ctx.EndTime))
}

// TrainingRule 同行培训中
type TrainingRule struct {
	BaseRule
}

func NewTrainingRule() *TrainingRule {
	return &TrainingRule{BaseRule: newAdvisory("Training", RuleTraining)}
}

func (r *TrainingRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Staff.TrainingStatusFor(ctx.Order.CustomerID) == model.TrainingInProgress {
		return false, fmt.Sprintf("%s 对该客户仍在同行培训中", staffName(ctx))
	}
	return true, ""
}

// NotPreferredRule 非客户偏好人员
type NotPreferredRule struct {
	BaseRule
}

func NewNotPreferredRule() *NotPreferredRule {
	return &NotPreferredRule{BaseRule: newAdvisory("NotPreferred", RuleNotPreferred)}
}

func (r *NotPreferredRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Customer == nil || !ctx.Customer.HasPreferences() {
		return true, ""
	}
	if ctx.Customer.IsPreferred(ctx.Staff.ID) {
		return true, ""
	}
	return false, fmt.Sprintf("%s 不在客户的偏好人员中", staffName(ctx))
}

// TravelTimeRule 前后访问之间移动时间不足
// 只看紧邻的前一个和后一个访问；同一客户或缺少移动时间数据时跳过
type TravelTimeRule struct {
	BaseRule
}

func NewTravelTimeRule() *TravelTimeRule {
	return &TravelTimeRule{BaseRule: newAdvisory("TravelTime", RuleTravelTime)}
}

func (r *TravelTimeRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.TravelTimes == nil || ctx.TravelTimes.Len() == 0 {
		return true, ""
	}

	prev, next := neighbours(ctx)
	var msgs []string

	if prev != nil && prev.CustomerID != ctx.Order.CustomerID {
		need, ok := ctx.TravelTimes.Minutes(prev.CustomerID, ctx.Order.CustomerID)
		if gap := timeslot.Gap(prev.EndTime, ctx.StartTime); ok && gap < need {
			msgs = append(msgs, fmt.Sprintf("与前一访问 (%s) 间隔 %d 分钟，移动需 %d 分钟",
				timeslot.Range(prev.StartTime, prev.EndTime), gap, need))
		}
	}
	if next != nil && next.CustomerID != ctx.Order.CustomerID {
		need, ok := ctx.TravelTimes.Minutes(ctx.Order.CustomerID, next.CustomerID)
		if gap := timeslot.Gap(ctx.EndTime, next.StartTime); ok && gap < need {
			msgs = append(msgs, fmt.Sprintf("与后一访问 (%s) 间隔 %d 分钟，移动需 %d 分钟",
				timeslot.Range(next.StartTime, next.EndTime), gap, need))
		}
	}

	if len(msgs) == 0 {
		return true, ""
	}
	return false, staffName(ctx) + " " + strings.Join(msgs, "；")
}

// neighbours 找到紧邻的前一个与后一个访问
func neighbours(ctx *Context) (prev, next *model.Order) {
	start := timeslot.ToMinutes(ctx.StartTime)
	end := timeslot.ToMinutes(ctx.EndTime)

	for _, o := range ctx.StaffOrders {
		if o.ID == ctx.Order.ID {
			continue
		}
		if o.Date != "" && ctx.Order.Date != "" && o.Date != ctx.Order.Date {
			continue
		}
		oStart := timeslot.ToMinutes(o.StartTime)
		oEnd := timeslot.ToMinutes(o.EndTime)
		if oEnd <= start && (prev == nil || oEnd > timeslot.ToMinutes(prev.EndTime)) {
			prev = o
		}
		if oStart >= end && (next == nil || oStart < timeslot.ToMinutes(next.StartTime)) {
			next = o
		}
	}
	return prev, next
}
