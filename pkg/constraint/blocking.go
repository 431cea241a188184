package constraint

import (
	"fmt"

	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/timeslot"
)

// =========================================
// 1. AlreadyAssignedRule 已在名单中
// =========================================
type AlreadyAssignedRule struct {
	BaseRule
}

func NewAlreadyAssignedRule() *AlreadyAssignedRule {
	return &AlreadyAssignedRule{BaseRule: newBlocking("AlreadyAssigned", RuleAlreadyAssigned)}
}

func (r *AlreadyAssignedRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Order.HasStaff(ctx.Staff.ID) && !ctx.Reschedule {
		return false, fmt.Sprintf("%s 已在该订单的服务名单中", staffName(ctx))
	}
	return true, ""
}

// =========================================
// 2. NGStaffRule 客户禁止名单
// =========================================
type NGStaffRule struct {
	BaseRule
}

func NewNGStaffRule() *NGStaffRule {
	return &NGStaffRule{BaseRule: newBlocking("NGStaff", RuleNGStaff)}
}

func (r *NGStaffRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Customer == nil {
		return true, ""
	}
	if ctx.Customer.IsNG(ctx.Staff.ID) {
		return false, fmt.Sprintf("%s 在客户的NG名单中", staffName(ctx))
	}
	return true, ""
}

// =========================================
// 3. GenderRule 性别要求
// =========================================
type GenderRule struct {
	BaseRule
}

func NewGenderRule() *GenderRule {
	return &GenderRule{BaseRule: newBlocking("Gender", RuleGender)}
}

func (r *GenderRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Customer == nil {
		return true, ""
	}
	req := ctx.Customer.GenderRequirement
	if req.Satisfies(ctx.Staff.Gender) {
		return true, ""
	}
	label := "女性"
	if req == model.GenderRequireMale {
		label = "男性"
	}
	return false, fmt.Sprintf("客户要求%s服务人员，%s 不符合", label, staffName(ctx))
}

// =========================================
// 4. QualificationRule 身体护理资格
// =========================================
type QualificationRule struct {
	BaseRule
}

func NewQualificationRule() *QualificationRule {
	return &QualificationRule{BaseRule: newBlocking("Qualification", RuleQualification)}
}

func (r *QualificationRule) Evaluate(ctx *Context) (bool, string) {
	if !ctx.ServiceTypes.RequiresPhysicalCare(ctx.Order.ServiceType) {
		return true, ""
	}
	if ctx.Staff.CanPhysicalCare {
		return true, ""
	}
	return false, fmt.Sprintf("%s 不具备身体护理资格（%s）",
		staffName(ctx), ctx.ServiceTypes.Label(ctx.Order.ServiceType))
}

// =========================================
// 5. UnvisitedSoloRule 未访问人员不能单独服务
// =========================================
type UnvisitedSoloRule struct {
	BaseRule
}

func NewUnvisitedSoloRule() *UnvisitedSoloRule {
	return &UnvisitedSoloRule{BaseRule: newBlocking("UnvisitedSolo", RuleUnvisitedSolo)}
}

func (r *UnvisitedSoloRule) Evaluate(ctx *Context) (bool, string) {
	if ctx.Staff.TrainingStatusFor(ctx.Order.CustomerID) != model.TrainingNotVisited {
		return true, ""
	}
	if ctx.RequiredCount > 1 {
		return true, ""
	}
	return false, fmt.Sprintf("%s 未曾访问该客户，不能单独服务", staffName(ctx))
}

// =========================================
// 6. OverlapRule 时间重叠
// =========================================
type OverlapRule struct {
	BaseRule
}

func NewOverlapRule() *OverlapRule {
	return &OverlapRule{BaseRule: newBlocking("Overlap", RuleOverlap)}
}

func (r *OverlapRule) Evaluate(ctx *Context) (bool, string) {
	for _, other := range ctx.StaffOrders {
		if other.ID == ctx.Order.ID {
			continue
		}
		if other.Date != "" && ctx.Order.Date != "" && other.Date != ctx.Order.Date {
			continue
		}
		if timeslot.Overlaps(ctx.StartTime, ctx.EndTime, other.StartTime, other.EndTime) {
			return false, fmt.Sprintf("%s 的时间重叠: %s",
				staffName(ctx), timeslot.Range(other.StartTime, other.EndTime))
		}
	}
	return true, ""
}

// =========================================
// 7. UnavailableAllDayRule 全天请假
// =========================================
type UnavailableAllDayRule struct {
	BaseRule
}

func NewUnavailableAllDayRule() *UnavailableAllDayRule {
	return &UnavailableAllDayRule{BaseRule: newBlocking("UnavailableAllDay", RuleUnavailableAllDay)}
}

func (r *UnavailableAllDayRule) Evaluate(ctx *Context) (bool, string) {
	for _, slot := range model.SlotsOn(ctx.Unavailability, ctx.Staff.ID, ctx.Order.Date) {
		if slot.AllDay {
			return false, fmt.Sprintf("%s 在 %s 全天请假", staffName(ctx), ctx.Order.Date)
		}
	}
	return true, ""
}

// =========================================
// 8. UnavailableRule 时段请假
// =========================================
type UnavailableRule struct {
	BaseRule
}

func NewUnavailableRule() *UnavailableRule {
	return &UnavailableRule{BaseRule: newBlocking("Unavailable", RuleUnavailable)}
}

func (r *UnavailableRule) Evaluate(ctx *Context) (bool, string) {
	for _, slot := range model.SlotsOn(ctx.Unavailability, ctx.Staff.ID, ctx.Order.Date) {
		if slot.AllDay || slot.StartTime == "" || slot.EndTime == "" {
			continue
		}
		if timeslot.Overlaps(ctx.StartTime, ctx.EndTime, slot.StartTime, slot.EndTime) {
			return false, fmt.Sprintf("%s 在 %s 请假 (%s)",
				staffName(ctx), ctx.Order.Date, timeslot.Range(slot.StartTime, slot.EndTime))
		}
	}
	return true, ""
}
