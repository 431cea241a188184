// Package validator 提供排班检查与变更准入判断
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/visitcare/pkg/constraint"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/roster"
	"github.com/paiban/visitcare/pkg/timeslot"
)

// Finding 检查发现的问题
type Finding struct {
	OrderID  string              `json:"order_id"`
	StaffID  string              `json:"staff_id"`
	Type     constraint.RuleType `json:"type"`
	Severity constraint.Severity `json:"severity"`
	Message  string              `json:"message"`
}

// Findings 按订单ID分组的检查结果
type Findings map[string][]Finding

// HasErrors 订单是否存在阻断级问题
func (f Findings) HasErrors(orderID string) bool {
	for _, x := range f[orderID] {
		if x.Severity == constraint.SeverityError {
			return true
		}
	}
	return false
}

// Count 按严重程度统计
func (f Findings) Count() (errors, warnings int) {
	for _, list := range f {
		for _, x := range list {
			if x.Severity == constraint.SeverityError {
				errors++
			} else {
				warnings++
			}
		}
	}
	return errors, warnings
}

// Flatten 按订单ID排序展开
func (f Findings) Flatten() []Finding {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Finding
	for _, id := range ids {
		out = append(out, f[id]...)
	}
	return out
}

func (f Findings) add(x Finding) {
	f[x.OrderID] = append(f[x.OrderID], x)
}

// AuditInput 批量检查输入
type AuditInput struct {
	Orders         []*model.Order
	Staff          map[string]*model.Staff
	Customers      map[string]*model.Customer
	Unavailability []*model.StaffUnavailability
	Day            model.DayOfWeek // 为空时按订单日期推算
	ServiceTypes   model.ServiceTypeRegistry
}

// Auditor 批量检查器
type Auditor struct {
	rules []constraint.Rule
}

// NewAuditor 创建批量检查器，rules 为空时使用默认规则
func NewAuditor(rules []constraint.Rule) *Auditor {
	if len(rules) == 0 {
		rules = constraint.AuditRules()
	}
	return &Auditor{rules: rules}
}

// Audit 检查当前看板上所有已分配订单，只读
func (a *Auditor) Audit(in *AuditInput) Findings {
	out := make(Findings)

	for _, o := range in.Orders {
		if !o.IsAssigned() {
			continue
		}
		customer := in.Customers[o.CustomerID]
		day := dayOf(in.Day, o.Date)

		for _, sid := range o.AssignedStaffIDs {
			staff := in.Staff[sid]
			if staff == nil {
				continue
			}
			ctx := &constraint.Context{
				Order:          o,
				Staff:          staff,
				Customer:       customer,
				Unavailability: in.Unavailability,
				Day:            day,
				StartTime:      o.StartTime,
				EndTime:        o.EndTime,
				RequiredCount:  roster.RequiredStaffCount(o, customer, day),
				ServiceTypes:   in.ServiceTypes,
			}
			for _, r := range a.rules {
				if v, violated := constraint.Check(r, ctx); violated {
					out.add(Finding{
						OrderID:  o.ID,
						StaffID:  sid,
						Type:     v.Rule,
						Severity: v.Severity,
						Message:  v.Message,
					})
				}
			}
		}
	}

	a.detectOverlaps(in, out)
	return out
}

// detectOverlaps 同一人员同一天的订单按开始时间排序后向后扫描
// 后一订单开始时间不早于当前订单结束时间即可停止
func (a *Auditor) detectOverlaps(in *AuditInput, out Findings) {
	groups := groupByStaff(in.Orders)

	keys := make([]staffDay, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].staffID != keys[j].staffID {
			return keys[i].staffID < keys[j].staffID
		}
		return keys[i].date < keys[j].date
	})

	for _, k := range keys {
		orders := groups[k]
		sort.SliceStable(orders, func(i, j int) bool {
			return timeslot.ToMinutes(orders[i].StartTime) < timeslot.ToMinutes(orders[j].StartTime)
		})

		name := k.staffID
		if s := in.Staff[k.staffID]; s != nil {
			name = s.DisplayName()
		}

		for i := 0; i < len(orders); i++ {
			cur := orders[i]
			curEnd := timeslot.ToMinutes(cur.EndTime)
			for j := i + 1; j < len(orders); j++ {
				other := orders[j]
				if timeslot.ToMinutes(other.StartTime) >= curEnd {
					break
				}
				out.add(overlapFinding(cur, other, k.staffID, name))
				out.add(overlapFinding(other, cur, k.staffID, name))
			}
		}
	}
}

func overlapFinding(o, other *model.Order, staffID, name string) Finding {
	return Finding{
		OrderID:  o.ID,
		StaffID:  staffID,
		Type:     constraint.RuleOverlap,
		Severity: constraint.SeverityError,
		Message:  fmt.Sprintf("%s 的时间重叠: %s", name, timeslot.Range(other.StartTime, other.EndTime)),
	}
}

type staffDay struct {
	staffID string
	date    string
}

// groupByStaff 按人员和日期分组
func groupByStaff(orders []*model.Order) map[staffDay][]*model.Order {
	result := make(map[staffDay][]*model.Order)
	for _, o := range orders {
		for _, sid := range o.AssignedStaffIDs {
			k := staffDay{staffID: sid, date: o.Date}
			result[k] = append(result[k], o)
		}
	}
	return result
}

func dayOf(day model.DayOfWeek, date string) model.DayOfWeek {
	if day != "" {
		return day
	}
	d, _ := model.DayOfWeekOf(date)
	return d
}
