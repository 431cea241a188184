// Package roster 提供服务人数解析和服务名单变更规则
package roster

import (
	"github.com/paiban/visitcare/pkg/model"
)

// RequiredStaffCount 返回订单需要的服务人数
//
// 优先级：订单显式人数 > 客户固定时段（起止时间与服务类型完全一致）> 1
func RequiredStaffCount(order *model.Order, customer *model.Customer, day model.DayOfWeek) int {
	if order.StaffCount != nil {
		return *order.StaffCount
	}
	if customer != nil && day != "" {
		for _, slot := range customer.ServicesOn(day) {
			if slot.StartTime == order.StartTime &&
				slot.EndTime == order.EndTime &&
				slot.ServiceType == order.ServiceType {
				return slot.StaffCount
			}
		}
	}
	return 1
}

// Next 计算人员移入后的新名单，source 为空表示来自未分配区
// 始终返回新切片，不修改 current
func Next(current []string, target, source string, required int) []string {
	out := append([]string(nil), current...)

	if source != "" && source == target {
		return out
	}
	if indexOf(out, target) >= 0 {
		return out
	}
	if required == 1 {
		return []string{target}
	}
	if len(out) < required {
		return append(out, target)
	}
	if i := indexOf(out, source); source != "" && i >= 0 {
		out = append(out[:i], out[i+1:]...)
		return append(out, target)
	}
	// 名单已满且来源不在名单中：仍然追加，允许超员
	return append(out, target)
}

// Remove 从名单中移除一名人员
func Remove(current []string, staffID string) []string {
	out := make([]string, 0, len(current))
	for _, id := range current {
		if id != staffID {
			out = append(out, id)
		}
	}
	return out
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
