package roster

import (
	"sort"

	"github.com/paiban/visitcare/pkg/model"
)

// Diff 当前名单与最近一次优化结果的差异
type Diff struct {
	OrderID string   `json:"order_id"`
	Added   []string `json:"added"`   // 手动新增
	Removed []string `json:"removed"` // 手动移除
}

// Changed 是否存在差异
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Compare 比较一个订单的当前名单与优化名单
func Compare(orderID string, current, optimized []string) Diff {
	d := Diff{OrderID: orderID}
	for _, id := range current {
		if indexOf(optimized, id) < 0 {
			d.Added = append(d.Added, id)
		}
	}
	for _, id := range optimized {
		if indexOf(current, id) < 0 {
			d.Removed = append(d.Removed, id)
		}
	}
	return d
}

// DiffAgainstRun 返回所有与优化结果不一致的订单差异，按订单ID排序
// 优化结果中不存在的订单不参与比较
func DiffAgainstRun(orders []*model.Order, run *model.OptimizationRun) []Diff {
	if run == nil {
		return nil
	}
	var out []Diff
	for _, o := range orders {
		optimized, ok := run.RosterOf(o.ID)
		if !ok {
			continue
		}
		if d := Compare(o.ID, o.AssignedStaffIDs, optimized); d.Changed() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}
