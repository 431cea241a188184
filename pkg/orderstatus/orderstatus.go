// Package orderstatus 定义订单状态迁移规则
package orderstatus

import (
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/model"
)

// transitions 合法迁移表
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:  {model.OrderCancelled},
	model.OrderAssigned: {model.OrderCompleted, model.OrderCancelled},
}

// CanTransition 是否允许从 from 迁移到 to，相同状态不允许
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition 检查单个迁移，非法时返回 INVALID_STATUS_TRANSITION
func Transition(from, to model.OrderStatus) error {
	if !CanTransition(from, to) {
		return errors.InvalidTransition(string(from), string(to))
	}
	return nil
}

// Allowed 返回某状态可迁移到的状态
func Allowed(from model.OrderStatus) []model.OrderStatus {
	return append([]model.OrderStatus(nil), transitions[from]...)
}

// BulkResult 批量迁移结果
type BulkResult struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

// Count 实际迁移的订单数
func (r BulkResult) Count() int {
	return len(r.Applied)
}

// PlanBulk 计算批量迁移，非法项静默跳过
func PlanBulk(orders []*model.Order, to model.OrderStatus) BulkResult {
	var res BulkResult
	for _, o := range orders {
		if o == nil {
			continue
		}
		if CanTransition(o.Status, to) {
			res.Applied = append(res.Applied, o.ID)
		} else {
			res.Skipped = append(res.Skipped, o.ID)
		}
	}
	return res
}
