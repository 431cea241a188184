package handler

import (
	"net/http"

	"github.com/paiban/visitcare/internal/service"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/orderstatus"
)

// MoveRequest 拖放变更请求
type MoveRequest struct {
	TargetStaffID string `json:"target_staff_id"`
	SourceStaffID string `json:"source_staff_id,omitempty"`
	NewStartTime  string `json:"new_start_time,omitempty"`
	NewEndTime    string `json:"new_end_time,omitempty"`
}

// UnassignRequest 移除人员请求
type UnassignRequest struct {
	StaffID string `json:"staff_id"`
}

// UnassignResponse 移除人员响应
type UnassignResponse struct {
	OrderID          string   `json:"order_id"`
	AssignedStaffIDs []string `json:"assigned_staff_ids"`
}

// StatusRequest 状态迁移请求
type StatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// BulkStatusRequest 批量状态迁移请求
type BulkStatusRequest struct {
	OrderIDs []string          `json:"order_ids"`
	Status   model.OrderStatus `json:"status"`
}

// BulkStatusResponse 批量状态迁移响应
type BulkStatusResponse struct {
	orderstatus.BulkResult
	Updated int `json:"updated"`
}

// MoveOrder 判断并执行一次拖放变更
func (h *Handler) MoveOrder(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.svc.MoveOrder(r.Context(), service.MoveCommand{
		OrderID:       r.PathValue("id"),
		TargetStaffID: req.TargetStaffID,
		SourceStaffID: req.SourceStaffID,
		NewStartTime:  req.NewStartTime,
		NewEndTime:    req.NewEndTime,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// UnassignStaff 从订单移除一名人员
func (h *Handler) UnassignStaff(w http.ResponseWriter, r *http.Request) {
	var req UnassignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id := r.PathValue("id")
	next, err := h.svc.UnassignStaff(r.Context(), id, req.StaffID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if next == nil {
		next = []string{}
	}
	respondJSON(w, http.StatusOK, UnassignResponse{OrderID: id, AssignedStaffIDs: next})
}

// TransitionStatus 迁移单个订单状态
func (h *Handler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.svc.TransitionStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// BulkTransition 批量迁移订单状态
func (h *Handler) BulkTransition(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.svc.BulkTransition(r.Context(), req.OrderIDs, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if res.Applied == nil {
		res.Applied = []string{}
	}
	if res.Skipped == nil {
		res.Skipped = []string{}
	}
	respondJSON(w, http.StatusOK, BulkStatusResponse{BulkResult: res, Updated: res.Count()})
}
