package handler

import (
	"net/http"

	"github.com/paiban/visitcare/internal/service"
)

// AuditDay 返回某天的检查结果
func (h *Handler) AuditDay(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AuditDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// RunOptimization 调用外部优化服务
func (h *Handler) RunOptimization(w http.ResponseWriter, r *http.Request) {
	var cmd service.OptimizeCommand
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.svc.RunOptimization(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// AssignmentDiffs 当前名单与最近一次优化结果的差异
func (h *Handler) AssignmentDiffs(w http.ResponseWriter, r *http.Request) {
	week := r.URL.Query().Get("week")
	diffs, err := h.svc.AssignmentDiffs(r.Context(), week)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"week_start_date": week,
		"diffs":           diffs,
	})
}
