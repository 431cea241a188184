// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/paiban/visitcare/internal/service"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/orderstatus"
	"github.com/paiban/visitcare/pkg/roster"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// ScheduleService 处理器依赖的排班服务
type ScheduleService interface {
	MoveOrder(ctx context.Context, cmd service.MoveCommand) (*service.MoveResult, error)
	UnassignStaff(ctx context.Context, orderID, staffID string) ([]string, error)
	TransitionStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error)
	BulkTransition(ctx context.Context, orderIDs []string, to model.OrderStatus) (orderstatus.BulkResult, error)
	AuditDay(ctx context.Context, date string) (*service.AuditReport, error)
	RunOptimization(ctx context.Context, cmd service.OptimizeCommand) (*service.OptimizeResult, error)
	AssignmentDiffs(ctx context.Context, week string) ([]roster.Diff, error)
}

// Handler 排班API处理器
type Handler struct {
	svc ScheduleService
}

// New 创建处理器
func New(svc ScheduleService) *Handler {
	return &Handler{svc: svc}
}

// Register 注册API路由
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/orders/{id}/move", h.MoveOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/unassign", h.UnassignStaff)
	mux.HandleFunc("POST /api/v1/orders/{id}/status", h.TransitionStatus)
	mux.HandleFunc("POST /api/v1/orders/status/bulk", h.BulkTransition)
	mux.HandleFunc("GET /api/v1/audit", h.AuditDay)
	mux.HandleFunc("POST /api/v1/optimize", h.RunOptimization)
	mux.HandleFunc("GET /api/v1/assignments/diff", h.AssignmentDiffs)
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应，非 AppError 按内部错误处理
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, errors.CodeInternal, "服务器内部错误")
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("请求处理失败")
	}

	body := map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	respondJSON(w, appErr.HTTPStatus, body)
}

// decodeJSON 解析请求体
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	return nil
}
