// Package optimizer 提供外部排班优化服务的 HTTP 客户端
package optimizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/paiban/visitcare/internal/config"
	"github.com/paiban/visitcare/pkg/errors"
	"github.com/paiban/visitcare/pkg/logger"
	"github.com/paiban/visitcare/pkg/model"
)

// Request 优化请求
type Request struct {
	WeekStartDate    string `json:"week_start_date"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty"`
	DryRun           bool   `json:"dry_run"`
}

// Response 优化结果
type Response struct {
	Assignments      []model.AssignmentRecord `json:"assignments"`
	ObjectiveValue   float64                  `json:"objective_value"`
	SolveTimeSeconds float64                  `json:"solve_time_seconds"`
	Status           model.OptimizationStatus `json:"status"`
	OrdersUpdated    int                      `json:"orders_updated"`
	TotalOrders      int                      `json:"total_orders,omitempty"`
	AssignedCount    int                      `json:"assigned_count,omitempty"`
}

// ErrorResponse 优化服务错误响应
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Client 优化服务客户端
type Client struct {
	http             *resty.Client
	defaultTimeLimit int
}

// New 创建优化服务客户端
func New(cfg *config.OptimizerConfig) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, defaultTimeLimit: cfg.DefaultTimeLimit}
}

// Optimize 请求优化某周的排班
func (c *Client) Optimize(ctx context.Context, req Request) (*Response, error) {
	if req.TimeLimitSeconds == 0 {
		req.TimeLimitSeconds = c.defaultTimeLimit
	}
	var ve errors.ValidationErrors
	if req.WeekStartDate == "" {
		ve.Add("week_start_date", "不能为空")
	}
	if req.TimeLimitSeconds < 1 || req.TimeLimitSeconds > 600 {
		ve.Add("time_limit_seconds", "必须在 1-600 之间")
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	log := logger.WithField("week", req.WeekStartDate)
	log.Info().Int("time_limit", req.TimeLimitSeconds).Bool("dry_run", req.DryRun).Msg("调用优化服务")

	var (
		result Response
		apiErr ErrorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/optimize")
	if err != nil {
		log.Error().Err(err).Msg("优化服务调用失败")
		return nil, errors.OptimizerUnavailable(err.Error(), err)
	}

	if resp.IsError() {
		detail := apiErr.Detail
		if detail == "" {
			detail = apiErr.Error
		}
		if detail == "" {
			detail = resp.Status()
		}
		log.Error().Int("status_code", resp.StatusCode()).Str("detail", detail).Msg("优化服务返回错误")

		switch resp.StatusCode() {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return nil, errors.New(errors.CodeOptimizationInvalid, "优化请求无法求解").
				WithDetails(detail).
				WithField("status_code", resp.StatusCode())
		default:
			return nil, errors.OptimizerUnavailable(detail, fmt.Errorf("status %d", resp.StatusCode()))
		}
	}

	log.Info().
		Str("status", string(result.Status)).
		Int("assignments", len(result.Assignments)).
		Float64("solve_time", result.SolveTimeSeconds).
		Msg("优化完成")
	return &result, nil
}
