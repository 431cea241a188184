package handler

import (
	"context"
	"net/http"
	"time"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Pinger 健康检查依赖
type Pinger func(ctx context.Context) error

// System 系统端点
type System struct {
	info   BuildInfo
	checks map[string]Pinger
}

// NewSystem 创建系统端点，checks 为依赖名到检查函数
func NewSystem(info BuildInfo, checks map[string]Pinger) *System {
	return &System{info: info, checks: checks}
}

// Register 注册系统路由
func (s *System) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("GET /version", s.Version)
}

// Health 健康检查，任一依赖不可用时返回 503
func (s *System) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]interface{}{"status": "ok", "service": "visitcare"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	respondJSON(w, status, body)
}

// Version 版本信息
func (s *System) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.info)
}
