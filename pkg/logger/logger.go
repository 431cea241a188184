// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

type ctxKey string

// RequestIDKey 请求ID在 context 中的键
const RequestIDKey ctxKey = "request_id"

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console/auto
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		var fd uintptr
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
			fd = os.Stderr.Fd()
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
			fd = os.Stdout.Fd()
		}

		if useConsole(cfg.Format, fd) {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// useConsole auto 模式下输出到终端时使用控制台格式
func useConsole(format string, fd uintptr) bool {
	switch format {
	case "console":
		return true
	case "json":
		return false
	default:
		return fd != 0 && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	}
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// EngineLogger 派单引擎专用日志器
type EngineLogger struct {
	base *zerolog.Logger
}

// NewEngineLogger 创建派单引擎日志器
func NewEngineLogger() *EngineLogger {
	l := Get().With().Str("component", "engine").Logger()
	return &EngineLogger{base: &l}
}

// MoveValidated 记录变更通过
func (l *EngineLogger) MoveValidated(orderID, staffID string, warnings int) {
	l.base.Info().
		Str("order_id", orderID).
		Str("staff_id", staffID).
		Int("warnings", warnings).
		Msg("变更已通过检查")
}

// MoveRejected 记录变更被拒绝
func (l *EngineLogger) MoveRejected(orderID, staffID, rule, reason string) {
	l.base.Warn().
		Str("order_id", orderID).
		Str("staff_id", staffID).
		Str("rule", rule).
		Str("reason", reason).
		Msg("变更被拒绝")
}

// AuditComplete 记录批量检查完成
func (l *EngineLogger) AuditComplete(date string, orders, errors, warnings int, duration time.Duration) {
	l.base.Info().
		Str("date", date).
		Int("orders", orders).
		Int("errors", errors).
		Int("warnings", warnings).
		Dur("duration", duration).
		Msg("排班检查完成")
}

// StatusTransition 记录状态迁移
func (l *EngineLogger) StatusTransition(orderID, from, to string) {
	l.base.Info().
		Str("order_id", orderID).
		Str("from", from).
		Str("to", to).
		Msg("订单状态变更")
}

// OptimizationApplied 记录优化结果
func (l *EngineLogger) OptimizationApplied(runID, week, status string, updated int, dryRun bool) {
	l.base.Info().
		Str("run_id", runID).
		Str("week_start_date", week).
		Str("status", status).
		Int("orders_updated", updated).
		Bool("dry_run", dryRun).
		Msg("优化结果已处理")
}
