// Package metrics 提供Prometheus监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	HTTPRequestsTotal     = "visitcare_http_requests_total"
	HTTPRequestDuration   = "visitcare_http_request_duration_seconds"
	MoveValidationsTotal  = "visitcare_move_validations_total"
	RuleHitsTotal         = "visitcare_rule_hits_total"
	AuditDuration         = "visitcare_audit_duration_seconds"
	AuditFindings         = "visitcare_audit_findings"
	StatusTransitionTotal = "visitcare_status_transitions_total"
	OptimizerRunsTotal    = "visitcare_optimizer_runs_total"
)

// MetricsRegistry 指标注册表
type MetricsRegistry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *MetricsRegistry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = NewRegistry()
		initDefaultMetrics(registry)
	})
	return registry
}

// NewRegistry 创建空注册表
func NewRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

func initDefaultMetrics(r *MetricsRegistry) {
	r.NewCounter(HTTPRequestsTotal, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(HTTPRequestDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	// 变更准入
	r.NewCounter(MoveValidationsTotal, "变更准入判断次数", []string{"result"})
	r.NewCounter(RuleHitsTotal, "规则命中次数", []string{"rule", "severity"})

	// 批量检查
	r.NewHistogram(AuditDuration, "批量检查耗时",
		[]string{},
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0})
	r.NewGauge(AuditFindings, "最近一次检查的问题数", []string{"severity"})

	r.NewCounter(StatusTransitionTotal, "订单状态迁移次数", []string{"result"})
	r.NewCounter(OptimizerRunsTotal, "优化服务调用次数", []string{"status"})
}

// NewCounter 创建计数器
func (r *MetricsRegistry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 创建仪表盘
func (r *MetricsRegistry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 创建直方图
func (r *MetricsRegistry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// GetCounter 获取计数器
func (r *MetricsRegistry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *MetricsRegistry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *MetricsRegistry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 读取当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Value 读取当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}
	// 非累计计数，输出时再累加
	placed := false
	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
			placed = true
			break
		}
	}
	if !placed {
		h.counts[key][len(h.Buckets)]++
	}
	h.sums[key] += value
}

// Count 观测次数
func (h *Histogram) Count(labelValues ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, n := range h.counts[labelKey(labelValues)] {
		total += n
	}
	return total
}

func labelKey(labels []string) string {
	return strings.Join(labels, ",")
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}

// Handler 返回该注册表的指标HTTP处理器
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.mu.RLock()
		defer r.mu.RUnlock()

		for _, name := range sortedKeys(r.counters) {
			c := r.counters[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
			c.mu.RLock()
			for _, key := range sortedKeys(c.values) {
				fmt.Fprintf(w, "%s%s %s\n", c.Name, braces(formatLabels(c.Labels, key)), formatFloat(c.values[key]))
			}
			c.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.gauges) {
			g := r.gauges[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
			g.mu.RLock()
			for _, key := range sortedKeys(g.values) {
				fmt.Fprintf(w, "%s%s %s\n", g.Name, braces(formatLabels(g.Labels, key)), formatFloat(g.values[key]))
			}
			g.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.histograms) {
			h := r.histograms[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
			h.mu.RLock()
			for _, key := range sortedKeys(h.counts) {
				counts := h.counts[key]
				labels := formatLabels(h.Labels, key)
				prefix := labels
				if prefix != "" {
					prefix += ","
				}
				cumulative := 0
				for i, bucket := range h.Buckets {
					cumulative += counts[i]
					fmt.Fprintf(w, "%s_bucket{%sle=\"%s\"} %d\n", h.Name, prefix, formatFloat(bucket), cumulative)
				}
				cumulative += counts[len(h.Buckets)]
				fmt.Fprintf(w, "%s_bucket{%sle=\"+Inf\"} %d\n", h.Name, prefix, cumulative)
				fmt.Fprintf(w, "%s_sum%s %s\n", h.Name, braces(labels), formatFloat(h.sums[key]))
				fmt.Fprintf(w, "%s_count%s %d\n", h.Name, braces(labels), cumulative)
			}
			h.mu.RUnlock()
		}
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func braces(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}

// formatLabels 格式化标签
func formatLabels(names []string, key string) string {
	if len(names) == 0 {
		return ""
	}
	vals := strings.Split(key, ",")
	parts := make([]string, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts[i] = fmt.Sprintf("%s=%q", name, val)
	}
	return strings.Join(parts, ",")
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	r := GetRegistry()
	if c := r.GetCounter(HTTPRequestsTotal); c != nil {
		c.Inc(method, path, strconv.Itoa(status))
	}
	if h := r.GetHistogram(HTTPRequestDuration); h != nil {
		h.Observe(duration.Seconds(), method, path)
	}
}

// RecordMoveValidation 记录一次变更准入判断
func RecordMoveValidation(allowed bool) {
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	if c := GetRegistry().GetCounter(MoveValidationsTotal); c != nil {
		c.Inc(result)
	}
}

// RecordRuleHit 记录规则命中
func RecordRuleHit(rule, severity string) {
	if c := GetRegistry().GetCounter(RuleHitsTotal); c != nil {
		c.Inc(rule, severity)
	}
}

// RecordAudit 记录一次批量检查
func RecordAudit(errors, warnings int, duration time.Duration) {
	r := GetRegistry()
	if h := r.GetHistogram(AuditDuration); h != nil {
		h.Observe(duration.Seconds())
	}
	if g := r.GetGauge(AuditFindings); g != nil {
		g.Set(float64(errors), "error")
		g.Set(float64(warnings), "warning")
	}
}

// RecordStatusTransition 记录状态迁移结果（applied/skipped/rejected）
func RecordStatusTransition(result string, n int) {
	if n <= 0 {
		return
	}
	if c := GetRegistry().GetCounter(StatusTransitionTotal); c != nil {
		c.Add(float64(n), result)
	}
}

// RecordOptimizerRun 记录优化服务调用
func RecordOptimizerRun(status string) {
	if c := GetRegistry().GetCounter(OptimizerRunsTotal); c != nil {
		c.Inc(status)
	}
}
